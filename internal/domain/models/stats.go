package models

import "time"

// Stat keys known to the engine. The seed payload defines all of them;
// Increment on an unknown key is an error, not an implicit insert.
const (
	StatVerifiedGateway   = "verified_gateway"
	StatFlaggedLink       = "flagged_link_detected"
	StatFlaggedSMS        = "flagged_sms_detected"
	StatFlaggedApp        = "flagged_app_detected"
	StatTotalScannedLinks = "total_scanned_links"
	StatTotalScannedSMS   = "total_scanned_sms"
	StatTotalScannedApps  = "total_scanned_apps"
)

// Stats is the user-facing counter snapshot
type Stats struct {
	SuspiciousLinksDetected int64 `json:"suspicious_links_detected"`
	SuspiciousSMSDetected   int64 `json:"suspicious_sms_detected"`
	SuspiciousAppsDetected  int64 `json:"suspicious_apps_detected"`
	VerifiedGateways        int64 `json:"verified_gateways"`
	TotalScannedLinks       int64 `json:"total_scanned_links"`
	TotalScannedSMS         int64 `json:"total_scanned_sms"`
	TotalScannedApps        int64 `json:"total_scanned_apps"`
}

// UpdateType records whether a refresh was user-initiated or scheduled
type UpdateType int

const (
	UpdateManual UpdateType = 1
	UpdateAuto   UpdateType = 2
)

// UpdateRecord is one row of refresh history
type UpdateRecord struct {
	ID        int64      `json:"id"`
	Type      UpdateType `json:"type"`
	Timestamp time.Time  `json:"timestamp"`
}
