package models

// SignalSource identifies where a captured signal came from
type SignalSource string

const (
	SourceBrowser    SignalSource = "browser"
	SourceSMS        SignalSource = "sms"
	SourceAppInstall SignalSource = "app_install"
	SourceManual     SignalSource = "manual"
)

// URLSignal is a URL observed in a browser address bar or entered manually
type URLSignal struct {
	Source SignalSource `json:"source"`
	// SourcePackage is the observing package (browser) so that the same
	// URL seen in two browsers throttles independently.
	SourcePackage string `json:"source_package"`
	URL           string `json:"url"`
	// EventTimeMillis comes from the event source, not wall clock, so
	// throttling stays correct if events are delivered out of order.
	EventTimeMillis int64 `json:"event_time_millis"`
}

// SMSSignal is a received SMS message
type SMSSignal struct {
	Sender          string `json:"sender"`
	Body            string `json:"body"`
	EventTimeMillis int64  `json:"event_time_millis"`
}

// AppSignal is an installed or scanned application's identity
type AppSignal struct {
	PackageName string `json:"package_name"`
	// SignatureSHA1 is the base64 SHA-1 of the signing certificate.
	SignatureSHA1 string `json:"signature_sha1,omitempty"`
	// APKPath, when set, lets the engine compute the content hash itself
	// via the extraction fallback chain.
	APKPath string `json:"apk_path,omitempty"`
	// ContentHash may be precomputed by the caller instead.
	ContentHash     string   `json:"content_hash,omitempty"`
	SplitAPKPaths   []string `json:"split_apk_paths,omitempty"`
	Permissions     []string `json:"permissions,omitempty"`
	EventTimeMillis int64    `json:"event_time_millis"`
}
