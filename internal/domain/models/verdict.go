package models

// ThreatType classifies why an identifier is in the signature database
type ThreatType string

const (
	ThreatTypePhishing ThreatType = "phishing"
	ThreatTypeScam     ThreatType = "scam"
	ThreatTypePonzi    ThreatType = "ponzi"
)

// ThreatTypeFromCode maps the numeric codes used in the remote payload
func ThreatTypeFromCode(code int) ThreatType {
	switch code {
	case 1:
		return ThreatTypeScam
	case 2:
		return ThreatTypePonzi
	default:
		return ThreatTypePhishing
	}
}

// VerdictKind is the tri-state classification outcome for a signal
type VerdictKind string

const (
	// VerdictNeutral means no evidence either way; absence of a match is
	// not evidence of safety.
	VerdictNeutral VerdictKind = "neutral"
	// VerdictSafe means the signal positively matched a trust rule.
	VerdictSafe VerdictKind = "safe"
	// VerdictSuspicious means the signal matched the signature database
	// or a heuristic.
	VerdictSuspicious VerdictKind = "suspicious"
)

// URLMatchLevel distinguishes a whole-domain listing from a specific link
type URLMatchLevel string

const (
	MatchDomain      URLMatchLevel = "domain"
	MatchSpecificURL URLMatchLevel = "specific_url"
)

// URLVerdict is the outcome of checking a single URL
type URLVerdict struct {
	Kind       VerdictKind   `json:"kind"`
	URL        string        `json:"url"`
	Domain     string        `json:"domain,omitempty"`
	ThreatType ThreatType    `json:"threat_type,omitempty"`
	MatchLevel URLMatchLevel `json:"match_level,omitempty"`
}

// SMSReason identifies which independent check flagged a message
type SMSReason string

const (
	SMSReasonSender  SMSReason = "sender"
	SMSReasonLink    SMSReason = "link"
	SMSReasonKeyword SMSReason = "keyword"
	SMSReasonPattern SMSReason = "pattern"
)

// SMSVerdict is the outcome of checking a single SMS message
type SMSVerdict struct {
	Kind VerdictKind `json:"kind"`
	// Reasons lists every check that fired. Empty for safe/neutral.
	Reasons []SMSReason `json:"reasons,omitempty"`
	// ContainsLink distinguishes a link-bearing neutral message (softer
	// confirmation tone) from a plain one (no alert at all).
	ContainsLink bool `json:"contains_link"`
}

// AppFlagReason identifies how an app was flagged
type AppFlagReason string

const (
	AppFlagPackage     AppFlagReason = "package"
	AppFlagSignature   AppFlagReason = "signature"
	AppFlagContentHash AppFlagReason = "content_hash"
	AppFlagPermissions AppFlagReason = "permissions"
)

// AppVerdict is the outcome of checking an installed app
type AppVerdict struct {
	Kind        VerdictKind   `json:"kind"`
	PackageName string        `json:"package_name"`
	Reason      AppFlagReason `json:"reason,omitempty"`
	// Description is a human-readable explanation, e.g. the Persian
	// labels of a matched risky permission combination.
	Description string `json:"description,omitempty"`
	// HashMethod records which extraction strategy produced the content
	// hash, for diagnostics. Empty when no hash was computed.
	HashMethod string `json:"hash_method,omitempty"`
}
