package models

// Remote payload DTOs. The published feed is a JSON object keyed by table
// name; the updater fetches it whole and hands it to the signature store.

// PayloadURL is one suspicious link entry in the remote feed
type PayloadURL struct {
	URL         string `json:"url"`
	Type        int    `json:"type"`
	Description string `json:"description,omitempty"`
	// IsSpecificURL marks an exact link; zero means the whole domain.
	// The feed has always shipped this flag under the is_phishing key.
	IsSpecificURL int `json:"is_phishing"`
}

// PayloadSender is one flagged SMS sender number
type PayloadSender struct {
	SenderNumber string `json:"sender_number"`
}

// PayloadMessage carries the raw message text; the store hashes it via the
// normalizer before persisting and never keeps the raw body.
type PayloadMessage struct {
	SenderNumber string `json:"sender_number"`
	Message      string `json:"message"`
}

// PayloadApp is one flagged app identity
type PayloadApp struct {
	PackageName string `json:"package_name"`
	SHA1        string `json:"sha1,omitempty"`
	APKSHA1     string `json:"apk_sha1,omitempty"`
}

// PayloadTrustedApp is a trusted market package or a trusted sideload
// package+signature pair
type PayloadTrustedApp struct {
	PackageName   string `json:"package_name"`
	SignatureSHA1 string `json:"signature_sha1,omitempty"`
}

// PayloadStat defines a stat key; counts from the feed only seed keys that
// do not exist yet and never overwrite user-accumulated counters.
type PayloadStat struct {
	StatKey   string `json:"stat_key"`
	StatCount int64  `json:"stat_count"`
}

// Payload is the full remote data document
type Payload struct {
	SuspiciousLinks    []PayloadURL        `json:"suspicious_links"`
	SuspiciousSenders  []PayloadSender     `json:"suspicious_senders"`
	SuspiciousMessages []PayloadMessage    `json:"suspicious_messages"`
	SuspiciousKeywords []string            `json:"suspicious_keywords"`
	SuspiciousApps     []PayloadApp        `json:"suspicious_apps"`
	TrustedApps        []PayloadTrustedApp `json:"trusted_apps"`
	Tips               []string            `json:"tips"`
	UserStats          []PayloadStat       `json:"user_stats"`
}

// Merge folds a separately fetched tips document into the payload
func (p *Payload) Merge(tips []string) {
	p.Tips = append(p.Tips, tips...)
}

// Sponsor is the independently fetched sponsor document; a soft dependency
// of the refresh cycle.
type Sponsor struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}
