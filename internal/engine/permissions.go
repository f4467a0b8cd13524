package engine

import "strings"

// Android permission identifiers checked by the combination heuristic
const (
	permSendSMS       = "android.permission.SEND_SMS"
	permReadSMS       = "android.permission.READ_SMS"
	permReceiveSMS    = "android.permission.RECEIVE_SMS"
	permReadContacts  = "android.permission.READ_CONTACTS"
	permInternet      = "android.permission.INTERNET"
	permAccessibility = "android.permission.BIND_ACCESSIBILITY_SERVICE"
)

// riskyCombos is the fixed list of permission combinations considered
// dangerous together even when each alone is legitimate. Static and
// explainable, not a scored model.
var riskyCombos = [][]string{
	{permSendSMS, permReadContacts},
	{permSendSMS, permReceiveSMS},
	{permSendSMS, permReadSMS},
	{permInternet, permReadSMS},
	{permInternet, permReceiveSMS},
	{permInternet, permAccessibility},
	{permSendSMS, permAccessibility},
}

// permissionLabels maps each checked permission to its Persian user-facing
// name, used to build alert descriptions.
var permissionLabels = map[string]string{
	permSendSMS:       "ارسال پیامک",
	permReadSMS:       "خواندن پیامک",
	permReceiveSMS:    "دریافت پیامک",
	permReadContacts:  "خواندن مخاطبین",
	permInternet:      "دسترسی به اینترنت",
	permAccessibility: "سرویس دسترس‌پذیری",
}

// MatchRiskyPermissions reports whether the declared permission set covers
// any risky combination. On a match it returns the joined Persian labels of
// the matched combination for the alert text.
func MatchRiskyPermissions(declared []string) (string, bool) {
	set := make(map[string]struct{}, len(declared))
	for _, p := range declared {
		set[strings.TrimSpace(p)] = struct{}{}
	}
	for _, combo := range riskyCombos {
		matched := true
		for _, p := range combo {
			if _, ok := set[p]; !ok {
				matched = false
				break
			}
		}
		if !matched {
			continue
		}
		labels := make([]string, len(combo))
		for i, p := range combo {
			labels[i] = permissionLabels[p]
		}
		return strings.Join(labels, " + "), true
	}
	return "", false
}
