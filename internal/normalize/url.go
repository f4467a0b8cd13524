// Package normalize turns raw observed strings into canonical comparison
// keys: URL canonicalization and domain extraction, and Persian SMS text
// normalization feeding content hashing.
package normalize

import (
	"regexp"
	"strings"
)

var (
	schemePrefixRe = regexp.MustCompile(`(?i)^(http://|https://)`)
	wwwPrefixRe    = regexp.MustCompile(`(?i)^www\.`)
	urlShapeRe     = regexp.MustCompile(`^([a-zA-Z0-9-]+(\.[a-zA-Z0-9-]+)+)(/[^\s]*)?$`)
	gatewayRe      = regexp.MustCompile(`(?i)^(https?://)?([a-zA-Z0-9-]+\.)+shaparak\.ir(/.*)?$`)
)

// RemoveURLPrefixes strips a leading http:// or https:// and a leading
// www., case-insensitively, at most once each.
func RemoveURLPrefixes(url string) string {
	url = schemePrefixRe.ReplaceAllString(url, "")
	url = wwwPrefixRe.ReplaceAllString(url, "")
	return url
}

// RemoveQueryStringAndFragment truncates at the first '?' and '#' and drops
// a trailing slash.
func RemoveQueryStringAndFragment(url string) string {
	if i := strings.IndexByte(url, '?'); i > 0 {
		url = url[:i]
	}
	if i := strings.IndexByte(url, '#'); i > 0 {
		url = url[:i]
	}
	return strings.TrimRight(url, "/")
}

// ValidateURL reports whether the input looks like a URL after prefix and
// query-string removal. Empty input is invalid.
func ValidateURL(url string) bool {
	if url == "" {
		return false
	}
	cleaned := RemoveQueryStringAndFragment(url)
	cleaned = RemoveURLPrefixes(cleaned)
	return urlShapeRe.MatchString(cleaned)
}

// ExtractDomain returns the registrable domain of a URL using a last-two-
// labels heuristic. It does not consult a public-suffix list, so multi-part
// TLDs like .co.uk come out wrong; other matching logic depends on this
// behavior, so it stays.
func ExtractDomain(url string) string {
	domain := RemoveURLPrefixes(url)
	if i := strings.IndexByte(domain, '/'); i > 0 {
		domain = domain[:i]
	}
	parts := strings.Split(domain, ".")
	if len(parts) > 1 {
		return strings.Join(parts[len(parts)-2:], ".")
	}
	return domain
}

// IsTrustedGatewaySubdomain reports whether the URL's host is a subdomain
// of the shaparak.ir payment gateway. The bare domain is deliberately not
// trusted: legitimate gateway pages always live on dynamic subdomains.
func IsTrustedGatewaySubdomain(url string) bool {
	return gatewayRe.MatchString(url)
}

// CanonicalURL lowercases, trims and strips prefixes, query string and
// fragment, yielding the comparison key stored in the signature database.
func CanonicalURL(url string) string {
	url = strings.ToLower(strings.TrimSpace(url))
	url = RemoveURLPrefixes(url)
	return RemoveQueryStringAndFragment(url)
}
