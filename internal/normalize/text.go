package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Arabic code points folded to their Persian equivalents before hashing.
// SMS gateways and keyboards mix the two scripts freely, so comparison
// keys must not distinguish them.
var arabicToPersian = map[rune]rune{
	'ي': 'ی', // ي -> ی
	'ى': 'ی', // ى -> ی
	'ك': 'ک', // ك -> ک
	'ة': 'ه', // ة -> ه
	'أ': 'ا', // أ -> ا
	'إ': 'ا', // إ -> ا
	'آ': 'ا', // آ -> ا
	'ٱ': 'ا', // ٱ -> ا
	'ٲ': 'ا', // ٲ -> ا
	'ٳ': 'ا', // ٳ -> ا
	'ﭐ': 'ا', // ﭐ -> ا
	'ﭑ': 'ا', // ﭑ -> ا
	'ؤ': 'و', // ؤ -> و
	'ئ': 'ی', // ئ -> ی
}

var linkRe = regexp.MustCompile(`(?i)\b((https?://)?(www\.)?[a-zA-Z0-9-]+(\.[a-zA-Z0-9-]+)*\.[a-zA-Z]{2,}(/[^\s]*)?)`)

// Kashida stretches letters for typography and carries no meaning; it is
// stripped outright rather than treated as whitespace.
const kashida = '\u0640'

// Zero-width marks are invisible to the reader, which makes them a cheap way
// for senders to break literal matching. They collapse like whitespace.
func isZeroWidth(r rune) bool {
	switch r {
	case '\u200b', '\u200c', '\u200d', '\ufeff':
		return true
	}
	return false
}

func isPersianLetter(r rune) bool {
	return r >= 0x0600 && r <= 0x06FF && unicode.IsLetter(r)
}

// NormalizeText reduces a message to its Persian letter content. Kashida is
// stripped, zero-width marks and whitespace collapse to single spaces, Arabic
// variant letters fold to their Persian equivalents, and every other
// character (digits, Latin text, punctuation) is dropped. Tokens shorter than
// two letters are discarded. The result is stable under re-normalization.
func NormalizeText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r == kashida:
		case isZeroWidth(r) || unicode.IsSpace(r):
			b.WriteRune(' ')
		default:
			if p, ok := arabicToPersian[r]; ok {
				r = p
			}
			if isPersianLetter(r) {
				b.WriteRune(r)
			}
		}
	}
	words := strings.Fields(b.String())
	kept := words[:0]
	for _, w := range words {
		if utf8.RuneCountInString(w) >= 2 {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// MessageHash returns the hex SHA-256 of the normalized message with all
// spaces removed, or "" for messages that normalize to nothing. Removing
// the spaces makes the hash stable across reflowed copies of a campaign
// message.
func MessageHash(body string) string {
	normalized := strings.ReplaceAll(NormalizeText(body), " ", "")
	if normalized == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// ContainsLink reports whether the text carries at least one URL-shaped
// token.
func ContainsLink(text string) bool {
	return linkRe.MatchString(text)
}

// ExtractLinks returns every URL-shaped token in the text, in order.
func ExtractLinks(text string) []string {
	matches := linkRe.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}
	return matches
}
