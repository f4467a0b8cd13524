// Package hashing computes the content fingerprints used to identify
// malicious APKs and SMS campaigns: fixed-width hex digests, base64
// certificate digests, and the multi-dex combined hash.
package hashing

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"io"
	"os"
	"sort"
	"strings"
)

// MD5Hex returns the lowercase hex MD5 of data, always 32 chars. Kept for
// legacy signature entries only; nothing new is published with it.
func MD5Hex(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

// SHA1Hex returns the lowercase hex SHA-1 of data, always 40 chars.
func SHA1Hex(data []byte) string {
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])
}

// SHA256Hex returns the lowercase hex SHA-256 of data, always 64 chars.
func SHA256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// SHA256HexReader streams r through SHA-256 and returns the hex digest.
func SHA256HexReader(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// SHA1Base64 returns the standard-base64 SHA-1 of data. Signing
// certificates are published in this form.
func SHA1Base64(data []byte) string {
	sum := sha1.Sum(data)
	return base64.StdEncoding.EncodeToString(sum[:])
}

// FileSHA1Base64 hashes the file at path with SHA-1 and returns the
// standard-base64 digest.
func FileSHA1Base64(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha1.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(h.Sum(nil)), nil
}

// CombineDexHashes reduces the per-dex hex hashes of an APK to a single
// fingerprint. A single dex is its own hash; multiple hashes are sorted
// and the concatenation re-hashed, so the result does not depend on the
// order entries were read in.
func CombineDexHashes(hashes []string) string {
	switch len(hashes) {
	case 0:
		return ""
	case 1:
		return hashes[0]
	}
	sorted := make([]string, len(hashes))
	copy(sorted, hashes)
	sort.Strings(sorted)
	return SHA256Hex([]byte(strings.Join(sorted, "")))
}
