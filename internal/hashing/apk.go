package hashing

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	dextk "github.com/csnewman/dextk"
)

// Extraction strategies, reported alongside the hash so mismatching
// fingerprints can be traced to how they were produced.
const (
	MethodDirect    = "direct"
	MethodSplitAPK  = "split_apk"
	MethodClassList = "dex_classlist"
	MethodAlternate = "alternate_path"
)

var dexEntryRe = regexp.MustCompile(`^classes[0-9]*\.dex$`)

// ErrNoDexFound means no strategy could produce a dex fingerprint for the
// package. Callers treat it as "hash unavailable", not as a scan failure.
var ErrNoDexFound = errors.New("hashing: no dex content found in package")

// Probe results for an APK file. The status decides which extraction
// strategies are worth attempting.
const (
	StatusReadable  = "readable"
	StatusEmpty     = "empty"
	StatusCorrupted = "corrupted"
)

// ProbeAPK classifies whether the archive can be read at all. Some installs
// expose a path the platform refuses to serve, or a truncated file.
func ProbeAPK(path string) string {
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		return StatusEmpty
	}
	zr, err := zip.OpenReader(path)
	if err != nil {
		return StatusCorrupted
	}
	defer zr.Close()
	if len(zr.File) == 0 {
		return StatusEmpty
	}
	return StatusReadable
}

// APKContentHash fingerprints installed app code. For a readable archive it
// tries, in order: hashing the classes*.dex entries of the base APK, the
// dex entries of any split APKs, and a class-name fingerprint decoded from
// the dex. Unreadable archives skip straight to the sibling-APK fallback,
// which every chain ends in. Hardened or oddly packaged apps fail the early
// strategies, which is why the chain exists.
func APKContentHash(apkPath string, splitPaths []string) (hash, method string, err error) {
	if ProbeAPK(apkPath) == StatusReadable {
		if hash, err = hashDexEntries(apkPath); err == nil {
			return hash, MethodDirect, nil
		}
	}

	var splitHashes []string
	for _, p := range splitPaths {
		if h, herr := hashDexEntries(p); herr == nil {
			splitHashes = append(splitHashes, h)
		}
	}
	if len(splitHashes) > 0 {
		return CombineDexHashes(splitHashes), MethodSplitAPK, nil
	}

	if hash, err = classListFingerprint(apkPath); err == nil {
		return hash, MethodClassList, nil
	}

	if hash, err = hashSiblingAPKs(apkPath); err == nil {
		return hash, MethodAlternate, nil
	}
	return "", "", ErrNoDexFound
}

// hashDexEntries opens path as a zip archive and returns the combined hash
// of every classes*.dex entry.
func hashDexEntries(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", err
	}
	defer zr.Close()

	var hashes []string
	for _, f := range zr.File {
		if !dexEntryRe.MatchString(f.Name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open %s: %w", f.Name, err)
		}
		h, err := SHA256HexReader(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("hash %s: %w", f.Name, err)
		}
		hashes = append(hashes, h)
	}
	if len(hashes) == 0 {
		return "", ErrNoDexFound
	}
	return CombineDexHashes(hashes), nil
}

// classListFingerprint decodes the dex entries and hashes the sorted list
// of class names. Slower than hashing raw bytes but survives archives whose
// dex entries cannot be streamed whole.
func classListFingerprint(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", err
	}
	defer zr.Close()

	var classes []string
	for _, f := range zr.File {
		if !dexEntryRe.MatchString(f.Name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			continue
		}
		raw, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			continue
		}
		names, err := dexClassNames(bytes.NewReader(raw))
		if err != nil {
			continue
		}
		classes = append(classes, names...)
	}
	if len(classes) == 0 {
		return "", ErrNoDexFound
	}
	sort.Strings(classes)
	return SHA256Hex([]byte(strings.Join(classes, "\n"))), nil
}

func dexClassNames(r io.ReaderAt) ([]string, error) {
	dr, err := dextk.Read(r, dextk.WithReadCache(16))
	if err != nil {
		return nil, err
	}
	var names []string
	ci := dr.ClassIter()
	for ci.HasNext() {
		node, err := ci.Next()
		if err != nil {
			break
		}
		names = append(names, node.Name.String())
	}
	if len(names) == 0 {
		return nil, ErrNoDexFound
	}
	return names, nil
}

// hashSiblingAPKs looks for base.apk and split_*.apk next to the reported
// path. The reported path itself is sometimes stale after an app update.
func hashSiblingAPKs(apkPath string) (string, error) {
	dir := filepath.Dir(apkPath)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	var hashes []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".apk" {
			continue
		}
		if name != "base.apk" && !strings.HasPrefix(name, "split_") {
			continue
		}
		full := filepath.Join(dir, name)
		if full == apkPath {
			continue
		}
		if h, herr := hashDexEntries(full); herr == nil {
			hashes = append(hashes, h)
		}
	}
	if len(hashes) == 0 {
		return "", ErrNoDexFound
	}
	return CombineDexHashes(hashes), nil
}
