package hashing

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func writeArchive(t *testing.T, path string, entries map[string][]byte) {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create entry %s: %v", name, err)
		}
		if _, err := w.Write(data); err != nil {
			t.Fatalf("write entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestAPKContentHash_Direct(t *testing.T) {
	dir := t.TempDir()
	apk := filepath.Join(dir, "base.apk")
	dexA := []byte("dex-payload-a")
	dexB := []byte("dex-payload-b")
	writeArchive(t, apk, map[string][]byte{
		"classes.dex":          dexA,
		"classes2.dex":         dexB,
		"AndroidManifest.xml":  []byte("<manifest/>"),
		"res/values/strings.x": []byte("ignored"),
	})

	hash, method, err := APKContentHash(apk, nil)
	if err != nil {
		t.Fatalf("APKContentHash: %v", err)
	}
	if method != MethodDirect {
		t.Fatalf("method = %s, want %s", method, MethodDirect)
	}
	want := CombineDexHashes([]string{SHA256Hex(dexA), SHA256Hex(dexB)})
	if hash != want {
		t.Fatalf("hash = %s, want %s", hash, want)
	}
}

func TestAPKContentHash_SingleDexPassthrough(t *testing.T) {
	dir := t.TempDir()
	apk := filepath.Join(dir, "base.apk")
	dex := []byte("solo-dex")
	writeArchive(t, apk, map[string][]byte{"classes.dex": dex})

	hash, _, err := APKContentHash(apk, nil)
	if err != nil {
		t.Fatalf("APKContentHash: %v", err)
	}
	if hash != SHA256Hex(dex) {
		t.Fatalf("single-dex hash = %s, want digest of the dex itself", hash)
	}
}

func TestAPKContentHash_SplitFallback(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.apk")
	split := filepath.Join(dir, "split_config.arm64.apk")
	writeArchive(t, base, map[string][]byte{"AndroidManifest.xml": []byte("<manifest/>")})
	dex := []byte("split-dex")
	writeArchive(t, split, map[string][]byte{"classes.dex": dex})

	hash, method, err := APKContentHash(base, []string{split})
	if err != nil {
		t.Fatalf("APKContentHash: %v", err)
	}
	if method != MethodSplitAPK {
		t.Fatalf("method = %s, want %s", method, MethodSplitAPK)
	}
	if hash != SHA256Hex(dex) {
		t.Fatalf("hash = %s, want digest of split dex", hash)
	}
}

func TestAPKContentHash_SiblingFallback(t *testing.T) {
	dir := t.TempDir()
	reported := filepath.Join(dir, "stale.apk")
	writeArchive(t, reported, map[string][]byte{"AndroidManifest.xml": []byte("<manifest/>")})
	dex := []byte("sibling-dex")
	writeArchive(t, filepath.Join(dir, "base.apk"), map[string][]byte{"classes.dex": dex})

	hash, method, err := APKContentHash(reported, nil)
	if err != nil {
		t.Fatalf("APKContentHash: %v", err)
	}
	if method != MethodAlternate {
		t.Fatalf("method = %s, want %s", method, MethodAlternate)
	}
	if hash != SHA256Hex(dex) {
		t.Fatalf("hash = %s, want digest of sibling dex", hash)
	}
}

func TestAPKContentHash_NoDex(t *testing.T) {
	dir := t.TempDir()
	apk := filepath.Join(dir, "base.apk")
	writeArchive(t, apk, map[string][]byte{"AndroidManifest.xml": []byte("<manifest/>")})

	if _, _, err := APKContentHash(apk, nil); err == nil {
		t.Fatal("expected error for dex-free package")
	}
}

func TestProbeAPK(t *testing.T) {
	dir := t.TempDir()

	valid := filepath.Join(dir, "valid.apk")
	writeArchive(t, valid, map[string][]byte{"classes.dex": []byte("d")})
	if got := ProbeAPK(valid); got != StatusReadable {
		t.Errorf("valid archive status = %s, want %s", got, StatusReadable)
	}

	truncated := filepath.Join(dir, "truncated.apk")
	if err := os.WriteFile(truncated, []byte("PK\x03\x04data"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := ProbeAPK(truncated); got != StatusCorrupted {
		t.Errorf("truncated archive status = %s, want %s", got, StatusCorrupted)
	}

	empty := filepath.Join(dir, "empty.apk")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if got := ProbeAPK(empty); got != StatusEmpty {
		t.Errorf("empty file status = %s, want %s", got, StatusEmpty)
	}
	if got := ProbeAPK(filepath.Join(dir, "missing.apk")); got != StatusEmpty {
		t.Errorf("missing file status = %s, want %s", got, StatusEmpty)
	}
}
