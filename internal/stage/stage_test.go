// SPDX-License-Identifier: MPL-2.0

package stage

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"polbuild/internal/manifest"
)

// tarGz builds a gzipped tarball with the given files under one top-level
// directory, the layout of repository archives.
func tarGz(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, content := range files {
		hdr := &tar.Header{
			Name: "repo-main/" + name,
			Mode: 0o644,
			Size: int64(len(content)),
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func sha256hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func projectFile(build ...*manifest.Module) *manifest.File {
	return manifest.New(manifest.FileName, manifest.Manifest{Name: "p", Build: build})
}

func TestRunStagesArchiveURLModule(t *testing.T) {
	t.Parallel()

	archive := tarGz(t, map[string]string{"policy.json": "{}"})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive)
	}))
	t.Cleanup(server.Close)

	commit := sha256hex(archive)
	f := projectFile(&manifest.Module{
		Name:   "archived",
		URL:    server.URL + "/archived.tar.gz",
		Commit: commit,
	})
	opts := Options{CacheDir: t.TempDir(), OutDir: filepath.Join(t.TempDir(), "out")}

	plan, err := Run(context.Background(), f, opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	staged := plan["archived"]
	if staged.Sequence != 1 {
		t.Errorf("sequence = %d, want 1", staged.Sequence)
	}
	wantDir := filepath.Join(opts.OutDir, "stages", "001_archived_"+commit)
	if staged.Dir != wantDir {
		t.Errorf("slot = %s, want %s", staged.Dir, wantDir)
	}
	if _, err := os.Stat(filepath.Join(staged.Dir, "policy.json")); err != nil {
		t.Errorf("staged content missing: %v", err)
	}
	// Archive content is cached by commit for later runs.
	if _, err := os.Stat(filepath.Join(DownloadPath(opts.CacheDir, commit), "policy.json")); err != nil {
		t.Errorf("cache entry missing: %v", err)
	}
}

func TestRunIsDeterministic(t *testing.T) {
	local := filepath.Join(t.TempDir(), "work")
	if err := os.MkdirAll(filepath.Join(local, "site"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(local, "site", "a.json"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(local)

	f := projectFile(&manifest.Module{Name: "./site/"})
	opts := Options{CacheDir: t.TempDir(), OutDir: "out"}

	first, err := Run(context.Background(), f, opts)
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	second, err := Run(context.Background(), f, opts)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("two runs over the same build list differ (-first +second):\n%s", diff)
	}
	if first["./site/"].Dir != filepath.Join("out", "stages", "001_site_local") {
		t.Errorf("local slot = %s", first["./site/"].Dir)
	}
}

func TestRunRegistryModuleWithoutChecksumFails(t *testing.T) {
	t.Parallel()

	versions := filepath.Join(t.TempDir(), "versions.json")
	if err := os.WriteFile(versions, []byte(`{"versions": {}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	commit := strings.Repeat("ab", 20)
	f := projectFile(&manifest.Module{
		Name:    "registry-module",
		Repo:    "https://example.com/registry-module.git",
		Version: "1.0.0",
		Commit:  commit,
	})
	opts := Options{
		CacheDir:    t.TempDir(),
		OutDir:      filepath.Join(t.TempDir(), "out"),
		VersionsURL: versions,
		ModulesURL:  "https://example.com/modules",
	}

	_, err := Run(context.Background(), f, opts)
	if err == nil || !strings.Contains(err.Error(), `cannot verify checksum of the "registry-module" module`) {
		t.Fatalf("err = %v, want cannot-verify-checksum failure", err)
	}
	if _, statErr := os.Stat(filepath.Join(opts.OutDir, "stages")); statErr == nil {
		entries, _ := os.ReadDir(filepath.Join(opts.OutDir, "stages"))
		if len(entries) > 0 {
			t.Errorf("staged entries created despite fatal error: %v", entries)
		}
	}
}

func TestRunRegistryModuleVerifiedDownload(t *testing.T) {
	t.Parallel()

	archive := tarGz(t, map[string]string{"module.json": `{"x": 1}`})
	commit := strings.Repeat("cd", 20)

	mux := http.NewServeMux()
	mux.HandleFunc(fmt.Sprintf("/modules/base/%s.tar.gz", commit), func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	versions := filepath.Join(t.TempDir(), "versions.json")
	doc := fmt.Sprintf(`{"versions": {"base": {"1.0.0": {"archive_sha256": "%s"}}}}`, sha256hex(archive))
	if err := os.WriteFile(versions, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	f := projectFile(&manifest.Module{
		Name:    "base",
		Repo:    "https://example.com/base.git",
		Version: "1.0.0",
		Commit:  commit,
	})
	opts := Options{
		CacheDir:    t.TempDir(),
		OutDir:      filepath.Join(t.TempDir(), "out"),
		VersionsURL: versions,
		ModulesURL:  server.URL + "/modules",
	}

	plan, err := Run(context.Background(), f, opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := os.Stat(filepath.Join(plan["base"].Dir, "module.json")); err != nil {
		t.Errorf("staged content missing: %v", err)
	}
}

func TestRunRejectsBadCommit(t *testing.T) {
	t.Parallel()

	f := projectFile(&manifest.Module{
		Name: "bad",
		URL:  "https://example.com/bad.git",
	})
	_, err := Run(context.Background(), f, Options{CacheDir: t.TempDir(), OutDir: t.TempDir()})
	if err == nil || !strings.Contains(err.Error(), "commit") {
		t.Fatalf("err = %v, want missing-commit failure", err)
	}

	f = projectFile(&manifest.Module{
		Name:   "bad",
		URL:    "https://example.com/bad.git",
		Commit: "main",
	})
	_, err = Run(context.Background(), f, Options{CacheDir: t.TempDir(), OutDir: t.TempDir()})
	if err == nil || !strings.Contains(err.Error(), "not a commit") {
		t.Fatalf("err = %v, want commit-shape failure", err)
	}
}

func TestSubdirectoryMissingFromArchive(t *testing.T) {
	t.Parallel()

	archive := tarGz(t, map[string]string{"other/policy.json": "{}"})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive)
	}))
	t.Cleanup(server.Close)

	f := projectFile(&manifest.Module{
		Name:         "subdir",
		URL:          server.URL + "/subdir.tar.gz",
		Commit:       sha256hex(archive),
		Subdirectory: "no-such-dir",
	})
	_, err := Run(context.Background(), f, Options{CacheDir: t.TempDir(), OutDir: t.TempDir()})
	if err == nil || !strings.Contains(err.Error(), "no-such-dir") {
		t.Fatalf("err = %v, want missing-subdirectory failure", err)
	}
}
