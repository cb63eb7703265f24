// SPDX-License-Identifier: MPL-2.0

package index

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"polbuild/internal/manifest"
)

const sampleIndex = `{
  "index": {
    "zebra": {
      "description": "Listed first on purpose",
      "repo": "https://example.com/zebra.git",
      "version": "1.0.0",
      "commit": "0123456789abcdef0123456789abcdef01234567",
      "steps": ["copy ./ ./"]
    },
    "base": {
      "description": "Base policy",
      "repo": "https://example.com/base.git",
      "version": "3.0.0",
      "commit": "89abcdef0123456789abcdef0123456789abcdef",
      "dependencies": ["zebra"],
      "steps": ["copy ./ ./"]
    },
    "masterfiles": {"alias": "base"}
  }
}`

func sampleIndexFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "index.json")
	if err := os.WriteFile(path, []byte(sampleIndex), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadRefPreservesOrder(t *testing.T) {
	t.Parallel()

	idx, err := LoadRef(sampleIndexFile(t))
	if err != nil {
		t.Fatalf("LoadRef: %v", err)
	}
	want := []string{"zebra", "base", "masterfiles"}
	if diff := cmp.Diff(want, idx.Names()); diff != "" {
		t.Errorf("names out of document order (-want +got):\n%s", diff)
	}
}

func TestLoadFromHTTP(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleIndex))
	}))
	t.Cleanup(server.Close)

	idx, err := LoadRef(server.URL)
	if err != nil {
		t.Fatalf("LoadRef: %v", err)
	}
	if !idx.Exists("base") {
		t.Error("base missing from downloaded index")
	}
}

func TestLoadInlineObject(t *testing.T) {
	t.Parallel()

	inline := json.RawMessage(`{"only": {"description": "Inline entry", "steps": ["copy ./ ./"]}}`)
	idx, err := Load(inline, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !idx.Exists("only") {
		t.Error("inline entry missing")
	}
}

func TestLoadStringRef(t *testing.T) {
	t.Parallel()

	path := sampleIndexFile(t)
	ref, _ := json.Marshal(path)
	idx, err := Load(ref, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if idx.Ref() != path {
		t.Errorf("Ref() = %q, want %q", idx.Ref(), path)
	}
}

func TestTranslateAlias(t *testing.T) {
	t.Parallel()

	idx, err := LoadRef(sampleIndexFile(t))
	if err != nil {
		t.Fatal(err)
	}
	if got := idx.TranslateAlias("masterfiles"); got != "base" {
		t.Errorf("TranslateAlias(masterfiles) = %q, want base", got)
	}
	if got := idx.TranslateAlias("base"); got != "base" {
		t.Errorf("TranslateAlias(base) = %q, want passthrough", got)
	}
	if got := idx.TranslateAlias("unknown"); got != "unknown" {
		t.Errorf("TranslateAlias(unknown) = %q, want passthrough", got)
	}
}

func TestModuleRecord(t *testing.T) {
	t.Parallel()

	idx, err := LoadRef(sampleIndexFile(t))
	if err != nil {
		t.Fatal(err)
	}
	m, err := idx.ModuleRecord("base", manifest.AddedByAdd)
	if err != nil {
		t.Fatalf("ModuleRecord: %v", err)
	}
	if m.Name != "base" || m.Version != "3.0.0" || m.AddedBy != manifest.AddedByAdd {
		t.Errorf("record = %+v", m)
	}
	if len(m.Dependencies) != 1 || m.Dependencies[0] != "zebra" {
		t.Errorf("dependencies = %v", m.Dependencies)
	}

	if _, err := idx.ModuleRecord("masterfiles", manifest.AddedByAdd); err == nil {
		t.Error("alias entries must be translated before ModuleRecord")
	}
	if _, err := idx.ModuleRecord("ghost", manifest.AddedByAdd); err == nil {
		t.Error("unknown names must be rejected")
	}
}

func TestSearch(t *testing.T) {
	t.Parallel()

	idx, err := LoadRef(sampleIndexFile(t))
	if err != nil {
		t.Fatal(err)
	}

	all := idx.Search(nil)
	if len(all) != 2 {
		t.Fatalf("Search(nil) = %d results, want 2 (aliases folded in)", len(all))
	}

	// A term matching only an alias surfaces its target.
	results := idx.Search([]string{"masterfiles"})
	if len(results) != 1 || results[0].Name != "base" {
		t.Fatalf("Search(masterfiles) = %+v, want base", results)
	}
	if len(results[0].Aliases) != 1 || results[0].Aliases[0] != "masterfiles" {
		t.Errorf("aliases = %v", results[0].Aliases)
	}

	if got := idx.Search([]string{"nothing-matches-this"}); len(got) != 0 {
		t.Errorf("Search(no match) = %+v, want empty", got)
	}
}

func TestVersionsCatalog(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "versions.json")
	doc := `{"versions": {"base": {"3.0.0": {"archive_sha256": "6cd24612e67a2c1cb29677422edb3c2dcba16aa27d37b4e4b2ddf188cd1e6ea9"}}}}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	catalog, err := FetchVersions(path)
	if err != nil {
		t.Fatalf("FetchVersions: %v", err)
	}
	if sum, ok := catalog.Checksum("base", "3.0.0"); !ok || sum == "" {
		t.Errorf("Checksum(base, 3.0.0) = %q, %v", sum, ok)
	}
	if _, ok := catalog.Checksum("base", "9.9.9"); ok {
		t.Error("unknown version must have no checksum")
	}
	if _, ok := catalog.Checksum("ghost", "1.0.0"); ok {
		t.Error("unknown module must have no checksum")
	}
}
