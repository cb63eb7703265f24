// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const sampleManifest = `{
  "name": "example",
  "description": "Example project",
  "type": "policy-set",
  "git": true,
  "build": [
    {
      "name": "base",
      "description": "Base policy",
      "repo": "https://example.com/base.git",
      "version": "1.0.0",
      "commit": "0123456789abcdef0123456789abcdef01234567",
      "steps": [
        "copy ./ ./"
      ],
      "added_by": "polbuild add"
    },
    {
      "name": "./site/",
      "description": "Local site policy",
      "steps": [
        "directory ./ ./"
      ],
      "added_by": "polbuild add"
    }
  ]
}
`

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAndSaveRoundTrip(t *testing.T) {
	t.Parallel()

	path := writeManifest(t, sampleManifest)
	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.Name != "example" || !f.Git || len(f.Build) != 2 {
		t.Fatalf("unexpected manifest: %+v", f.Manifest)
	}
	if err := f.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(sampleManifest, string(data)); diff != "" {
		t.Errorf("save is not canonical (-want +got):\n%s", diff)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), FileName))
	if err != ErrNotAProject {
		t.Errorf("err = %v, want ErrNotAProject", err)
	}
}

func TestValidateBytesRejectsBadDocuments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
	}{
		{"build not a list", `{"name": "x", "build": {}}`},
		{"module without name", `{"build": [{"description": "d"}]}`},
		{"malformed commit", `{"build": [{"name": "m", "commit": "not-a-commit"}]}`},
		{"steps not strings", `{"build": [{"name": "m", "steps": [1, 2]}]}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if err := ValidateBytes([]byte(tc.doc)); err == nil {
				t.Errorf("ValidateBytes(%s) should fail", tc.doc)
			}
		})
	}
}

func TestValidateProject(t *testing.T) {
	t.Parallel()

	commit := "0123456789abcdef0123456789abcdef01234567"
	tests := []struct {
		name    string
		build   []*Module
		wantErr string
	}{
		{
			name:    "empty build list",
			wantErr: "empty",
		},
		{
			name: "duplicate names",
			build: []*Module{
				{Name: "a", URL: "https://x", Commit: commit},
				{Name: "a", URL: "https://x", Commit: commit},
			},
			wantErr: "duplicate",
		},
		{
			name:    "local module with commit",
			build:   []*Module{{Name: "./site/", Commit: commit}},
			wantErr: "must not have a commit",
		},
		{
			name:    "remote module without source",
			build:   []*Module{{Name: "a", Commit: commit}},
			wantErr: "neither url nor repo",
		},
		{
			name: "valid project",
			build: []*Module{
				{Name: "a", URL: "https://x", Commit: commit},
				{Name: "./site/"},
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			f := New(FileName, Manifest{Build: tc.build})
			err := ValidateProject(f, false)
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("ValidateProject: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("err = %v, want substring %q", err, tc.wantErr)
			}
		})
	}
}

func TestModulePredicates(t *testing.T) {
	t.Parallel()

	local := &Module{Name: "./site/"}
	if !local.IsLocal() {
		t.Error("./site/ should be local")
	}
	remote := &Module{Name: "base", URL: "https://example.com/base.git"}
	if remote.IsLocal() {
		t.Error("base should not be local")
	}
	if got := remote.Source(); got != "https://example.com/base" {
		t.Errorf("Source() = %q, want .git stripped", got)
	}

	for by, root := range map[string]bool{
		"":              true,
		AddedByAdd:      true,
		AddedByInit:     true,
		"other-module":  false,
		"polbuild tool": false,
	} {
		m := &Module{Name: "m", AddedBy: by}
		if m.IsRoot() != root {
			t.Errorf("IsRoot with added_by=%q = %v, want %v", by, m.IsRoot(), root)
		}
	}
}

func TestReplaceWithKeepsProvenance(t *testing.T) {
	t.Parallel()

	m := &Module{Name: "base", Version: "1.0.0", AddedBy: AddedByAdd}
	m.ReplaceWith(&Module{Name: "ignored", Version: "2.0.0", AddedBy: "ignored", Dependencies: []string{"dep"}})
	if m.Name != "base" || m.AddedBy != AddedByAdd {
		t.Errorf("name/added_by must survive: %+v", m)
	}
	if m.Version != "2.0.0" || len(m.Dependencies) != 1 {
		t.Errorf("other fields must be replaced: %+v", m)
	}
}

func TestProvidedModule(t *testing.T) {
	t.Parallel()

	f := New(FileName, Manifest{
		Provides: map[string]*Module{
			"good": {Description: "Good module", Steps: []string{"copy ./ ./"}},
			"bad":  {Description: "No steps"},
		},
	})

	url := "https://example.com/repo"
	commit := "0123456789abcdef0123456789abcdef01234567"
	m, err := f.ProvidedModule("good", url, commit, AddedByAdd)
	if err != nil {
		t.Fatalf("ProvidedModule: %v", err)
	}
	if m.Name != "good" || m.URL != url || m.Commit != commit || m.AddedBy != AddedByAdd {
		t.Errorf("record = %+v", m)
	}

	if _, err := f.ProvidedModule("bad", url, commit, AddedByAdd); err == nil {
		t.Error("entry without steps should be rejected")
	}
	if _, err := f.ProvidedModule("absent", url, commit, AddedByAdd); err == nil {
		t.Error("absent entry should be rejected")
	}
	if got := f.ProvidedNames(); len(got) != 2 || got[0] != "bad" || got[1] != "good" {
		t.Errorf("ProvidedNames() = %v, want sorted names", got)
	}
}
