// SPDX-License-Identifier: MPL-2.0

// Package index implements the module catalog: a registry mapping module
// names (and aliases) to publishable records. A project uses the default
// index unless its manifest names another one, and individual modules may
// override the catalog used for their own updates.
package index

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"polbuild/internal/manifest"
)

// DefaultURL is the canonical module index consulted when neither the
// project manifest nor the tool configuration names another one.
const DefaultURL = "https://raw.githubusercontent.com/polbuild/index/master/polbuild.json"

type (
	// Entry is one catalog record. Alias entries redirect to another name
	// and carry no other data.
	Entry struct {
		Alias        string          `json:"alias,omitempty"`
		Description  string          `json:"description,omitempty"`
		Tags         []string        `json:"tags,omitempty"`
		Repo         string          `json:"repo,omitempty"`
		URL          string          `json:"url,omitempty"`
		Version      string          `json:"version,omitempty"`
		Commit       string          `json:"commit,omitempty"`
		Subdirectory string          `json:"subdirectory,omitempty"`
		Dependencies []string        `json:"dependencies,omitempty"`
		Input        json.RawMessage `json:"input,omitempty"`
		Steps        []string        `json:"steps,omitempty"`
		By           string          `json:"by,omitempty"`
	}

	// Index is an ordered catalog of entries. Order follows the source
	// document so listings are stable.
	Index struct {
		ref     string
		names   []string
		entries map[string]*Entry
	}
)

// Load resolves an index reference: an HTTPS URL, a local file path, or an
// inline JSON object from the manifest's "index" key. An empty ref loads the
// default index.
func Load(ref json.RawMessage, fallbackURL string) (*Index, error) {
	if len(ref) == 0 {
		if fallbackURL == "" {
			fallbackURL = DefaultURL
		}
		return LoadRef(fallbackURL)
	}

	var s string
	if err := json.Unmarshal(ref, &s); err == nil {
		return LoadRef(s)
	}
	// Inline object.
	idx, err := parse(ref)
	if err != nil {
		return nil, fmt.Errorf("inline index: %w", err)
	}
	idx.ref = "inline index in " + manifest.FileName
	return idx, nil
}

// LoadRef loads an index from an HTTPS URL or a local file path.
func LoadRef(ref string) (*Index, error) {
	data, err := getOrReadBytes(ref)
	if err != nil {
		return nil, fmt.Errorf("downloading index %s failed - check your network settings: %w", ref, err)
	}
	idx, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("index %s: %w", ref, err)
	}
	idx.ref = ref
	return idx, nil
}

// Ref describes where the index was loaded from, for status output.
func (i *Index) Ref() string {
	return i.ref
}

// Names returns catalog names in document order, aliases included.
func (i *Index) Names() []string {
	return append([]string(nil), i.names...)
}

// Lookup returns the entry for name, or nil when absent. Aliases are not
// followed; see TranslateAlias.
func (i *Index) Lookup(name string) *Entry {
	return i.entries[name]
}

// Exists reports whether name is in the catalog (as an entry or alias).
func (i *Index) Exists(name string) bool {
	return i.entries[name] != nil
}

// TranslateAlias follows an alias entry to its target name. Non-alias names
// pass through unchanged.
func (i *Index) TranslateAlias(name string) string {
	entry := i.entries[name]
	if entry == nil || entry.Alias == "" {
		return name
	}
	log.Debugf("module %q is an alias for %q", name, entry.Alias)
	return entry.Alias
}

// ModuleRecord copies the catalog entry for name into a build list record
// with the given provenance marker. Aliases must be translated first.
func (i *Index) ModuleRecord(name, addedBy string) (*manifest.Module, error) {
	entry := i.entries[name]
	if entry == nil {
		return nil, fmt.Errorf("module %q does not exist in the index", name)
	}
	if entry.Alias != "" {
		return nil, fmt.Errorf("module %q is an alias for %q", name, entry.Alias)
	}
	return &manifest.Module{
		Name:         name,
		Description:  entry.Description,
		Tags:         append([]string(nil), entry.Tags...),
		Repo:         entry.Repo,
		URL:          entry.URL,
		Version:      entry.Version,
		Commit:       entry.Commit,
		Subdirectory: entry.Subdirectory,
		Dependencies: append([]string(nil), entry.Dependencies...),
		Input:        append(json.RawMessage(nil), entry.Input...),
		Steps:        append([]string(nil), entry.Steps...),
		AddedBy:      addedBy,
	}, nil
}

// parse decodes an index document: either a bare name-to-entry object or a
// document with an "index" key holding one. Key order is preserved.
func parse(data []byte) (*Index, error) {
	var wrapper struct {
		Index json.RawMessage `json:"index"`
	}
	if err := json.Unmarshal(data, &wrapper); err == nil && len(wrapper.Index) > 0 && wrapper.Index[0] == '{' {
		data = wrapper.Index
	}

	names, entries, err := decodeOrdered(data)
	if err != nil {
		return nil, err
	}
	return &Index{names: names, entries: entries}, nil
}

func decodeOrdered(data []byte) ([]string, map[string]*Entry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, fmt.Errorf("parsing index json: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("index must be a json object")
	}

	var names []string
	entries := make(map[string]*Entry)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, nil, fmt.Errorf("parsing index json: %w", err)
		}
		name := keyTok.(string)
		var entry Entry
		if err := dec.Decode(&entry); err != nil {
			return nil, nil, fmt.Errorf("parsing index entry %q: %w", name, err)
		}
		names = append(names, name)
		entries[name] = &entry
	}
	return names, entries, nil
}

func getOrReadBytes(ref string) ([]byte, error) {
	if strings.HasPrefix(ref, "https://") || strings.HasPrefix(ref, "http://") {
		resp, err := http.Get(ref)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("unexpected status %s", resp.Status)
		}
		return io.ReadAll(resp.Body)
	}
	return os.ReadFile(ref)
}
