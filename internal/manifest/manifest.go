// SPDX-License-Identifier: MPL-2.0

// Package manifest owns the on-disk declarative module list (polbuild.json):
// typed access to the build list, ordered pretty-printed saves, and schema
// validation of loaded documents.
package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// FileName is the manifest file name at the project root.
const FileName = "polbuild.json"

// ErrNotAProject is returned when no manifest exists where one is expected.
var ErrNotAProject = errors.New("not a polbuild project (no " + FileName + " found)")

type (
	// Manifest is the persisted project document.
	Manifest struct {
		Name        string `json:"name,omitempty"`
		Description string `json:"description,omitempty"`
		Type        string `json:"type,omitempty"`
		Git         bool   `json:"git,omitempty"`
		// Index is either a string reference to a catalog or an inline
		// catalog object; it is decoded lazily by the index package.
		Index    json.RawMessage    `json:"index,omitempty"`
		Provides map[string]*Module `json:"provides,omitempty"`
		Build    []*Module          `json:"build"`
	}

	// File couples a Manifest with the path it was loaded from.
	File struct {
		Path string
		Manifest
	}
)

// IsProject reports whether dir contains a manifest file.
func IsProject(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, FileName))
	return err == nil && info.Mode().IsRegular()
}

// Load reads and validates the manifest at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotAProject
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := ValidateBytes(data); err != nil {
		return nil, fmt.Errorf("invalid manifest %s: %w", path, err)
	}

	f := &File{Path: path}
	if err := json.Unmarshal(data, &f.Manifest); err != nil {
		return nil, fmt.Errorf("reading json file %s: %w", path, err)
	}
	warnUnknownKeys(data)
	return f, nil
}

// New creates an in-memory manifest file that has not been saved yet.
func New(path string, m Manifest) *File {
	return &File{Path: path, Manifest: m}
}

// Save writes the manifest back to disk, pretty-printed with a stable key
// order and a trailing newline.
func (f *File) Save() error {
	data, err := f.Pretty()
	if err != nil {
		return err
	}
	if err := os.WriteFile(f.Path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", f.Path, err)
	}
	return nil
}

// Pretty returns the canonical on-disk encoding of the manifest.
func (f *File) Pretty() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(f.Manifest); err != nil {
		return nil, fmt.Errorf("encoding manifest: %w", err)
	}
	return buf.Bytes(), nil
}

// GetModuleFromBuild returns the build list entry with the given name, or nil.
func (f *File) GetModuleFromBuild(name string) *Module {
	for _, m := range f.Build {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// InBuild reports whether a module with the given name is in the build list.
func (f *File) InBuild(name string) bool {
	return f.GetModuleFromBuild(name) != nil
}

// ModuleNames returns the build list names in order.
func (f *File) ModuleNames() []string {
	names := make([]string, 0, len(f.Build))
	for _, m := range f.Build {
		names = append(names, m.Name)
	}
	return names
}

// LongestModuleName returns the length of the longest module name in the
// build list, used to align status output columns.
func (f *File) LongestModuleName() int {
	longest := 0
	for _, m := range f.Build {
		if len(m.Name) > longest {
			longest = len(m.Name)
		}
	}
	return longest
}

// manifestKeyOrder is the on-disk key order for the top-level document.
var manifestKeyOrder = []string{
	"name", "description", "type", "git", "index", "provides", "build",
}

// topLevelKeys are the keys this version of polbuild understands.
var topLevelKeys = manifestKeyOrder

// MarshalJSON emits the top-level keys in canonical order. The build list is
// always present, even when empty.
func (m Manifest) MarshalJSON() ([]byte, error) {
	build := m.Build
	if build == nil {
		build = []*Module{}
	}
	fields := map[string]any{
		"name":        m.Name,
		"description": m.Description,
		"type":        m.Type,
		"git":         m.Git,
		"index":       m.Index,
		"provides":    m.Provides,
		"build":       build,
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, key := range manifestKeyOrder {
		val := fields[key]
		switch key {
		case "build":
		case "git":
			if !m.Git {
				continue
			}
		case "provides":
			if len(m.Provides) == 0 {
				continue
			}
		case "index":
			if len(m.Index) == 0 {
				continue
			}
		default:
			if s, ok := val.(string); ok && s == "" {
				continue
			}
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		fmt.Fprintf(&buf, "%q:", key)
		enc, err := json.Marshal(val)
		if err != nil {
			return nil, err
		}
		buf.Write(enc)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// warnUnknownKeys logs a warning for top-level or module-level keys this
// version does not understand. Unknown keys are typically typos or manifests
// written by a newer polbuild; the project should still work.
func warnUnknownKeys(data []byte) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return
	}
	for key := range raw {
		if !contains(topLevelKeys, key) {
			log.Warnf("the top level key %q is not known to this version of polbuild; is it a typo?", key)
		}
	}

	var doc struct {
		Build    []map[string]json.RawMessage          `json:"build"`
		Provides map[string]map[string]json.RawMessage `json:"provides"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return
	}
	known := append([]string{"alias", "by"}, moduleKeyOrder...)
	for _, mod := range doc.Build {
		for key := range mod {
			if !contains(known, key) {
				log.Warnf("the module level key %q is not known to this version of polbuild; is it a typo?", key)
			}
		}
	}
	for _, mod := range doc.Provides {
		for key := range mod {
			if !contains(known, key) {
				log.Warnf("the module level key %q is not known to this version of polbuild; is it a typo?", key)
			}
		}
	}
}

func contains(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
