// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	// AddedByAdd marks a module the user requested directly via `polbuild add`.
	AddedByAdd = "polbuild add"
	// AddedByInit marks a module added while initializing a project.
	AddedByInit = "polbuild init"

	// LocalPrefix marks a module sourced from the local working tree.
	LocalPrefix = "./"
)

type (
	// Module is one entry of the manifest's build list: a named, versioned
	// unit of policy content with an optional dependency list. Remote modules
	// carry a commit plus a url or repo; local modules (name starting with
	// "./") carry neither.
	Module struct {
		Name         string          `json:"name"`
		Description  string          `json:"description,omitempty"`
		Tags         []string        `json:"tags,omitempty"`
		Repo         string          `json:"repo,omitempty"`
		URL          string          `json:"url,omitempty"`
		Index        string          `json:"index,omitempty"`
		Version      string          `json:"version,omitempty"`
		Commit       string          `json:"commit,omitempty"`
		Subdirectory string          `json:"subdirectory,omitempty"`
		Dependencies []string        `json:"dependencies,omitempty"`
		Input        json.RawMessage `json:"input,omitempty"`
		Steps        []string        `json:"steps,omitempty"`
		AddedBy      string          `json:"added_by,omitempty"`
	}
)

// IsLocal reports whether the module is sourced from the working tree.
func (m *Module) IsLocal() bool {
	return strings.HasPrefix(m.Name, LocalPrefix)
}

// IsRoot reports whether the module can never be pruned: it was either
// requested by the user directly or predates provenance tracking.
func (m *Module) IsRoot() bool {
	return m.AddedBy == "" || AddedManually(m.AddedBy)
}

// AddedManually reports whether an added_by marker denotes a user action
// rather than a dependent module name.
func AddedManually(addedBy string) bool {
	return addedBy == AddedByAdd || addedBy == AddedByInit
}

// Source returns the module's source location: the explicit url if present,
// else the registry-implied repo. A trailing ".git" suffix is stripped.
func (m *Module) Source() string {
	src := m.URL
	if src == "" {
		src = m.Repo
	}
	return strings.TrimSuffix(src, ".git")
}

// DependsOn reports whether name is among the module's dependencies.
func (m *Module) DependsOn(name string) bool {
	for _, d := range m.Dependencies {
		if d == name {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the module.
func (m *Module) Clone() *Module {
	c := *m
	c.Tags = append([]string(nil), m.Tags...)
	c.Dependencies = append([]string(nil), m.Dependencies...)
	c.Steps = append([]string(nil), m.Steps...)
	c.Input = append(json.RawMessage(nil), m.Input...)
	return &c
}

// ReplaceWith overwrites every field of m except name and added_by with the
// values from src. Update uses this so provenance survives an upgrade.
func (m *Module) ReplaceWith(src *Module) {
	name, addedBy := m.Name, m.AddedBy
	*m = *src.Clone()
	m.Name = name
	m.AddedBy = addedBy
}

// moduleKeyOrder is the on-disk key order for module records. It matches the
// order records are constructed in, so saved manifests diff cleanly.
var moduleKeyOrder = []string{
	"name", "description", "tags", "repo", "url", "index", "version",
	"commit", "subdirectory", "dependencies", "input", "steps", "added_by",
}

// MarshalJSON emits the module's keys in the canonical manifest order,
// omitting empty optional fields.
func (m Module) MarshalJSON() ([]byte, error) {
	fields := map[string]any{
		"name":         m.Name,
		"description":  m.Description,
		"tags":         m.Tags,
		"repo":         m.Repo,
		"url":          m.URL,
		"index":        m.Index,
		"version":      m.Version,
		"commit":       m.Commit,
		"subdirectory": m.Subdirectory,
		"dependencies": m.Dependencies,
		"input":        m.Input,
		"steps":        m.Steps,
		"added_by":     m.AddedBy,
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, key := range moduleKeyOrder {
		val := fields[key]
		if key != "name" && isEmptyValue(val) {
			continue
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

func isEmptyValue(v any) bool {
	switch val := v.(type) {
	case string:
		return val == ""
	case []string:
		return len(val) == 0
	case json.RawMessage:
		return len(val) == 0
	case nil:
		return true
	}
	return false
}
