// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// ProvidedModule builds a build-list record for name from the manifest's
// "provides" map. url and commit identify the source the manifest was read
// from; they become the record's source pins.
func (f *File) ProvidedModule(name, url, commit, addedBy string) (*Module, error) {
	entry, ok := f.Provides[name]
	if !ok {
		return nil, fmt.Errorf("module %q is not provided by %s", name, url)
	}
	if entry.Description == "" {
		return nil, fmt.Errorf("missing required key 'description' in module definition for %q", name)
	}
	if len(entry.Steps) == 0 {
		return nil, fmt.Errorf("missing required key 'steps' in module definition for %q", name)
	}

	m := entry.Clone()
	m.Name = name
	m.URL = url
	m.Commit = commit
	m.Repo = ""
	m.Version = ""
	m.AddedBy = addedBy
	return m, nil
}

// ProvidedNames returns the names in the manifest's "provides" map, sorted
// so URL-based adds are deterministic.
func (f *File) ProvidedNames() []string {
	names := maps.Keys(f.Provides)
	slices.Sort(names)
	return names
}
