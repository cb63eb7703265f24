// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"polbuild/internal/index"
	"polbuild/internal/manifest"
	"polbuild/internal/txn"
)

// Update upgrades the named build list modules (all of them when names is
// empty) to the newest record their applicable catalog offers. Per-target
// conditions (no version pin, absent from catalog, already newest) are
// warnings, never aborts. Dependencies introduced by upgrades are added in
// one batch at the end, and the whole run yields a single outcome.
func (o *Ops) Update(ctx context.Context, names []string) (txn.Outcome, error) {
	if len(names) == 0 {
		names = o.File.ModuleNames()
	}

	var (
		lines   []string
		pending []*manifest.Module
		queued  = make(map[string]bool)
		updated int
	)

	for _, name := range names {
		m, idx, err := o.updateTarget(name)
		if err != nil {
			return txn.Outcome{}, err
		}
		if m == nil {
			continue
		}

		var replacement *manifest.Module
		if m.URL != "" {
			replacement, err = o.latestFromURL(ctx, m)
		} else {
			replacement = o.latestFromIndex(m, idx)
		}
		if err != nil {
			return txn.Outcome{}, err
		}
		if replacement == nil {
			continue
		}

		for _, dep := range replacement.Dependencies {
			if o.File.InBuild(dep) || queued[dep] {
				continue
			}
			record, err := idx.ModuleRecord(idx.TranslateAlias(dep), m.Name)
			if err != nil {
				return txn.Outcome{}, fmt.Errorf("cannot find dependency %q of module %q: %w", dep, m.Name, err)
			}
			queued[dep] = true
			pending = append(pending, record)
		}

		lines = append(lines, updateLine(m, replacement))
		m.ReplaceWith(replacement)
		updated++
	}

	if updated == 0 && len(pending) == 0 {
		return txn.NothingToCommit(), nil
	}

	if len(pending) > 0 {
		if _, err := o.appendWithDependencies(pending, []moduleResolver{o.indexResolver()}); err != nil {
			return txn.Outcome{}, err
		}
	}
	if err := o.File.Save(); err != nil {
		return txn.Outcome{}, err
	}

	msg := strings.Join(lines, "\n")
	if updated > 1 {
		msg = fmt.Sprintf("Updated %d modules\n%s", updated, msg)
	} else {
		msg = strings.TrimPrefix(msg, " - ")
	}
	fmt.Fprintln(o.out(), msg)
	return txn.Outcome{Changed: true, Message: msg}, nil
}

// updateTarget resolves one update target to its build list entry and the
// catalog governing it: the module's own index override when present, else
// the project default.
func (o *Ops) updateTarget(name string) (*manifest.Module, *index.Index, error) {
	m := o.File.GetModuleFromBuild(o.Index.TranslateAlias(name))
	if m == nil {
		m = o.File.GetModuleFromBuild(name)
	}
	if m == nil {
		log.Warnf("module %q not found in the build list, skipping its update", name)
		return nil, nil, nil
	}
	if m.Index == "" {
		return m, o.Index, nil
	}
	ref, err := json.Marshal(m.Index)
	if err != nil {
		return nil, nil, err
	}
	idx, err := o.LoadIndex(ref)
	if err != nil {
		return nil, nil, fmt.Errorf("loading index %q for module %q: %w", m.Index, m.Name, err)
	}
	return m, idx, nil
}

// latestFromURL clones the module's source at its default branch and reads
// the record the remote manifest provides under the module's own name. An
// unchanged commit means nothing to do.
func (o *Ops) latestFromURL(ctx context.Context, m *manifest.Module) (*manifest.Module, error) {
	tmp, err := os.MkdirTemp("", "polbuild-update-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmp)

	commit, err := o.Git.CloneDefault(ctx, m.URL, tmp)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", m.URL, err)
	}
	remote, err := manifest.Load(filepath.Join(tmp, manifest.FileName))
	if err != nil {
		return nil, fmt.Errorf("reading module definitions from %s: %w", m.URL, err)
	}
	if _, ok := remote.Provides[m.Name]; !ok {
		log.Warnf("module %q is no longer provided by %s, skipping its update", m.Name, m.URL)
		return nil, nil
	}
	if commit == m.Commit {
		fmt.Fprintf(o.out(), "Module %q already up to date\n", m.Name)
		return nil, nil
	}
	return remote.ProvidedModule(m.Name, m.URL, commit, m.AddedBy)
}

// latestFromIndex compares the installed version against the catalog record.
// The catalog never drives a downgrade.
func (o *Ops) latestFromIndex(m *manifest.Module, idx *index.Index) *manifest.Module {
	if m.IsLocal() {
		return nil
	}
	if m.Version == "" {
		log.Warnf("module %q has no version and is not updatable, skipping", m.Name)
		return nil
	}
	entry := idx.Lookup(m.Name)
	if entry == nil {
		log.Warnf("module %q does not exist in its index, skipping its update", m.Name)
		return nil
	}
	cmp, err := CompareVersions(m.Version, entry.Version)
	if err != nil {
		log.Warnf("cannot compare versions for module %q: %v, skipping its update", m.Name, err)
		return nil
	}
	switch {
	case cmp == 0:
		fmt.Fprintf(o.out(), "Module %q already up to date\n", m.Name)
		return nil
	case cmp > 0:
		log.Warnf("installed version %s of module %q is newer than the index version %s, refusing to downgrade",
			m.Version, m.Name, entry.Version)
		return nil
	}
	record, err := idx.ModuleRecord(m.Name, m.AddedBy)
	if err != nil {
		log.Warnf("skipping update of module %q: %v", m.Name, err)
		return nil
	}
	return record
}

func updateLine(old, replacement *manifest.Module) string {
	if old.Version != "" && replacement.Version != "" {
		return fmt.Sprintf(" - Updated module %q from version %s to %s", old.Name, old.Version, replacement.Version)
	}
	return fmt.Sprintf(" - Updated module %q to commit %s", old.Name, replacement.Commit)
}
