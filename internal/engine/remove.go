// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"polbuild/internal/manifest"
	"polbuild/internal/prompt"
	"polbuild/internal/txn"
)

// Remove deletes modules from the build list. Identifiers are module names,
// local paths, or source URLs; a URL identifier removes every module sourced
// from it. Each removal is confirmed individually, listing the modules that
// depend on the candidate. A module's persisted input file is deleted only
// after a separate confirmation. Orphaned dependencies are pruned afterwards.
func (o *Ops) Remove(identifiers []string) (txn.Outcome, error) {
	var (
		lines   []string
		files   []string
		removed int
	)

	for _, identifier := range identifiers {
		matches := o.matchModules(identifier)
		if len(matches) == 0 {
			log.Warnf("module %q not found", identifier)
			continue
		}
		for _, m := range matches {
			ok, err := o.confirmRemoval(m)
			if err != nil {
				return txn.Outcome{}, err
			}
			if !ok {
				continue
			}
			o.deleteFromBuild(m.Name)
			lines = append(lines, fmt.Sprintf(" - Removed module %q", m.Name))
			removed++

			inputFiles, err := o.maybeRemoveInput(m)
			if err != nil {
				return txn.Outcome{}, err
			}
			files = append(files, inputFiles...)
		}
	}

	if removed == 0 && len(files) == 0 {
		return txn.NothingToCommit(), nil
	}
	if err := o.File.Save(); err != nil {
		return txn.Outcome{}, err
	}

	out := txn.Outcome{
		Changed:      true,
		Message:      joinRemovalLines(lines, removed),
		FilesTouched: files,
	}
	if removed > 0 {
		pruned, err := o.Prune()
		if err != nil {
			return txn.Outcome{}, err
		}
		out = out.Merge(pruned)
	}
	return out, nil
}

// matchModules resolves one removal identifier to build list entries. A URL
// matches every module sourced from it; a plain name falls back to its
// local-path form when a matching file or directory exists.
func (o *Ops) matchModules(identifier string) []*manifest.Module {
	if looksLikeURL(identifier) {
		src := strings.TrimSuffix(identifier, ".git")
		var matches []*manifest.Module
		for _, m := range o.File.Build {
			if m.Source() == src {
				matches = append(matches, m)
			}
		}
		return matches
	}

	if m := o.File.GetModuleFromBuild(identifier); m != nil {
		return []*manifest.Module{m}
	}
	if !strings.HasPrefix(identifier, manifest.LocalPrefix) {
		if _, err := os.Stat(identifier); err == nil {
			local := manifest.LocalPrefix + strings.Trim(filepath.ToSlash(identifier), "/") + "/"
			if m := o.File.GetModuleFromBuild(local); m != nil {
				return []*manifest.Module{m}
			}
		}
	}
	return nil
}

func (o *Ops) confirmRemoval(m *manifest.Module) (bool, error) {
	question := fmt.Sprintf("Do you wish to remove %q?", m.Name)
	if dependents := o.dependents(m.Name); len(dependents) > 0 {
		question = fmt.Sprintf("Module %q is depended on by: %s. Do you wish to remove it?",
			m.Name, strings.Join(dependents, ", "))
	}
	return prompt.AskYesNo(o.Prompter, question, "yes")
}

// maybeRemoveInput offers to delete the module's persisted input file.
func (o *Ops) maybeRemoveInput(m *manifest.Module) ([]string, error) {
	path := filepath.Join(".", m.Name, "input.json")
	if _, err := os.Stat(path); err != nil {
		return nil, nil
	}
	ok, err := prompt.AskYesNo(o.Prompter,
		fmt.Sprintf("Module %q has input data in %s. Do you want to remove it?", m.Name, path), "no")
	if err != nil || !ok {
		return nil, err
	}
	if err := os.Remove(path); err != nil {
		return nil, fmt.Errorf("removing %s: %w", path, err)
	}
	return []string{path}, nil
}

func (o *Ops) deleteFromBuild(name string) {
	build := o.File.Build[:0]
	for _, m := range o.File.Build {
		if m.Name != name {
			build = append(build, m)
		}
	}
	o.File.Build = build
}

// joinRemovalLines renders the aggregate removal message: a count header when
// several modules went, the bare line when only one did.
func joinRemovalLines(lines []string, removed int) string {
	if len(lines) == 0 {
		return ""
	}
	msg := strings.Join(lines, "\n")
	if len(lines) > 1 {
		return fmt.Sprintf("Removed %d modules\n%s", removed, msg)
	}
	return strings.TrimPrefix(msg, " - ")
}
