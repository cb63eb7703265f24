// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"fmt"

	"polbuild/internal/manifest"
	"polbuild/internal/prompt"
	"polbuild/internal/txn"
)

// Prune removes modules that are neither roots nor depended on by a needed
// module, after listing them and asking once for the whole batch. Finding
// nothing to do suppresses the outer commit.
func (o *Ops) Prune() (txn.Outcome, error) {
	if len(o.File.Build) == 0 {
		return txn.NothingToCommit(), nil
	}

	keep := neededModules(o.File.Build)
	var candidates []*manifest.Module
	for _, m := range o.File.Build {
		if !keep[m.Name] {
			candidates = append(candidates, m)
		}
	}
	if len(candidates) == 0 {
		return txn.NothingToCommit(), nil
	}

	fmt.Fprintln(o.out(), "The following modules were added as dependencies and are no longer needed:")
	for _, m := range candidates {
		fmt.Fprintf(o.out(), "%s - %s - added by: %s\n", m.Name, m.Description, m.AddedBy)
	}
	ok, err := prompt.AskYesNo(o.Prompter, "Do you wish to remove these modules?", "yes")
	if err != nil {
		return txn.Outcome{}, err
	}
	if !ok {
		return txn.NothingToCommit(), nil
	}

	var lines []string
	for _, m := range candidates {
		o.deleteFromBuild(m.Name)
		lines = append(lines, fmt.Sprintf(" - Removed module %q", m.Name))
	}
	if err := o.File.Save(); err != nil {
		return txn.Outcome{}, err
	}
	return txn.Outcome{
		Changed: true,
		Message: joinRemovalLines(lines, len(candidates)),
	}, nil
}

// neededModules computes the set of module names reachable from the roots:
// a module is needed when it is a root, or when some needed module depends on
// it. The memo doubles as a visited set, so dependency cycles terminate.
func neededModules(build []*manifest.Module) map[string]bool {
	memo := make(map[string]bool, len(build))
	visiting := make(map[string]bool)

	var needed func(m *manifest.Module) bool
	needed = func(m *manifest.Module) bool {
		if m.IsRoot() {
			return true
		}
		if v, ok := memo[m.Name]; ok {
			return v
		}
		if visiting[m.Name] {
			// Cycle with no root anywhere on it: not reachable.
			return false
		}
		visiting[m.Name] = true
		defer delete(visiting, m.Name)
		for _, other := range build {
			if other.DependsOn(m.Name) && needed(other) {
				memo[m.Name] = true
				return true
			}
		}
		memo[m.Name] = false
		return false
	}

	for _, m := range build {
		memo[m.Name] = needed(m)
	}
	return memo
}
