// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"strings"
	"testing"

	"polbuild/internal/manifest"
)

const sharedSourceURL = "https://example.com/modules"

func removeTestFile(t *testing.T) *manifest.File {
	t.Helper()
	return testFile(t,
		&manifest.Module{Name: "one", URL: sharedSourceURL, Commit: commitOne, AddedBy: manifest.AddedByAdd},
		&manifest.Module{Name: "two", URL: sharedSourceURL, Commit: commitOne, AddedBy: manifest.AddedByAdd},
	)
}

func TestRemoveByURLMatchesAll(t *testing.T) {
	t.Parallel()

	f := removeTestFile(t)
	ops := testOps(f, nil, &scriptedPrompter{answers: []string{"yes", "yes"}})

	out, err := ops.Remove([]string{sharedSourceURL})
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if !out.Changed {
		t.Error("Remove should report a change")
	}
	if len(f.Build) != 0 {
		t.Errorf("build list = %v, want empty", f.ModuleNames())
	}
	if !strings.Contains(out.Message, "Removed 2 modules") {
		t.Errorf("message %q should carry the removal count header", out.Message)
	}
}

func TestRemoveByURLDeclinedChangesNothing(t *testing.T) {
	t.Parallel()

	f := removeTestFile(t)
	ops := testOps(f, nil, &scriptedPrompter{answers: []string{"no", "no"}})

	out, err := ops.Remove([]string{sharedSourceURL})
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if out.Changed {
		t.Error("declined removal must not report a change")
	}
	if !out.SkipCommit {
		t.Error("declined removal must suppress the commit")
	}
	if len(f.Build) != 2 {
		t.Errorf("build list = %v, want both modules kept", f.ModuleNames())
	}
}

func TestRemoveListsDependents(t *testing.T) {
	t.Parallel()

	f := testFile(t,
		&manifest.Module{Name: "base", URL: sharedSourceURL, Commit: commitOne, AddedBy: manifest.AddedByAdd},
		&manifest.Module{Name: "site", URL: sharedSourceURL, Commit: commitOne, AddedBy: manifest.AddedByAdd, Dependencies: []string{"base"}},
	)
	prompter := &scriptedPrompter{answers: []string{"no"}}
	ops := testOps(f, nil, prompter)

	if _, err := ops.Remove([]string{"base"}); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if len(prompter.questions) == 0 || !strings.Contains(prompter.questions[0], "site") {
		t.Errorf("confirmation %q should name the dependent module", prompter.questions)
	}
}

func TestRemoveUnknownNameIsWarningOnly(t *testing.T) {
	t.Parallel()

	f := removeTestFile(t)
	ops := testOps(f, nil, &scriptedPrompter{})

	out, err := ops.Remove([]string{"no-such-module"})
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if out.Changed || !out.SkipCommit {
		t.Errorf("outcome = %+v, want unchanged skip-commit", out)
	}
	if len(f.Build) != 2 {
		t.Errorf("build list = %v, want untouched", f.ModuleNames())
	}
}

func TestRemovePrunesOrphanedDependencies(t *testing.T) {
	t.Parallel()

	f := testFile(t,
		&manifest.Module{Name: "site", URL: sharedSourceURL, Commit: commitOne, AddedBy: manifest.AddedByAdd, Dependencies: []string{"base"}},
		&manifest.Module{Name: "base", URL: sharedSourceURL, Commit: commitOne, AddedBy: "site"},
	)
	// yes: remove site; yes: prune base.
	ops := testOps(f, nil, &scriptedPrompter{answers: []string{"yes", "yes"}})

	out, err := ops.Remove([]string{"site"})
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if !out.Changed {
		t.Error("Remove should report a change")
	}
	if len(f.Build) != 0 {
		t.Errorf("build list = %v, want empty after prune", f.ModuleNames())
	}
}
