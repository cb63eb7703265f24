// SPDX-License-Identifier: MPL-2.0

package txn

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTemplateRender(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		tmpl Template
		args []string
		want string
	}{
		{
			name: "single argument",
			tmpl: Message("Added module%s %s", PluralS, ArgList),
			args: []string{"base"},
			want: "Added module 'base'",
		},
		{
			name: "plural arguments",
			tmpl: Message("Removed module%s %s", PluralS, ArgList),
			args: []string{"base", "inventory"},
			want: "Removed modules 'base', 'inventory'",
		},
		{
			name: "first argument only",
			tmpl: Message("Added input for module %s", FirstArg),
			args: []string{"base", "ignored"},
			want: "Added input for module 'base'",
		},
		{
			name: "no placeholders",
			tmpl: Message("Cleaned unused modules"),
			args: nil,
			want: "Cleaned unused modules",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.tmpl.Render(tc.args); got != tc.want {
				t.Errorf("Render() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestOutcomeMerge(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b Outcome
		want Outcome
	}{
		{
			name: "change clears skip",
			a:    Outcome{Changed: true, Message: "Removed module 'a'"},
			b:    NothingToCommit(),
			want: Outcome{Changed: true, Message: "Removed module 'a'"},
		},
		{
			name: "exit codes keep the worst",
			a:    Outcome{ExitCode: 1},
			b:    Outcome{ExitCode: 2, Changed: true},
			want: Outcome{ExitCode: 2, Changed: true},
		},
		{
			name: "messages and files concatenate",
			a:    Outcome{Changed: true, Message: "one", FilesTouched: []string{"a/input.json"}},
			b:    Outcome{Changed: true, Message: "two", FilesTouched: []string{"b/input.json"}},
			want: Outcome{Changed: true, Message: "one\ntwo", FilesTouched: []string{"a/input.json", "b/input.json"}},
		},
		{
			name: "both unchanged stays skippable",
			a:    NothingToCommit(),
			b:    NothingToCommit(),
			want: Outcome{SkipCommit: true},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := tc.a.Merge(tc.b)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Merge mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// recordingCommitter captures commits for assertions.
type recordingCommitter struct {
	messages []string
	paths    [][]string
	fail     bool
}

func (c *recordingCommitter) Commit(message string, paths []string) error {
	if c.fail {
		return errors.New("boom")
	}
	c.messages = append(c.messages, message)
	c.paths = append(c.paths, paths)
	return nil
}

func TestWrapperCommitsOnChange(t *testing.T) {
	t.Parallel()

	git := &recordingCommitter{}
	w := &Wrapper{Git: git, Enabled: true}

	_, err := w.Run(Message("Added module%s %s", PluralS, ArgList), []string{"base"}, func() (Outcome, error) {
		return Outcome{Changed: true, Message: "detail", FilesTouched: []string{"base/input.json"}}, nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(git.messages) != 1 {
		t.Fatalf("got %d commits, want 1", len(git.messages))
	}
	if want := "Added module 'base'\n\ndetail"; git.messages[0] != want {
		t.Errorf("commit message = %q, want %q", git.messages[0], want)
	}
	if len(git.paths[0]) != 2 || git.paths[0][0] != "polbuild.json" {
		t.Errorf("staged paths = %v, want manifest first plus touched files", git.paths[0])
	}
}

func TestWrapperSkipsCommit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		enabled bool
		out     Outcome
	}{
		{"git disabled", false, Outcome{Changed: true}},
		{"no change", true, Outcome{}},
		{"skip signal", true, NothingToCommit()},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			git := &recordingCommitter{}
			w := &Wrapper{Git: git, Enabled: tc.enabled}
			if _, err := w.Run(Message("x"), nil, func() (Outcome, error) { return tc.out, nil }); err != nil {
				t.Fatalf("Run: %v", err)
			}
			if len(git.messages) != 0 {
				t.Errorf("unexpected commit %q", git.messages)
			}
		})
	}
}

func TestWrapperCommitFailurePropagates(t *testing.T) {
	t.Parallel()

	w := &Wrapper{Git: &recordingCommitter{fail: true}, Enabled: true}
	_, err := w.Run(Message("x"), nil, func() (Outcome, error) {
		return Outcome{Changed: true}, nil
	})
	if err == nil {
		t.Fatal("commit failure should propagate")
	}
}
