// SPDX-License-Identifier: MPL-2.0

package txn

import (
	"fmt"

	"github.com/charmbracelet/log"

	"polbuild/internal/manifest"
	"polbuild/internal/prompt"
)

// Committer is the version-control operation the wrapper needs; satisfied by
// *vcs.Client.
type Committer interface {
	Commit(message string, paths []string) error
}

// Wrapper composes a mutating operation with its version-control commit. If
// the operation reports a change, the manifest plus any touched files are
// staged and committed with a message rendered from the operation's own
// arguments; otherwise only the exit code propagates.
type Wrapper struct {
	Git      Committer
	Enabled  bool // manifest "git" flag; no commits when false
	Prompter prompt.Prompter
}

// Run executes op and commits its result. A commit failure propagates to the
// caller: callers that created on-disk state purely for the commit must roll
// it back.
func (w *Wrapper) Run(tmpl Template, args []string, op func() (Outcome, error)) (Outcome, error) {
	out, err := op()
	if err != nil {
		return out, err
	}
	if !w.Enabled || !out.Changed || out.SkipCommit {
		return out, nil
	}

	message := tmpl.Render(args)
	if out.Message != "" {
		message += "\n\n" + out.Message
	}
	message, err = w.maybeEditMessage(message)
	if err != nil {
		return out, err
	}

	files := append([]string{manifest.FileName}, out.FilesTouched...)
	if err := w.Git.Commit(message, files); err != nil {
		return out, fmt.Errorf("failed to commit: %w", err)
	}
	log.Debugf("committed: %s", message)
	return out, nil
}

// maybeEditMessage lets an interactive user replace the generated commit
// message; non-interactive runs keep it unchanged.
func (w *Wrapper) maybeEditMessage(message string) (string, error) {
	if w.Prompter == nil {
		return message, nil
	}
	edit, err := prompt.AskYesNo(w.Prompter,
		fmt.Sprintf("The default commit message is '%s' - do you want to edit it?", message), "no")
	if err != nil || !edit {
		return message, err
	}
	return w.Prompter.Ask("Enter commit message", nil, message)
}
