// SPDX-License-Identifier: MPL-2.0

// Package txn implements the transactional mutate-then-commit contract:
// every mutating operation returns an Outcome, and the Wrapper turns a
// changed Outcome into exactly one version-control commit.
package txn

import "strings"

// Outcome is the typed result of one mutating operation. It is ephemeral:
// produced once per command invocation and never persisted.
type Outcome struct {
	// ExitCode is the process exit code the command should propagate.
	ExitCode int
	// Changed reports whether the operation modified the project.
	Changed bool
	// Message is an optional human-readable summary, included in the
	// commit message body.
	Message string
	// FilesTouched lists files beyond the manifest that must be staged
	// with the commit.
	FilesTouched []string
	// SkipCommit suppresses the wrapper's commit even when nested inside
	// another mutating operation; it replaces the original design's
	// "return without commit" exception.
	SkipCommit bool
}

// NothingToCommit returns the outcome signalling the operation found no work:
// the wrapper must not create a commit for it.
func NothingToCommit() Outcome {
	return Outcome{SkipCommit: true}
}

// Merge folds another outcome into o, composing nested mutating operations:
// exit codes keep the worst value, change flags accumulate, messages and
// touched files concatenate. A merged change clears the skip signal.
func (o Outcome) Merge(other Outcome) Outcome {
	if other.ExitCode > o.ExitCode {
		o.ExitCode = other.ExitCode
	}
	o.Changed = o.Changed || other.Changed
	if other.Message != "" {
		if o.Message != "" {
			o.Message = strings.TrimRight(o.Message, "\n") + "\n" + other.Message
		} else {
			o.Message = other.Message
		}
	}
	o.FilesTouched = append(o.FilesTouched, other.FilesTouched...)
	if o.Changed {
		o.SkipCommit = false
	}
	return o
}
