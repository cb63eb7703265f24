// SPDX-License-Identifier: MPL-2.0

// Package engine implements the dependency graph operations on the build
// list: add with transitive dependencies, remove, mark-and-sweep prune, and
// the per-module update resolver.
package engine

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"polbuild/internal/index"
	"polbuild/internal/manifest"
	"polbuild/internal/prompt"
)

type (
	// GitOps is the slice of version-control operations the engine needs
	// for URL-based adds and updates; satisfied by *vcs.Client.
	GitOps interface {
		LsRemote(ctx context.Context, url, ref string) (string, error)
		CloneDefault(ctx context.Context, url, dest string) (string, error)
		CloneAt(ctx context.Context, url, commit, dest string) error
	}

	// IndexLoader resolves an index reference (string or inline object) to
	// a catalog; module-level index overrides go through it.
	IndexLoader func(ref json.RawMessage) (*index.Index, error)

	// Ops is the explicit per-invocation context for build list operations:
	// manifest accessor, catalog, prompt and git boundaries. It is
	// constructed once per command and passed explicitly, replacing any
	// process-wide singleton.
	Ops struct {
		File      *manifest.File
		Index     *index.Index
		Prompter  prompt.Prompter
		Git       GitOps
		LoadIndex IndexLoader
		// Out receives user-facing listings (prune candidates, update
		// progress). Defaults to stdout.
		Out io.Writer
	}
)

// NewOps builds an operation context with defaults filled in.
func NewOps(file *manifest.File, idx *index.Index, prompter prompt.Prompter, git GitOps) *Ops {
	return &Ops{
		File:     file,
		Index:    idx,
		Prompter: prompter,
		Git:      git,
		LoadIndex: func(ref json.RawMessage) (*index.Index, error) {
			return index.Load(ref, "")
		},
		Out: os.Stdout,
	}
}

func (o *Ops) out() io.Writer {
	if o.Out == nil {
		return io.Discard
	}
	return o.Out
}

// dependents returns the names of build list modules that list name as a
// dependency.
func (o *Ops) dependents(name string) []string {
	var result []string
	for _, m := range o.File.Build {
		if m.DependsOn(name) {
			result = append(result, m.Name)
		}
	}
	return result
}
