// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"os"

	"polbuild/internal/config"
	"polbuild/internal/engine"
	"polbuild/internal/index"
	"polbuild/internal/manifest"
	"polbuild/internal/prompt"
	"polbuild/internal/txn"
	"polbuild/internal/vcs"
)

// appContext wires one command invocation: configuration, the project
// manifest, the applicable index, and the engine/transaction boundaries.
// Built fresh per invocation; nothing here is shared process state.
type appContext struct {
	cfg      *config.Config
	file     *manifest.File
	idx      *index.Index
	git      *vcs.Client
	prompter *prompt.Terminal
	ops      *engine.Ops
	wrapper  *txn.Wrapper
}

// newAppContext loads the tool configuration and the project manifest from
// the working directory. loadIndex skips the (network-touching) index load
// for commands that do not resolve catalog names.
func newAppContext(loadIndex bool) (*appContext, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	file, err := manifest.Load(manifest.FileName)
	if err != nil {
		return nil, err
	}

	app := &appContext{
		cfg:      cfg,
		file:     file,
		git:      vcs.New("."),
		prompter: prompt.NewTerminal(nonInteractive || cfg.NonInteractive),
	}
	if loadIndex {
		app.idx, err = index.Load(file.Index, cfg.IndexURL)
		if err != nil {
			return nil, err
		}
	}

	app.ops = engine.NewOps(file, app.idx, app.prompter, app.git)
	app.ops.Out = os.Stdout
	app.ops.LoadIndex = func(ref json.RawMessage) (*index.Index, error) {
		return index.Load(ref, cfg.IndexURL)
	}
	app.wrapper = &txn.Wrapper{
		Git:      app.git,
		Enabled:  file.Git,
		Prompter: app.prompter,
	}
	return app, nil
}

// finish converts an operation outcome into the command's error result.
func finish(out txn.Outcome, err error) error {
	if err != nil {
		return err
	}
	if out.ExitCode != 0 {
		return &ExitError{Code: out.ExitCode}
	}
	return nil
}
