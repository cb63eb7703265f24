// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"polbuild/internal/config"
	"polbuild/internal/engine"
	"polbuild/internal/index"
	"polbuild/internal/manifest"
	"polbuild/internal/prompt"
	"polbuild/internal/txn"
	"polbuild/internal/vcs"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new polbuild project in the current directory",
	Long: `Initialize a new polbuild project in the current directory.

Creates ` + manifest.FileName + ` and, unless declined, a git repository so
every change to the project is committed.`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	if manifest.IsProject(".") {
		return fmt.Errorf("the current directory is already a polbuild project")
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	prompter := prompt.NewTerminal(nonInteractive || cfg.NonInteractive)
	git := vcs.New(".")

	wd, _ := os.Getwd()
	name, err := prompter.Ask("Please enter the name of this project", nil, filepath.Base(wd))
	if err != nil {
		return err
	}
	description, err := prompter.Ask("Please enter a description of this project", nil, "")
	if err != nil {
		return err
	}

	useGit, err := initGit(cfg, prompter, git, name, description)
	if err != nil {
		return err
	}

	file := manifest.New(manifest.FileName, manifest.Manifest{
		Name:        name,
		Description: description,
		Type:        "policy-set",
		Git:         useGit,
	})
	wrapper := &txn.Wrapper{Git: git, Enabled: useGit, Prompter: prompter}
	if err := createProject(file, wrapper); err != nil {
		return err
	}
	fmt.Printf("Initialized an empty project called %q in %s\n", name, manifest.FileName)

	return maybeAddDefaultPolicySet(cmd.Context(), cfg, file, prompter, git, wrapper)
}

// createProject writes the manifest and pairs it with the project's first
// commit. The manifest only exists for this commit, so a failed commit
// removes it again and leaves no half-made project behind.
func createProject(file *manifest.File, wrapper *txn.Wrapper) error {
	if err := file.Save(); err != nil {
		return err
	}
	_, err := wrapper.Run(txn.Message("Initialized a new polbuild project"), nil, func() (txn.Outcome, error) {
		return txn.Outcome{Changed: true}, nil
	})
	if err != nil {
		_ = os.Remove(file.Path)
		return err
	}
	return nil
}

// initGit decides whether the project is git-managed, creating the
// repository and committer identity as needed.
func initGit(cfg *config.Config, prompter prompt.Prompter, git *vcs.Client, name, description string) (bool, error) {
	if git.IsRepo() {
		log.Debug("already inside a git repository")
		return true, nil
	}
	useGit, err := prompt.AskYesNo(prompter, "Do you want to initialize a git repository?", "yes")
	if err != nil || !useGit {
		return false, err
	}

	userName := cfg.GitUserName
	if userName == "" {
		userName = git.GetConfig("user.name")
	}
	userName, err = prompter.Ask("Please enter your name for git commits", nil, userName)
	if err != nil {
		return false, err
	}
	userEmail := cfg.GitUserEmail
	if userEmail == "" {
		userEmail = git.GetConfig("user.email")
	}
	userEmail, err = prompter.Ask("Please enter your email for git commits", nil, userEmail)
	if err != nil {
		return false, err
	}
	if err := git.Init(userName, userEmail, description); err != nil {
		return false, err
	}
	return true, nil
}

// maybeAddDefaultPolicySet offers to start the project from the index's
// default policy set instead of an empty build list.
func maybeAddDefaultPolicySet(ctx context.Context, cfg *config.Config, file *manifest.File, prompter prompt.Prompter, git *vcs.Client, wrapper *txn.Wrapper) error {
	const defaultPolicySet = "policy-base"

	add, err := prompt.AskYesNo(prompter, "Do you wish to build on top of the default policy set?", "yes")
	if err != nil || !add {
		return err
	}
	idx, err := index.Load(file.Index, cfg.IndexURL)
	if err != nil {
		return err
	}
	if !idx.Exists(defaultPolicySet) {
		log.Warnf("the index has no %q module, starting from an empty build list", defaultPolicySet)
		return nil
	}

	ops := engine.NewOps(file, idx, prompter, git)
	out, err := wrapper.Run(
		txn.Message("Added module%s %s", txn.PluralS, txn.ArgList),
		[]string{defaultPolicySet},
		func() (txn.Outcome, error) {
			return ops.Add(ctx, []string{defaultPolicySet}, manifest.AddedByInit)
		})
	return finish(out, err)
}
