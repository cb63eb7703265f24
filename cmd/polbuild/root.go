// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for polbuild.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables debug output
	verbose bool
	// nonInteractive answers every prompt with its default
	nonInteractive bool

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "polbuild",
		Short: "A dependency-aware manager for modular policy projects",
		Long: TitleStyle.Render("polbuild") + SubtitleStyle.Render(" - A dependency-aware manager for modular policy projects") + `

polbuild manages projects built from named policy modules. Modules are
declared in 'polbuild.json', resolved against a shared index, fetched
from git repositories or checksum-verified archives, and assembled into
a single policy set.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Run 'polbuild init' in an empty directory
  2. Find modules with 'polbuild search'
  3. Add them with 'polbuild add <module>'
  4. Produce the policy set with 'polbuild build'`,
	}
)

func init() {
	cobra.OnInitialize(initLogging)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&nonInteractive, "non-interactive", false, "answer prompts with their defaults")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(inputCmd)
	rootCmd.AddCommand(setInputCmd)
	rootCmd.AddCommand(getInputCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(prettyCmd)
	rootCmd.AddCommand(configCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

func initLogging() {
	if verbose {
		log.SetLevel(log.DebugLevel)
	}
}
