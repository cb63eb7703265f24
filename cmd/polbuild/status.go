// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"polbuild/internal/stage"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the project and its build list",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	app, err := newAppContext(false)
	if err != nil {
		return err
	}
	f := app.file

	fmt.Printf("Name:        %s\n", f.Name)
	if f.Description != "" {
		fmt.Printf("Description: %s\n", f.Description)
	}
	fmt.Printf("File:        %s\n", f.Path)
	if len(f.Index) > 0 {
		fmt.Printf("Index:       %s\n", string(f.Index))
	}

	fmt.Printf("\nModules:\n")
	pad := f.LongestModuleName()
	for i, m := range f.Build {
		version := m.Version
		if version == "" {
			if m.IsLocal() {
				version = "local"
			} else {
				version = m.Commit
			}
		}
		state := WarningStyle.Render("Not downloaded")
		if m.IsLocal() {
			state = "Local"
		} else if _, err := os.Stat(stage.DownloadPath(app.cfg.CacheDir, m.Commit)); err == nil {
			state = "Downloaded"
		}
		fmt.Println(formatBuildEntry(i+1, pad, m.Name, version, state))
	}
	return nil
}

// formatBuildEntry renders one build list line. The raw name is padded
// before styling so the ANSI escapes do not throw off column alignment.
func formatBuildEntry(seq, pad int, name, version, state string) string {
	cell := fmt.Sprintf("%-*s", pad, name)
	return fmt.Sprintf("%03d %s @ %s (%s)", seq, ModuleStyle.Render(cell), version, state)
}
