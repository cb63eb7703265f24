// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:     "info <module>...",
	Aliases: []string{"show"},
	Short:   "Show index details for modules",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	idx, err := loadAnyIndex()
	if err != nil {
		return err
	}
	for i, name := range args {
		if i > 0 {
			fmt.Println()
		}
		name = idx.TranslateAlias(name)
		entry := idx.Lookup(name)
		if entry == nil {
			return fmt.Errorf("module %q does not exist in the index", name)
		}
		fmt.Printf("Name:         %s\n", ModuleStyle.Render(name))
		fmt.Printf("Description:  %s\n", entry.Description)
		if len(entry.Tags) > 0 {
			fmt.Printf("Tags:         %s\n", strings.Join(entry.Tags, ", "))
		}
		if entry.Repo != "" {
			fmt.Printf("Repo:         %s\n", entry.Repo)
		}
		if entry.URL != "" {
			fmt.Printf("URL:          %s\n", entry.URL)
		}
		if entry.Version != "" {
			fmt.Printf("Version:      %s\n", entry.Version)
		}
		if entry.Commit != "" {
			fmt.Printf("Commit:       %s\n", entry.Commit)
		}
		if entry.Subdirectory != "" {
			fmt.Printf("Subdirectory: %s\n", entry.Subdirectory)
		}
		if len(entry.Dependencies) > 0 {
			fmt.Printf("Depends on:   %s\n", strings.Join(entry.Dependencies, ", "))
		}
		if entry.By != "" {
			fmt.Printf("Added by:     %s\n", entry.By)
		}
	}
	return nil
}
