// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"polbuild/internal/config"
	"polbuild/internal/index"
	"polbuild/internal/manifest"
)

var searchCmd = &cobra.Command{
	Use:   "search [terms...]",
	Short: "Search for modules in the index",
	Long: `Search for modules in the index by name or alias.

Without terms, every module in the index is listed.`,
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	idx, err := loadAnyIndex()
	if err != nil {
		return err
	}
	results := idx.Search(args)
	if len(results) == 0 {
		return fmt.Errorf("no modules matching %q found", strings.Join(args, " "))
	}
	for _, r := range results {
		name := ModuleStyle.Render(r.Name)
		if len(r.Aliases) > 0 {
			name += SubtitleStyle.Render(fmt.Sprintf(" (alias: %s)", strings.Join(r.Aliases, ", ")))
		}
		fmt.Printf("%s - %s\n", name, r.Description)
	}
	return nil
}

// loadAnyIndex loads the project's index when run inside a project, else the
// configured default. Search and info work outside projects too.
func loadAnyIndex() (*index.Index, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if manifest.IsProject(".") {
		if f, err := manifest.Load(manifest.FileName); err == nil {
			return index.Load(f.Index, cfg.IndexURL)
		}
	}
	return index.LoadRef(cfg.IndexURL)
}
