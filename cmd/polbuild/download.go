// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"polbuild/internal/manifest"
	"polbuild/internal/stage"
)

var (
	redownload     bool
	ignoreVersions bool

	downloadCmd = &cobra.Command{
		Use:   "download",
		Short: "Download and stage all modules of the build list",
		RunE:  runDownload,
	}
)

func init() {
	for _, c := range []*cobra.Command{downloadCmd, buildCmd} {
		c.Flags().BoolVar(&redownload, "redownload", false, "discard cached module content and fetch again")
		c.Flags().BoolVar(&ignoreVersions, "ignore-versions-json", false, "clone registry modules instead of verified archive downloads")
	}
}

func runDownload(cmd *cobra.Command, args []string) error {
	app, err := newAppContext(false)
	if err != nil {
		return err
	}
	if err := manifest.ValidateProject(app.file, false); err != nil {
		return err
	}
	_, err = stage.Run(cmd.Context(), app.file, stageOptions(app))
	return err
}

// stageOptions builds pipeline options from the tool configuration and the
// download/build flags.
func stageOptions(app *appContext) stage.Options {
	return stage.Options{
		CacheDir:       app.cfg.CacheDir,
		Redownload:     redownload,
		IgnoreVersions: ignoreVersions,
		VersionsURL:    app.cfg.VersionsURL,
		ModulesURL:     app.cfg.ModulesURL,
		Cloner:         app.git,
		Out:            os.Stdout,
	}
}
