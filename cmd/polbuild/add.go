// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"

	"polbuild/internal/manifest"
	"polbuild/internal/txn"
)

var addCmd = &cobra.Command{
	Use:   "add <module>...",
	Short: "Add modules to the build list",
	Long: `Add modules to the build list, with their dependencies.

A module is referenced by index name (optionally name@version), by a local
directory path starting with "./", or by a git repository URL (optionally
url@ref) whose manifest provides modules.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

func runAdd(cmd *cobra.Command, args []string) error {
	app, err := newAppContext(true)
	if err != nil {
		return err
	}
	out, err := app.wrapper.Run(
		txn.Message("Added module%s %s", txn.PluralS, txn.ArgList),
		args,
		func() (txn.Outcome, error) {
			return app.ops.Add(cmd.Context(), args, manifest.AddedByAdd)
		})
	return finish(out, err)
}
