// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"

	"polbuild/internal/txn"
)

var removeCmd = &cobra.Command{
	Use:   "remove <module>...",
	Short: "Remove modules from the build list",
	Long: `Remove modules from the build list.

Modules are referenced by name, local path, or source URL; a URL removes
every module that came from it. Dependencies that become unused are
offered for removal afterwards.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRemove,
}

func runRemove(cmd *cobra.Command, args []string) error {
	app, err := newAppContext(false)
	if err != nil {
		return err
	}
	out, err := app.wrapper.Run(
		txn.Message("Removed module%s %s", txn.PluralS, txn.ArgList),
		args,
		func() (txn.Outcome, error) {
			return app.ops.Remove(args)
		})
	return finish(out, err)
}
