// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"

	"polbuild/internal/txn"
)

var updateCmd = &cobra.Command{
	Use:   "update [module]...",
	Short: "Update modules to the newest indexed version",
	Long: `Update modules to the newest version their index offers.

Without arguments, every module in the build list is considered. Modules
added from a URL are refreshed from that repository's default branch.
Installed versions newer than the index are never downgraded.`,
	RunE: runUpdate,
}

func runUpdate(cmd *cobra.Command, args []string) error {
	app, err := newAppContext(true)
	if err != nil {
		return err
	}
	tmpl := txn.Message("Updated all modules")
	if len(args) > 0 {
		tmpl = txn.Message("Updated module%s %s", txn.PluralS, txn.ArgList)
	}
	out, err := app.wrapper.Run(tmpl, args, func() (txn.Outcome, error) {
		return app.ops.Update(cmd.Context(), args)
	})
	return finish(out, err)
}
