// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"

	"polbuild/internal/txn"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove modules that are no longer needed",
	Long: `Remove modules that were added as dependencies and are no longer
depended on by any module you asked for.`,
	RunE: runClean,
}

func runClean(cmd *cobra.Command, args []string) error {
	app, err := newAppContext(false)
	if err != nil {
		return err
	}
	out, err := app.wrapper.Run(
		txn.Message("Cleaned unused modules"),
		nil,
		func() (txn.Outcome, error) {
			return app.ops.Prune()
		})
	return finish(out, err)
}
