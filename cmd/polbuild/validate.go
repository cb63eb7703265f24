// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"polbuild/internal/manifest"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the project manifest",
	Long: `Validate the project manifest: schema-check ` + manifest.FileName + ` and
apply the build rules (unique names, local modules without commits, remote
modules with a source and commit).`,
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	// Load runs the schema check on the raw document.
	f, err := manifest.Load(manifest.FileName)
	if err != nil {
		return err
	}
	if err := manifest.ValidateProject(f, true); err != nil {
		return err
	}
	fmt.Println(SuccessStyle.Render(manifest.FileName + " is valid"))
	return nil
}
