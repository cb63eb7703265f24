// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"polbuild/internal/assemble"
	"polbuild/internal/manifest"
	"polbuild/internal/stage"
)

var (
	buildCmd = &cobra.Command{
		Use:   "build",
		Short: "Build the policy set from the build list",
		Long: `Build the policy set: validate the project, fetch and stage every
module of the build list, then run each module's build steps to produce
out/policy.`,
		RunE: runBuild,
	}

	installCmd = &cobra.Command{
		Use:   "install [destination]",
		Short: "Install the built policy set",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runInstall,
	}
)

func runBuild(cmd *cobra.Command, args []string) error {
	app, err := newAppContext(false)
	if err != nil {
		return err
	}
	if err := manifest.ValidateProject(app.file, false); err != nil {
		return err
	}
	plan, err := stage.Run(cmd.Context(), app.file, stageOptions(app))
	if err != nil {
		return err
	}
	if err := assemble.Run(cmd.Context(), app.file, plan, assemble.Options{Out: os.Stdout}); err != nil {
		return err
	}
	fmt.Println(SuccessStyle.Render("Build complete"))
	return nil
}

func runInstall(cmd *cobra.Command, args []string) error {
	if !manifest.IsProject(".") {
		return manifest.ErrNotAProject
	}
	dest := ""
	if len(args) == 1 {
		dest = args[0]
	}
	if err := assemble.Install("out", dest); err != nil {
		return err
	}
	fmt.Println(SuccessStyle.Render("Policy set installed"))
	return nil
}
