// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"polbuild/internal/config"
)

var (
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Manage polbuild's tool configuration",
	}

	configShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE:  runConfigShow,
	}

	configInitCmd = &cobra.Command{
		Use:   "init",
		Short: "Write a starter configuration file",
		RunE:  runConfigInit,
	}
)

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	dir, _ := config.ConfigDir()
	fmt.Printf("Config directory: %s\n", dir)
	fmt.Printf("cache_dir:        %s\n", cfg.CacheDir)
	fmt.Printf("index_url:        %s\n", cfg.IndexURL)
	fmt.Printf("versions_url:     %s\n", cfg.VersionsURL)
	fmt.Printf("modules_url:      %s\n", cfg.ModulesURL)
	fmt.Printf("non_interactive:  %v\n", cfg.NonInteractive)
	if cfg.GitUserName != "" {
		fmt.Printf("git_user_name:    %s\n", cfg.GitUserName)
	}
	if cfg.GitUserEmail != "" {
		fmt.Printf("git_user_email:   %s\n", cfg.GitUserEmail)
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	path, err := cfg.WriteDefault()
	if err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}
