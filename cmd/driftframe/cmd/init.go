/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/driftframe/pkg/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Long: `Write a config file with default settings and an example stream, and
create the data directory.

Examples:
  driftframe init
  driftframe init --config ./driftframe.yaml --data-dir ./data --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgPath, _ := cmd.Flags().GetString("config")
		force, _ := cmd.Flags().GetBool("force")

		if err := initializeConfig(cfgPath, container.Config().DataDir, force); err != nil {
			return err
		}

		cmd.Printf("Config written to %s\n", cfgPath)
		cmd.Printf("Data directory: %s\n", container.Config().DataDir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().Bool("force", false, "Overwrite an existing config file")
}

// initializeConfig writes the default config to path with dataDir applied
func initializeConfig(path, dataDir string, force bool) error {
	if config.ConfigExists(path) && !force {
		return fmt.Errorf("config already exists at %s, use --force to overwrite", path)
	}

	cfg := config.DefaultConfig()
	if dataDir != "" {
		cfg.DataDir = dataDir
	}

	if err := os.MkdirAll(cfg.DataDir, 0750); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return config.SaveConfig(cfg, path)
}
