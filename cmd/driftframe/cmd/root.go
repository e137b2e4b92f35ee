/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/driftframe/pkg/config"
	"github.com/ssargent/driftframe/pkg/di"
	"github.com/ssargent/driftframe/pkg/logging"
)

var container *di.Container

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "driftframe",
	Short: "driftframe - schema-drift tolerant binary frames",
	Long: `driftframe encodes fixed-layout records into self-describing frames and
decodes them with whatever layout the reader has, matching fields by id.

Streams and their field layouts are declared in the config file. Frames can be
captured to a journal or pebble backend and inspected over HTTP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadContainer(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", config.GetDefaultConfigPath(), "Path to the config file")
	rootCmd.PersistentFlags().StringP("data-dir", "d", "", "Data directory (overrides config)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().StringP("format", "f", "table", "Output format: table or json")
}

// loadContainer reads the config (defaults when the file is absent), applies
// flag overrides and builds the dependency container.
func loadContainer(cmd *cobra.Command) error {
	cfgPath, _ := cmd.Flags().GetString("config")

	cfg := config.DefaultConfig()
	if config.ConfigExists(cfgPath) {
		loaded, err := config.LoadConfig(cfgPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir, _ = cmd.Flags().GetString("data-dir")
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level, _ = cmd.Flags().GetString("log-level")
	}

	format, _ := cmd.Flags().GetString("format")
	if format != formatTable && format != formatJSON {
		return fmt.Errorf("unknown output format %q", format)
	}

	log, err := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}

	c, err := di.NewContainer(cfg, log)
	if err != nil {
		return fmt.Errorf("invalid config %s: %w", cfgPath, err)
	}
	container = c
	return nil
}
