/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the inspection API",
	Long: `Serve registered streams and captured frames over HTTP, plus /health and
Prometheus /metrics. Bind address and port come from the config and can be
overridden with flags.

Examples:
  driftframe serve
  driftframe serve --port 9400 --bind 0.0.0.0`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := container.Config()
		if cmd.Flags().Changed("port") {
			cfg.Port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("bind") {
			cfg.Bind, _ = cmd.Flags().GetString("bind")
		}

		backend, err := container.OpenBackend()
		if err != nil {
			return err
		}
		defer backend.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return container.NewServer(backend).ListenAndServe(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 9300, "Port to listen on")
	serveCmd.Flags().String("bind", "127.0.0.1", "Address to bind")
}
