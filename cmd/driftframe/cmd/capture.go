/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"

	"github.com/ssargent/driftframe/pkg/api"
)

// captureCmd represents the capture command
var captureCmd = &cobra.Command{
	Use:   "capture <stream> <file>",
	Short: "Store a frame in the configured capture backend",
	Long: `Validate a frame's header against the stream and store it verbatim in the
configured backend (journal or pebble) under a new KSUID.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := container.Registry().Resolve(args[0])
		if err != nil {
			return err
		}
		data, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("failed to read frame: %w", err)
		}

		backend, err := container.OpenBackend()
		if err != nil {
			return err
		}
		defer backend.Close()

		c, err := backend.Put(st.ID, data)
		if err != nil {
			return err
		}

		log := container.Logger()
		log.Info().Uint32("stream_id", st.ID).Str("capture_id", c.ID.String()).Int("size", len(data)).Msg("frame captured")

		if wantJSON(cmd) {
			return outputJSON(cmd.OutOrStdout(), api.Summarize(c))
		}
		cmd.Println(c.ID.String())
		return nil
	},
}

var capturesCmd = &cobra.Command{
	Use:   "captures",
	Short: "Browse captured frames",
}

var capturesListCmd = &cobra.Command{
	Use:   "list <stream>",
	Short: "List a stream's captures, oldest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		st, err := container.Registry().Resolve(args[0])
		if err != nil {
			return err
		}

		backend, err := container.OpenBackend()
		if err != nil {
			return err
		}
		defer backend.Close()

		captures, err := backend.List(st.ID, limit)
		if err != nil {
			return err
		}

		summaries := make([]api.CaptureSummary, 0, len(captures))
		for _, c := range captures {
			summaries = append(summaries, api.Summarize(c))
		}
		if wantJSON(cmd) {
			return outputJSON(cmd.OutOrStdout(), summaries)
		}

		tw := newTable(cmd.OutOrStdout())
		defer tw.Flush()
		fmt.Fprintln(tw, "ID\tTIME\tSIZE\tFIELDS")
		for _, s := range summaries {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", s.ID, s.Time.Format(time.RFC3339), s.Size, s.FieldCount)
		}
		return nil
	},
}

var capturesShowCmd = &cobra.Command{
	Use:   "show <stream> <id>",
	Short: "Show a capture as sent and as decoded locally",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := container.Registry().Resolve(args[0])
		if err != nil {
			return err
		}
		id, err := ksuid.Parse(args[1])
		if err != nil {
			return fmt.Errorf("invalid capture id: %w", err)
		}

		backend, err := container.OpenBackend()
		if err != nil {
			return err
		}
		defer backend.Close()

		c, err := backend.Get(st.ID, id)
		if err != nil {
			return err
		}

		detail, err := api.Inspect(c, st, container.Layouts()[st.ID], container.Metrics())
		if err != nil {
			return err
		}
		if wantJSON(cmd) {
			return outputJSON(cmd.OutOrStdout(), detail)
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Capture %s at %s, %d bytes\n\nTransmitted:\n", detail.ID, detail.Time.Format(time.RFC3339), detail.Size)
		outputFields(w, detail.Transmitted)
		if detail.DecodeError != "" {
			fmt.Fprintf(w, "\nDecode failed: %s\n", detail.DecodeError)
			return nil
		}
		fmt.Fprintf(w, "\nDecoded as %s:\n", st.Name)
		outputFields(w, detail.Decoded)
		outputReport(w, *detail.Report)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(captureCmd)
	rootCmd.AddCommand(capturesCmd)
	capturesCmd.AddCommand(capturesListCmd)
	capturesCmd.AddCommand(capturesShowCmd)

	capturesListCmd.Flags().IntP("limit", "n", 50, "Maximum number of captures (0 for all)")
}
