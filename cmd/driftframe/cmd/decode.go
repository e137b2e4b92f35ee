/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/driftframe/pkg/frame"
	"github.com/ssargent/driftframe/pkg/render"
)

type decodeResult struct {
	Stream string              `json:"stream"`
	Fields []render.FieldValue `json:"fields"`
	Report frame.Report        `json:"report"`
}

// decodeCmd represents the decode command
var decodeCmd = &cobra.Command{
	Use:   "decode <stream> <file>",
	Short: "Decode a frame file with the local layout of a stream",
	Long: `Decode a frame into a zeroed record of the stream's local layout and print
every local field plus a summary of how the sender's fields matched.

Examples:
  driftframe decode stream1 frame.bin
  driftframe decode stream1 frame.bin --format json`,
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

		record := make([]byte, st.Schema.RecordSize())
		report, err := container.Metrics().Decode(record, data, st)
		if err != nil {
			return err
		}

		fields, err := render.Record(record, st.Schema, container.Layouts()[st.ID])
		if err != nil {
			return err
		}

		if wantJSON(cmd) {
			return outputJSON(cmd.OutOrStdout(), decodeResult{Stream: st.Name, Fields: fields, Report: report})
		}
		outputFields(cmd.OutOrStdout(), fields)
		outputReport(cmd.OutOrStdout(), report)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(decodeCmd)
}
