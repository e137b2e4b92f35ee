/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/driftframe/pkg/frame"
	"github.com/ssargent/driftframe/pkg/render"
)

type inspectResult struct {
	StreamID   uint32              `json:"stream_id"`
	Stream     string              `json:"stream,omitempty"`
	FieldCount uint32              `json:"field_count"`
	Size       int                 `json:"size"`
	Fields     []render.FieldValue `json:"fields"`
	Payload    string              `json:"payload"`
}

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Print a frame's header, meta table and payload",
	Long: `Print a frame as its sender wrote it: the header, every transmitted field
descriptor and the payload bytes. Field names come from the config when the
frame's stream id is registered.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read frame: %w", err)
		}

		res, err := inspectFrame(data)
		if err != nil {
			return err
		}
		if wantJSON(cmd) {
			return outputJSON(cmd.OutOrStdout(), res)
		}
		outputInspection(cmd.OutOrStdout(), res)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func inspectFrame(data []byte) (inspectResult, error) {
	view, err := frame.Parse(data)
	if err != nil {
		return inspectResult{}, err
	}

	layout := container.Layouts()[view.Header.StreamID]
	fields, err := render.Transmitted(view, layout)
	if err != nil {
		return inspectResult{}, err
	}

	return inspectResult{
		StreamID:   view.Header.StreamID,
		Stream:     layout.Stream,
		FieldCount: view.Header.FieldCount,
		Size:       len(data),
		Fields:     fields,
		Payload:    render.Hex(view.Payload),
	}, nil
}

func outputInspection(w io.Writer, res inspectResult) {
	tw := newTable(w)
	fmt.Fprintf(tw, "Stream:\t%d %s\n", res.StreamID, res.Stream)
	fmt.Fprintf(tw, "Fields:\t%d\n", res.FieldCount)
	fmt.Fprintf(tw, "Size:\t%d bytes\n", res.Size)
	tw.Flush()

	fmt.Fprintln(w)
	outputFields(w, res.Fields)
	fmt.Fprintln(w)
	fmt.Fprint(w, res.Payload)
}
