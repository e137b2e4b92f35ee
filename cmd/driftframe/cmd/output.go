/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ssargent/driftframe/pkg/frame"
	"github.com/ssargent/driftframe/pkg/render"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

func wantJSON(cmd *cobra.Command) bool {
	format, _ := cmd.Flags().GetString("format")
	return format == formatJSON
}

func outputJSON(w io.Writer, v any) error {
	data, err := render.JSON(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// outputFields prints one row per field value
func outputFields(w io.Writer, fields []render.FieldValue) {
	tw := newTable(w)
	defer tw.Flush()

	fmt.Fprintln(tw, "ID\tNAME\tKIND\tOFFSET\tSIZE\tVALUE")
	for _, f := range fields {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%v\n", f.ID, f.Name, f.Kind, f.Offset, f.Size, f.Value)
	}
}

func outputReport(w io.Writer, r frame.Report) {
	fmt.Fprintf(w, "received=%d matched=%d unknown=%d narrowed=%d missing=%d\n",
		r.Received, r.Matched, r.Unknown, r.Narrowed, r.Missing)
}
