/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/driftframe/pkg/api"
	"github.com/ssargent/driftframe/pkg/frame"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Show registered streams and their layouts",
}

var schemaListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered streams",
	RunE: func(cmd *cobra.Command, args []string) error {
		infos := streamInfos()
		if wantJSON(cmd) {
			return outputJSON(cmd.OutOrStdout(), infos)
		}

		tw := newTable(cmd.OutOrStdout())
		defer tw.Flush()
		fmt.Fprintln(tw, "ID\tNAME\tRECORD\tFIELDS\tFRAME")
		for _, info := range infos {
			fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\n", info.ID, info.Name, info.RecordSize, len(info.Fields),
				frame.HeaderSize+frame.DescriptorSize*len(info.Fields)+info.RecordSize)
		}
		return nil
	},
}

var schemaShowCmd = &cobra.Command{
	Use:   "show <stream>",
	Short: "Show one stream's field layout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := container.Registry().Resolve(args[0])
		if err != nil {
			return err
		}
		info := streamInfo(st.ID)
		if wantJSON(cmd) {
			return outputJSON(cmd.OutOrStdout(), info)
		}

		cmd.Printf("Stream %s (id %d), record %d bytes\n", info.Name, info.ID, info.RecordSize)
		tw := newTable(cmd.OutOrStdout())
		defer tw.Flush()
		fmt.Fprintln(tw, "ID\tNAME\tKIND\tOFFSET\tSIZE")
		for _, f := range info.Fields {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\n", f.ID, f.Name, f.Kind, f.Offset, f.Size)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.AddCommand(schemaListCmd)
	schemaCmd.AddCommand(schemaShowCmd)
}

func streamInfos() []api.StreamInfo {
	streams := container.Registry().Streams()
	out := make([]api.StreamInfo, 0, len(streams))
	for _, st := range streams {
		out = append(out, streamInfo(st.ID))
	}
	return out
}

func streamInfo(id uint32) api.StreamInfo {
	st, _ := container.Registry().Lookup(id)
	return api.DescribeStream(st, container.Layouts()[id])
}
