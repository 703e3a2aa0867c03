package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/varden/eds/elastic"
	"github.com/varden/eds/format"
)

var statsFlags struct {
	input    string
	sources  string
	metadata bool
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print structural statistics for an EDS file",
	RunE: func(cmd *cobra.Command, args []string) error {
		var opts []elastic.LoadOption
		if statsFlags.metadata {
			opts = append(opts, elastic.WithStorageMode(format.StorageMetadataOnly))
		}

		var (
			e   *elastic.EDS
			err error
		)
		if statsFlags.sources != "" {
			e, err = elastic.LoadWithSources(statsFlags.input, statsFlags.sources, opts...)
		} else {
			e, err = elastic.Load(statsFlags.input, opts...)
		}
		if err != nil {
			return err
		}
		defer func() { _ = e.Close() }()

		fmt.Fprint(os.Stdout, e.Statistics().String())

		if !statsFlags.metadata {
			if fp, err := e.Fingerprint(); err == nil {
				fmt.Fprintf(os.Stdout, "Fingerprint:            %016x\n", fp)
			}
		}

		return nil
	},
}

func init() {
	statsCmd.Flags().StringVarP(&statsFlags.input, "input", "i", "", "EDS input path")
	statsCmd.Flags().StringVarP(&statsFlags.sources, "sources", "s", "", "sEDS sources path")
	statsCmd.Flags().BoolVar(&statsFlags.metadata, "metadata-only", false, "load only the metadata index (O(n+m) memory)")
	_ = statsCmd.MarkFlagRequired("input")
}
