package main

import (
	"github.com/spf13/cobra"

	"github.com/varden/eds/compress"
	"github.com/varden/eds/elastic"
)

var genpatternsFlags struct {
	input  string
	output string
	count  int
	length int
}

var genpatternsCmd = &cobra.Command{
	Use:   "genpatterns",
	Short: "Generate random patterns drawn from an EDS",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := elastic.Load(genpatternsFlags.input)
		if err != nil {
			return err
		}

		w, err := compress.OpenWriter(genpatternsFlags.output)
		if err != nil {
			return err
		}

		if err := e.GeneratePatterns(w, genpatternsFlags.count, genpatternsFlags.length); err != nil {
			_ = w.Close()
			return err
		}

		return w.Close()
	},
}

func init() {
	genpatternsCmd.Flags().StringVarP(&genpatternsFlags.input, "input", "i", "", "EDS input path")
	genpatternsCmd.Flags().StringVarP(&genpatternsFlags.output, "output", "o", "", "pattern output path (.edp)")
	genpatternsCmd.Flags().IntVarP(&genpatternsFlags.count, "count", "c", 10, "number of patterns")
	genpatternsCmd.Flags().IntVarP(&genpatternsFlags.length, "length", "l", 32, "pattern length in characters")
	_ = genpatternsCmd.MarkFlagRequired("input")
	_ = genpatternsCmd.MarkFlagRequired("output")
}
