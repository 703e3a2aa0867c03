package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/varden/eds/compress"
	"github.com/varden/eds/elastic"
	"github.com/varden/eds/format"
	"github.com/varden/eds/transform"
)

var eds2ledsFlags struct {
	input         string
	sources       string
	output        string
	contextLength uint32
	cartesian     bool
	workers       int
	compact       bool
}

var eds2ledsCmd = &cobra.Command{
	Use:   "eds2leds",
	Short: "Convert an EDS file to an l-EDS",
	Long: "Iteratively merges adjacent symbols until every internal non-degenerate\n" +
		"symbol reaches the context length. With a sources file the merge is LINEAR\n" +
		"(combinations restricted to shared paths); without one it is CARTESIAN.",
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			e   *elastic.EDS
			err error
		)
		if eds2ledsFlags.sources != "" {
			e, err = elastic.LoadWithSources(eds2ledsFlags.input, eds2ledsFlags.sources)
		} else {
			e, err = elastic.Load(eds2ledsFlags.input)
		}
		if err != nil {
			return err
		}

		opts := []transform.Option{transform.WithWorkers(eds2ledsFlags.workers)}

		var led *elastic.EDS
		if eds2ledsFlags.cartesian {
			led, err = transform.Cartesian(e, format.Length(eds2ledsFlags.contextLength), opts...)
		} else if e.HasSources() {
			led, err = transform.Linear(e, format.Length(eds2ledsFlags.contextLength), opts...)
		} else {
			led, err = transform.Cartesian(e, format.Length(eds2ledsFlags.contextLength), opts...)
		}
		if err != nil {
			return err
		}

		of := format.FormatFull
		if eds2ledsFlags.compact {
			of = format.FormatCompact
		}

		edsPath, sedsPath := artifactPaths(eds2ledsFlags.output, eds2ledsFlags.contextLength)

		w, err := compress.OpenWriter(edsPath)
		if err != nil {
			return err
		}
		if err := led.Save(w, of); err != nil {
			_ = w.Close()
			return err
		}
		if err := w.Close(); err != nil {
			return err
		}

		if led.HasSources() {
			sw, err := compress.OpenWriter(sedsPath)
			if err != nil {
				return err
			}
			if err := led.SaveSources(sw); err != nil {
				_ = sw.Close()
				return err
			}
			if err := sw.Close(); err != nil {
				return err
			}
		}

		logger.Info("l-EDS written",
			"symbols_in", e.Len(),
			"symbols_out", led.Len(),
			"converged", transform.IsLEDS(led, format.Length(eds2ledsFlags.contextLength)),
			"leds", edsPath)

		return nil
	},
}

func init() {
	eds2ledsCmd.Flags().StringVarP(&eds2ledsFlags.input, "input", "i", "", "EDS input path")
	eds2ledsCmd.Flags().StringVarP(&eds2ledsFlags.sources, "sources", "s", "", "sEDS sources path (enables linear merging)")
	eds2ledsCmd.Flags().StringVarP(&eds2ledsFlags.output, "output", "o", "", "output base path (extension added)")
	eds2ledsCmd.Flags().Uint32VarP(&eds2ledsFlags.contextLength, "context-length", "l", 0, "minimum context length (required, > 0)")
	eds2ledsCmd.Flags().BoolVar(&eds2ledsFlags.cartesian, "cartesian", false, "force cartesian merging (rejects sources)")
	eds2ledsCmd.Flags().IntVar(&eds2ledsFlags.workers, "workers", transform.Workers(), "merge worker pool size")
	eds2ledsCmd.Flags().BoolVar(&eds2ledsFlags.compact, "compact", true, "write compact form (bare non-degenerate symbols)")
	_ = eds2ledsCmd.MarkFlagRequired("input")
	_ = eds2ledsCmd.MarkFlagRequired("output")
	_ = eds2ledsCmd.MarkFlagRequired("context-length")

	eds2ledsCmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		if eds2ledsFlags.contextLength == 0 {
			return fmt.Errorf("--context-length must be > 0")
		}

		return nil
	}
}
