package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/varden/eds/format"
	"github.com/varden/eds/ingest"
)

var msa2edsFlags struct {
	input         string
	output        string
	contextLength uint32
}

var msa2edsCmd = &cobra.Command{
	Use:   "msa2eds",
	Short: "Convert a multiple sequence alignment (FASTA with gaps) to EDS or l-EDS",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(msa2edsFlags.input)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()

		var res *ingest.Result
		if msa2edsFlags.contextLength > 0 {
			res, err = ingest.MSAToLEDS(f, format.Length(msa2edsFlags.contextLength), ingest.WithLogger(logger))
		} else {
			res, err = ingest.MSAToEDS(f, ingest.WithLogger(logger))
		}
		if err != nil {
			return err
		}

		edsPath, sedsPath := artifactPaths(msa2edsFlags.output, msa2edsFlags.contextLength)
		if err := writeArtifact(edsPath, res.EDS); err != nil {
			return err
		}
		if err := writeArtifact(sedsPath, res.Sources); err != nil {
			return err
		}

		logger.Info("MSA ingested",
			"sequences", res.Stats.Sequences,
			"symbols", res.Stats.Symbols,
			"variant_regions", res.Stats.Groups,
			"eds", edsPath,
			"seds", sedsPath)

		return nil
	},
}

func init() {
	msa2edsCmd.Flags().StringVarP(&msa2edsFlags.input, "input", "i", "", "aligned FASTA input path")
	msa2edsCmd.Flags().StringVarP(&msa2edsFlags.output, "output", "o", "", "output base path (extension added)")
	msa2edsCmd.Flags().Uint32VarP(&msa2edsFlags.contextLength, "context-length", "l", 0, "emit l-EDS with this context length (0 = plain EDS)")
	_ = msa2edsCmd.MarkFlagRequired("input")
	_ = msa2edsCmd.MarkFlagRequired("output")
}
