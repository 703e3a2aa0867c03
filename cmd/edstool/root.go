package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/varden/eds/compress"
	"github.com/varden/eds/format"
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, nil))

var rootCmd = &cobra.Command{
	Use:           "edstool",
	Short:         "Build, transform and inspect elastic-degenerate strings",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.AddCommand(msa2edsCmd, vcf2edsCmd, eds2ledsCmd, statsCmd, genpatternsCmd)
}

// artifactPaths derives the output file names: <base>.eds or
// <base>_l<N>.leds, plus the sibling .seds when sources exist.
func artifactPaths(base string, contextLength uint32) (edsPath, sedsPath string) {
	if contextLength > 0 {
		stem := fmt.Sprintf("%s_l%d", base, contextLength)
		return stem + format.ExtLEDS, stem + format.ExtSEDS
	}

	return base + format.ExtEDS, base + format.ExtSEDS
}

// writeArtifact writes text (plus a trailing newline if missing) to path,
// compressing by extension.
func writeArtifact(path, text string) error {
	w, err := compress.OpenWriter(path)
	if err != nil {
		return err
	}

	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	if _, err := io.WriteString(w, text); err != nil {
		_ = w.Close()
		return err
	}

	return w.Close()
}
