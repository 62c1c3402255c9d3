package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sarchlab/csim/datarecording"
	"github.com/sarchlab/csim/mem/trace"
	"github.com/sarchlab/csim/report"
	"github.com/spf13/cobra"
)

func newSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary [recording]",
		Short: "Print the counters kept in a recording.",
		Long: `summary reads a recording written with --record and prints the ` +
			`cache shape, the number of recorded accesses, and the final ` +
			`counters. The recording defaults to ` + envRecord + `.`,
		Example:      "  csim summary run\n  csim summary run.sqlite3",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		PreRunE: func(*cobra.Command, []string) error {
			return loadEnvFile()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			name := os.Getenv(envRecord)
			if len(args) > 0 {
				name = args[0]
			}

			if name == "" {
				return errors.New("no recording given")
			}

			return summarize(cmd, recordingFile(name), cmd.OutOrStdout())
		},
	}
}

func recordingFile(name string) string {
	if strings.HasSuffix(name, ".sqlite3") {
		return name
	}

	return name + ".sqlite3"
}

func summarize(cmd *cobra.Command, filename string, stdout io.Writer) error {
	if _, err := os.Stat(filename); err != nil {
		return err
	}

	reader := datarecording.NewReader(filename)
	defer reader.Close()

	ctx := cmd.Context()

	config, stats, err := trace.ReadSummary(ctx, reader)
	if err != nil {
		return fmt.Errorf("%s: %w", filename, err)
	}

	numAccesses, err := trace.CountAccesses(ctx, reader, "")
	if err != nil {
		return fmt.Errorf("%s: %w", filename, err)
	}

	fmt.Fprintln(stdout, config)
	fmt.Fprintf(stdout, "recorded accesses:%d\n", numAccesses)

	return report.PrintSummary(stdout, stats)
}
