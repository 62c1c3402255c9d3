// Package cmd provides the command-line interface of the cache simulator.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "csim -s <num> -E <num> -b <num> -t <file>",
		Short: "csim replays a memory trace against a set-associative LRU cache.",
		Long: `csim replays a memory trace against a set-associative cache with ` +
			`LRU replacement and reports the number of hits, misses, and ` +
			`evictions. Instruction fetches are ignored and a modify counts as ` +
			`a load followed by a store to the same address.`,
		Example: "  csim -s 4 -E 1 -b 4 -t traces/yi.trace\n" +
			"  csim -v -s 8 -E 2 -b 4 -t traces/yi.trace",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.applyEnv(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	opts.bindFlags(cmd)
	cmd.AddCommand(newSummaryCmd())

	return cmd
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}
}
