package cmd

import (
	"errors"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sarchlab/csim/mem/cache"
	"github.com/sarchlab/csim/report"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Environment variables that provide defaults for flags that are not given.
// They can also be set in a .env file in the working directory.
const (
	envResultsFile = "CSIM_RESULTS_FILE"
	envRecord      = "CSIM_RECORD"
	envMonitorPort = "CSIM_MONITOR_PORT"
)

type options struct {
	numSetBits    uint
	associativity int
	numBlockBits  uint
	traceFile     string
	verbose       bool

	resultsFile string
	record      string
	monitor     bool
	monitorPort int
	openBrowser bool
}

func (o *options) bindFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.UintVarP(&o.numSetBits, "set-bits", "s", 0,
		"Number of set index bits.")
	flags.IntVarP(&o.associativity, "lines", "E", 0,
		"Number of lines per set.")
	flags.UintVarP(&o.numBlockBits, "block-bits", "b", 0,
		"Number of block offset bits.")
	flags.StringVarP(&o.traceFile, "trace", "t", "",
		"Trace file.")
	flags.BoolVarP(&o.verbose, "verbose", "v", false,
		"Print the outcome of every trace record.")

	flags.StringVar(&o.resultsFile, "results", report.DefaultResultsFile,
		"File that receives the \"<hits> <misses> <evictions>\" record.")
	flags.StringVar(&o.record, "record", "",
		"Record every access into <name>.sqlite3.")
	flags.BoolVar(&o.monitor, "monitor", false,
		"Serve the simulation state over HTTP until interrupted.")
	flags.IntVar(&o.monitorPort, "monitor-port", 0,
		"Port of the monitoring server, random if 0.")
	flags.BoolVar(&o.openBrowser, "open-browser", false,
		"Open the monitoring server in a browser.")

	for _, name := range []string{"set-bits", "lines", "block-bits", "trace"} {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}
}

func (o *options) cacheConfig() cache.Config {
	return cache.Config{
		NumSetBits:    o.numSetBits,
		Associativity: o.associativity,
		NumBlockBits:  o.numBlockBits,
	}
}

// loadEnvFile adds the variables of a .env file, if any, to the environment.
func loadEnvFile() error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	return nil
}

// applyEnv fills the flags that were not given from the environment.
func (o *options) applyEnv(flags *pflag.FlagSet) error {
	if err := loadEnvFile(); err != nil {
		return err
	}

	if v, ok := os.LookupEnv(envResultsFile); ok && !flags.Changed("results") {
		o.resultsFile = v
	}

	if v, ok := os.LookupEnv(envRecord); ok && !flags.Changed("record") {
		o.record = v
	}

	if v, ok := os.LookupEnv(envMonitorPort); ok && !flags.Changed("monitor-port") {
		port, err := strconv.Atoi(v)
		if err != nil {
			return errors.New(envMonitorPort + " must be a number")
		}

		o.monitorPort = port
	}

	return nil
}
