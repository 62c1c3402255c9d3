package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/sarchlab/csim/datarecording"
	"github.com/sarchlab/csim/mem/cache"
	"github.com/sarchlab/csim/mem/trace"
	"github.com/sarchlab/csim/monitoring"
	"github.com/sarchlab/csim/report"
)

func run(ctx context.Context, opts *options, stdout io.Writer) error {
	config := opts.cacheConfig()
	if err := config.Validate(); err != nil {
		return err
	}

	ops, err := readTrace(opts.traceFile)
	if err != nil {
		return err
	}

	sim := cache.MakeBuilder().WithConfig(config).Build()
	replayer := trace.NewReplayer(sim)

	if opts.verbose {
		replayer.AcceptHook(trace.NewLogTracer(log.New(stdout, "", 0)))
	}

	var dbTracer *trace.DBTracer

	if opts.record != "" {
		recorder := datarecording.New(opts.record)
		defer recorder.Close()

		dbTracer = trace.NewDBTracer(recorder)
		sim.AcceptHook(dbTracer)
	}

	var (
		monitor *monitoring.Monitor
		bar     *monitoring.ProgressBar
	)

	if opts.monitor {
		monitor, bar, err = startMonitor(opts, sim, replayer, len(ops))
		if err != nil {
			return err
		}
	}

	replayer.ReplayAll(ops)
	stats := sim.Stats()

	if monitor != nil {
		monitor.CompleteProgressBar(bar)
	}

	if dbTracer != nil {
		dbTracer.Finalize(config, stats)
	}

	if err := report.PrintSummary(stdout, stats); err != nil {
		return err
	}

	if err := report.SaveResults(opts.resultsFile, stats); err != nil {
		return err
	}

	if monitor != nil {
		return waitForInterrupt(ctx, monitor)
	}

	return nil
}

func readTrace(path string) ([]trace.Op, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ops, err := trace.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return ops, nil
}

func startMonitor(
	opts *options,
	sim *cache.Simulator,
	replayer *trace.Replayer,
	numOps int,
) (*monitoring.Monitor, *monitoring.ProgressBar, error) {
	monitor := monitoring.NewMonitor().WithPortNumber(opts.monitorPort)
	monitor.RegisterSimulator(sim)

	bar := monitor.CreateProgressBar("Replay "+opts.traceFile, uint64(numOps))
	replayer.SetProgressTracker(bar)

	url, err := monitor.StartServer()
	if err != nil {
		return nil, nil, err
	}

	if opts.openBrowser {
		if err := monitor.OpenBrowser(url); err != nil {
			log.Printf("cannot open browser: %v", err)
		}
	}

	return monitor, bar, nil
}

func waitForInterrupt(ctx context.Context, monitor *monitoring.Monitor) error {
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	fmt.Fprintln(os.Stderr, "Simulation done. Press Ctrl+C to stop monitoring.")
	<-ctx.Done()

	return monitor.StopServer(context.Background())
}
