// Package report renders the counters of a cache simulation.
package report

import (
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/csim/mem/cache"
)

// DefaultResultsFile is where SaveResults writes when no path is configured.
const DefaultResultsFile = ".csim_results"

// PrintSummary writes "hits:<H> misses:<M> evictions:<E>" and a newline.
func PrintSummary(w io.Writer, stats cache.Stats) error {
	_, err := fmt.Fprintln(w, stats.String())
	return err
}

// SaveResults writes "<H> <M> <E>" and a newline to the file at path,
// replacing its content.
func SaveResults(path string, stats cache.Stats) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("saving results: %w", err)
	}

	_, err = fmt.Fprintln(f, stats.Record())
	if err != nil {
		f.Close()
		return fmt.Errorf("saving results to %s: %w", path, err)
	}

	return f.Close()
}
