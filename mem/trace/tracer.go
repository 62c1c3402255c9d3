package trace

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/sarchlab/csim/datarecording"
	"github.com/sarchlab/csim/mem/cache"
	"github.com/sarchlab/csim/sim/hooking"
)

// accessEntry represents one cache access in the database
type accessEntry struct {
	Seq        uint64
	Address    string
	SetID      int
	Tag        string
	WayID      int
	Outcome    string
	EvictedTag string
}

// summaryEntry represents the final counters of a run in the database
type summaryEntry struct {
	NumSetBits    uint
	Associativity int
	NumBlockBits  uint
	Hits          uint64
	Misses        uint64
	Evictions     uint64
}

const (
	accessTable  = "cache_accesses"
	summaryTable = "cache_summary"
)

// A LogTracer prints one line per replayed op, followed by the outcome of
// each of its accesses, such as "M 20,1 miss eviction hit".
type LogTracer struct {
	hooking.LogHookBase
}

// NewLogTracer creates a LogTracer. Attach it to a Replayer.
func NewLogTracer(logger *log.Logger) *LogTracer {
	t := new(LogTracer)
	t.Logger = logger

	return t
}

// Func prints the op if the context is a replayed op.
func (t *LogTracer) Func(ctx hooking.HookCtx) {
	if ctx.Pos != HookPosOpReplayed {
		return
	}

	detail := ctx.Detail.(OpDetail)

	outcomes := make([]string, 0, len(detail.Outcomes))
	for _, o := range detail.Outcomes {
		outcomes = append(outcomes, o.String())
	}

	t.Printf("%s %s\n", detail.Op, strings.Join(outcomes, " "))
}

// A DBTracer records every access into a database using the data recorder.
// Attach it to a cache.Simulator.
type DBTracer struct {
	dataRecorder datarecording.DataRecorder
}

// NewDBTracer creates a DBTracer and the tables it writes to.
func NewDBTracer(dataRecorder datarecording.DataRecorder) *DBTracer {
	t := &DBTracer{
		dataRecorder: dataRecorder,
	}

	t.dataRecorder.CreateTable(accessTable, accessEntry{})
	t.dataRecorder.CreateTable(summaryTable, summaryEntry{})

	return t
}

// Func records the access if the context is a cache access.
func (t *DBTracer) Func(ctx hooking.HookCtx) {
	if ctx.Pos != cache.HookPosAccess {
		return
	}

	detail := ctx.Detail.(cache.AccessDetail)

	entry := accessEntry{
		Seq:     detail.Seq,
		Address: fmt.Sprintf("0x%x", detail.Address),
		SetID:   detail.SetID,
		Tag:     fmt.Sprintf("0x%x", detail.Tag),
		WayID:   detail.WayID,
		Outcome: detail.Outcome.String(),
	}

	if detail.Outcome == cache.EvictionMiss {
		entry.EvictedTag = fmt.Sprintf("0x%x", detail.EvictedTag)
	}

	t.dataRecorder.InsertData(accessTable, entry)
}

// Finalize records the final counters and flushes the recorder.
func (t *DBTracer) Finalize(config cache.Config, stats cache.Stats) {
	t.dataRecorder.InsertData(summaryTable, summaryEntry{
		NumSetBits:    config.NumSetBits,
		Associativity: config.Associativity,
		NumBlockBits:  config.NumBlockBits,
		Hits:          stats.Hits,
		Misses:        stats.Misses,
		Evictions:     stats.Evictions,
	})

	t.dataRecorder.Flush()
}

// ErrNoSummary is returned when a recording holds no final counters, as when
// the run that wrote it did not finish.
var ErrNoSummary = errors.New("recording has no summary")

// ReadSummary reads back the final counters that a DBTracer recorded. When a
// recording holds more than one summary, the last one wins.
func ReadSummary(
	ctx context.Context,
	reader datarecording.DataReader,
) (cache.Config, cache.Stats, error) {
	reader.MapTable(summaryTable, summaryEntry{})

	results, _, err := reader.Query(ctx, summaryTable,
		datarecording.QueryParams{OrderBy: "rowid DESC", Limit: 1})
	if err != nil {
		return cache.Config{}, cache.Stats{}, fmt.Errorf("reading summary: %w", err)
	}

	if len(results) == 0 {
		return cache.Config{}, cache.Stats{}, ErrNoSummary
	}

	entry := results[0].(*summaryEntry)
	config := cache.Config{
		NumSetBits:    entry.NumSetBits,
		Associativity: entry.Associativity,
		NumBlockBits:  entry.NumBlockBits,
	}
	stats := cache.Stats{
		Hits:      entry.Hits,
		Misses:    entry.Misses,
		Evictions: entry.Evictions,
	}

	return config, stats, nil
}

// CountAccesses returns how many accesses a DBTracer recorded with the given
// outcome. An empty outcome counts every access.
func CountAccesses(
	ctx context.Context,
	reader datarecording.DataReader,
	outcome string,
) (int, error) {
	reader.MapTable(accessTable, accessEntry{})

	params := datarecording.QueryParams{Limit: 1}
	if outcome != "" {
		params.Where = "Outcome = ?"
		params.Args = []any{outcome}
	}

	_, total, err := reader.Query(ctx, accessTable, params)
	if err != nil {
		return 0, fmt.Errorf("counting accesses: %w", err)
	}

	return total, nil
}
