package trace

import (
	"errors"
	"fmt"
	"io"

	"github.com/sarchlab/csim/mem/cache"
	"github.com/sarchlab/csim/sim/hooking"
)

// HookPosOpReplayed marks that all the accesses of an op are done. The hook
// item is the Replayer and the detail is an OpDetail.
var HookPosOpReplayed = &hooking.HookPos{Name: "OpReplayed"}

// An Accessor classifies one memory access. *cache.Simulator is an Accessor.
type Accessor interface {
	Access(addr uint64) cache.Outcome
}

// An OpSource yields operations in program order until io.EOF.
type OpSource interface {
	Next() (Op, error)
}

// A ProgressTracker follows replayed ops. An op is in progress while its
// accesses are issued and finished once they are all classified.
type ProgressTracker interface {
	IncrementInProgress(amount uint64)
	MoveInProgressToFinished(amount uint64)
}

// OpDetail tells how each access of an op is classified.
type OpDetail struct {
	Op       Op
	Outcomes []cache.Outcome
}

// A Replayer turns trace operations into cache accesses.
type Replayer struct {
	hooking.HookableBase

	accessor Accessor
	progress ProgressTracker
	numOps   uint64
}

// NewReplayer creates a Replayer that issues accesses to the accessor.
func NewReplayer(accessor Accessor) *Replayer {
	return &Replayer{
		accessor: accessor,
	}
}

// SetProgressTracker sets the tracker that follows the replay.
func (r *Replayer) SetProgressTracker(p ProgressTracker) {
	r.progress = p
}

// NumOps returns the number of ops replayed so far.
func (r *Replayer) NumOps() uint64 {
	return r.numOps
}

// ReplayOp performs the accesses of one op in order. Loads and stores access
// the cache once. A modify accesses the same address twice, load first and
// store second.
func (r *Replayer) ReplayOp(op Op) []cache.Outcome {
	n := op.Kind.NumAccesses()
	if n == 0 {
		return nil
	}

	if r.progress != nil {
		r.progress.IncrementInProgress(1)
	}

	outcomes := make([]cache.Outcome, n)
	for i := range outcomes {
		outcomes[i] = r.accessor.Access(op.Address)
	}

	if op.Kind == Modify && outcomes[1] != cache.Hit {
		panic(fmt.Sprintf("store of %s did not hit the line its load filled",
			op))
	}

	r.numOps++

	if r.progress != nil {
		r.progress.MoveInProgressToFinished(1)
	}

	r.InvokeHook(hooking.HookCtx{
		Domain: r,
		Pos:    HookPosOpReplayed,
		Item:   r,
		Detail: OpDetail{Op: op, Outcomes: outcomes},
	})

	return outcomes
}

// Replay replays every op from the source. It stops at the first error of
// the source.
func (r *Replayer) Replay(src OpSource) error {
	for {
		op, err := src.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return err
		}

		r.ReplayOp(op)
	}
}

// ReplayAll replays a list of ops.
func (r *Replayer) ReplayAll(ops []Op) {
	for _, op := range ops {
		r.ReplayOp(op)
	}
}
