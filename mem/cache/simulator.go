// Package cache simulates a set-associative cache with LRU replacement and
// classifies each memory access as a hit, a cold miss, or a miss that evicts.
package cache

import (
	"fmt"

	"github.com/sarchlab/csim/mem/cache/internal/tagging"
	"github.com/sarchlab/csim/sim/hooking"
)

// HookPosAccess marks the completion of an access. The hook item is the
// Simulator and the detail is an AccessDetail.
var HookPosAccess = &hooking.HookPos{Name: "CacheAccess"}

// A Simulator replays accesses against one cache. It is not safe for
// concurrent use. Accesses must be issued in program order.
type Simulator struct {
	hooking.HookableBase

	config     Config
	decomposer tagging.AddressDecomposer
	tags       tagging.TagArray
	stats      Stats
	numAccess  uint64
}

// Config returns the shape of the simulated cache.
func (s *Simulator) Config() Config {
	return s.config
}

// Stats returns a copy of the counters.
func (s *Simulator) Stats() Stats {
	return s.stats
}

// Access looks up the address in the cache and returns how the access is
// classified. On a hit, the line becomes the most recently used one. On a
// miss, the tag is brought in, evicting the least recently used line if the
// set is full.
func (s *Simulator) Access(addr uint64) Outcome {
	tag, setID := s.decomposer.Decompose(addr)
	set := s.tags.GetSet(setID)

	s.numAccess++
	detail := AccessDetail{
		Seq:     s.numAccess,
		Address: addr,
		Tag:     tag,
		SetID:   setID,
	}

	if block, found := set.Find(tag); found {
		set.Touch(block.WayID)

		detail.WayID = block.WayID
		detail.Outcome = Hit
	} else {
		block, fill, evictedTag := set.InsertOrReplace(tag)

		detail.WayID = block.WayID
		detail.Outcome = s.missOutcome(fill)
		detail.EvictedTag = evictedTag
	}

	s.stats.count(detail.Outcome)
	s.mustKeepAccounting()
	s.traceAccess(detail)

	return detail.Outcome
}

func (s *Simulator) missOutcome(fill tagging.FillOutcome) Outcome {
	switch fill {
	case tagging.FilledEmpty:
		return ColdMiss
	case tagging.Evicted:
		return EvictionMiss
	default:
		panic(fmt.Sprintf("unknown fill outcome %s", fill))
	}
}

func (s *Simulator) mustKeepAccounting() {
	if s.stats.Accesses() != s.numAccess ||
		s.stats.Evictions > s.stats.Misses {
		panic(fmt.Sprintf("counters %s disagree with %d accesses",
			s.stats, s.numAccess))
	}
}

func (s *Simulator) traceAccess(detail AccessDetail) {
	if s.NumHooks() == 0 {
		return
	}

	ctx := hooking.HookCtx{
		Domain: s,
		Pos:    HookPosAccess,
		Item:   s,
		Detail: detail,
	}

	s.InvokeHook(ctx)
}

// Reset invalidates every line and clears the counters.
func (s *Simulator) Reset() {
	s.tags.Reset()
	s.stats = Stats{}
	s.numAccess = 0
}

// NumValid returns the number of valid lines in a set.
func (s *Simulator) NumValid(setID int) int {
	return s.tags.NumValid(setID)
}
