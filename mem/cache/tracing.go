package cache

import "fmt"

// Outcome is the classification of one access.
type Outcome int

const (
	// Hit means the tag was resident in its set.
	Hit Outcome = iota + 1

	// ColdMiss means the tag was brought into an empty line.
	ColdMiss

	// EvictionMiss means the tag replaced another valid line.
	EvictionMiss
)

// IsMiss tells if the access missed.
func (o Outcome) IsMiss() bool {
	return o == ColdMiss || o == EvictionMiss
}

// String renders the outcome the way the verbose trace prints it.
func (o Outcome) String() string {
	switch o {
	case Hit:
		return "hit"
	case ColdMiss:
		return "miss"
	case EvictionMiss:
		return "miss eviction"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// AccessDetail describes one access for the hooks at HookPosAccess.
type AccessDetail struct {
	// Seq counts the accesses since the simulator was built or reset,
	// starting from 1.
	Seq        uint64
	Address    uint64
	Tag        uint64
	SetID      int
	WayID      int
	Outcome    Outcome
	EvictedTag uint64
}
