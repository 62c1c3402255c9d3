package tagging

import "fmt"

const nilWay = -1

// A Block of a cache is the information that is associated with a cache line.
type Block struct {
	Tag     uint64
	SetID   int
	WayID   int
	IsValid bool
}

// FillOutcome tells how a set made room for a newly inserted tag.
type FillOutcome int

const (
	// FilledEmpty means an invalid way received the tag.
	FilledEmpty FillOutcome = iota

	// Evicted means a valid way was replaced.
	Evicted
)

func (o FillOutcome) String() string {
	switch o {
	case FilledEmpty:
		return "filled-empty"
	case Evicted:
		return "evicted"
	default:
		return fmt.Sprintf("FillOutcome(%d)", int(o))
	}
}

// A Set is a fixed group of blocks where a certain piece of memory can be
// stored at. Blocks never move in the Blocks slice. The recency order is an
// intrusive doubly linked list over way indices that links the valid blocks,
// most-recently-used first.
type Set struct {
	Blocks []Block

	prev     []int
	next     []int
	mru      int
	lru      int
	numValid int
	finder   VictimFinder
}

func newSet(setID, numWays int, finder VictimFinder) Set {
	s := Set{
		Blocks: make([]Block, numWays),
		prev:   make([]int, numWays),
		next:   make([]int, numWays),
		finder: finder,
	}

	for i := range s.Blocks {
		s.Blocks[i] = Block{SetID: setID, WayID: i}
	}

	s.reset()

	return s
}

func (s *Set) reset() {
	for i := range s.Blocks {
		s.Blocks[i].IsValid = false
		s.Blocks[i].Tag = 0
		s.prev[i] = nilWay
		s.next[i] = nilWay
	}

	s.mru = nilWay
	s.lru = nilWay
	s.numValid = 0
}

// NumWays returns the associativity of the set.
func (s *Set) NumWays() int {
	return len(s.Blocks)
}

// NumValid returns the number of valid blocks in the set.
func (s *Set) NumValid() int {
	return s.numValid
}

// Find returns the valid block that holds the tag.
func (s *Set) Find(tag uint64) (Block, bool) {
	for _, b := range s.Blocks {
		if b.IsValid && b.Tag == tag {
			return b, true
		}
	}

	return Block{}, false
}

// Touch moves a valid block to the most-recently-used position.
func (s *Set) Touch(wayID int) {
	if !s.Blocks[wayID].IsValid {
		panic(fmt.Sprintf("touching invalid way %d in set %d",
			wayID, s.Blocks[wayID].SetID))
	}

	s.unlink(wayID)
	s.pushFront(wayID)
}

// InsertOrReplace places the tag into the set. An invalid way is filled if
// there is one. Otherwise, the victim finder picks the way to evict. Either
// way, the block ends up at the most-recently-used position. The returned
// block is the state after the insertion, and evictedTag is only meaningful
// when the outcome is Evicted.
func (s *Set) InsertOrReplace(tag uint64) (
	block Block,
	outcome FillOutcome,
	evictedTag uint64,
) {
	if _, found := s.Find(tag); found {
		panic(fmt.Sprintf("tag 0x%x is already in set %d",
			tag, s.Blocks[0].SetID))
	}

	wayID := s.finder.FindVictim(s)
	victim := &s.Blocks[wayID]

	if victim.IsValid {
		outcome = Evicted
		evictedTag = victim.Tag
		s.unlink(wayID)
	} else {
		outcome = FilledEmpty
		s.numValid++
	}

	if s.numValid > len(s.Blocks) {
		panic(fmt.Sprintf("set %d holds more than %d blocks",
			victim.SetID, len(s.Blocks)))
	}

	victim.Tag = tag
	victim.IsValid = true
	s.pushFront(wayID)

	return *victim, outcome, evictedTag
}

// LRU returns the way of the least recently used valid block. It returns -1
// if the set holds no valid block.
func (s *Set) LRU() int {
	return s.lru
}

// MRU returns the way of the most recently used valid block. It returns -1
// if the set holds no valid block.
func (s *Set) MRU() int {
	return s.mru
}

// RecencyOrder lists the valid ways from the most recently used to the least
// recently used.
func (s *Set) RecencyOrder() []int {
	order := make([]int, 0, s.numValid)

	for w := s.mru; w != nilWay; w = s.next[w] {
		order = append(order, w)

		if len(order) > s.numValid {
			panic(fmt.Sprintf("recency list of set %d is corrupted",
				s.Blocks[w].SetID))
		}
	}

	return order
}

func (s *Set) unlink(wayID int) {
	p, n := s.prev[wayID], s.next[wayID]

	if p == nilWay {
		s.mru = n
	} else {
		s.next[p] = n
	}

	if n == nilWay {
		s.lru = p
	} else {
		s.prev[n] = p
	}

	s.prev[wayID] = nilWay
	s.next[wayID] = nilWay
}

func (s *Set) pushFront(wayID int) {
	s.prev[wayID] = nilWay
	s.next[wayID] = s.mru

	if s.mru != nilWay {
		s.prev[s.mru] = wayID
	}

	s.mru = wayID

	if s.lru == nilWay {
		s.lru = wayID
	}
}
