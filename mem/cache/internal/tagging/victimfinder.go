package tagging

// A VictimFinder decides which block should receive a new tag.
type VictimFinder interface {
	FindVictim(set *Set) (wayID int)
}

// LRUVictimFinder evicts the least recently used block.
type LRUVictimFinder struct {
}

// NewLRUVictimFinder returns a newly constructed lru evictor.
func NewLRUVictimFinder() *LRUVictimFinder {
	e := new(LRUVictimFinder)
	return e
}

// FindVictim returns the invalid block with the lowest way index if there is
// one. Otherwise, it returns the least recently used block.
func (e *LRUVictimFinder) FindVictim(set *Set) int {
	if set.NumValid() < set.NumWays() {
		for i, block := range set.Blocks {
			if !block.IsValid {
				return i
			}
		}
	}

	return set.LRU()
}
