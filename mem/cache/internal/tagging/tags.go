// Package tagging models the tag storage of a set-associative cache.
package tagging

import "fmt"

// TagArray holds all the sets of a cache. Sets never observe each other.
type TagArray interface {
	NumSets() int
	NumWays() int
	GetSet(setID int) *Set
	NumValid(setID int) int
	Reset()
}

// NewTagArray creates a TagArray with numSets sets of numWays blocks each.
// All blocks start invalid.
func NewTagArray(
	numSets int,
	numWays int,
	finder VictimFinder,
) TagArray {
	if numSets < 1 || numWays < 1 {
		panic(fmt.Sprintf("invalid tag array shape %d sets x %d ways",
			numSets, numWays))
	}

	if finder == nil {
		finder = NewLRUVictimFinder()
	}

	t := &tagArrayImpl{
		numSets: numSets,
		numWays: numWays,
		Sets:    make([]Set, numSets),
	}

	for i := range t.Sets {
		t.Sets[i] = newSet(i, numWays, finder)
	}

	return t
}

type tagArrayImpl struct {
	numSets int
	numWays int
	Sets    []Set
}

func (t *tagArrayImpl) NumSets() int {
	return t.numSets
}

func (t *tagArrayImpl) NumWays() int {
	return t.numWays
}

// GetSet returns the set with the given index. An index out of range means the
// address decomposition and the tag array disagree, which cannot be recovered.
func (t *tagArrayImpl) GetSet(setID int) *Set {
	if setID < 0 || setID >= t.numSets {
		panic(fmt.Sprintf("set index %d out of range [0, %d)",
			setID, t.numSets))
	}

	return &t.Sets[setID]
}

func (t *tagArrayImpl) NumValid(setID int) int {
	return t.GetSet(setID).NumValid()
}

// Reset will mark all the blocks in the tag array invalid.
func (t *tagArrayImpl) Reset() {
	for i := range t.Sets {
		t.Sets[i].reset()
	}
}
