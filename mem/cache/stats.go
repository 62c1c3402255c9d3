package cache

import "fmt"

// Stats holds the counters of a simulation run. The counters only grow.
type Stats struct {
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
}

// Accesses returns the number of accesses that have been classified.
func (s Stats) Accesses() uint64 {
	return s.Hits + s.Misses
}

// HitRate returns the fraction of accesses that hit, or 0 without accesses.
func (s Stats) HitRate() float64 {
	if s.Accesses() == 0 {
		return 0
	}

	return float64(s.Hits) / float64(s.Accesses())
}

// String renders the stats as "hits:<H> misses:<M> evictions:<E>".
func (s Stats) String() string {
	return fmt.Sprintf("hits:%d misses:%d evictions:%d",
		s.Hits, s.Misses, s.Evictions)
}

// Record renders the stats as "<H> <M> <E>".
func (s Stats) Record() string {
	return fmt.Sprintf("%d %d %d", s.Hits, s.Misses, s.Evictions)
}

func (s *Stats) count(o Outcome) {
	switch o {
	case Hit:
		s.Hits++
	case ColdMiss:
		s.Misses++
	case EvictionMiss:
		s.Misses++
		s.Evictions++
	default:
		panic(fmt.Sprintf("access classified as %s", o))
	}
}
