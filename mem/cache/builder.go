package cache

import (
	"slices"

	"github.com/sarchlab/csim/mem/cache/internal/tagging"
	"github.com/sarchlab/csim/sim/hooking"
)

// Builder can build cache simulators.
type Builder struct {
	numSetBits    uint
	associativity int
	numBlockBits  uint
	hooks         []hooking.Hook
}

// MakeBuilder creates a new builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		numSetBits:    4,
		associativity: 1,
		numBlockBits:  4,
	}
}

// WithNumSetBits sets the number of set index bits.
func (b Builder) WithNumSetBits(n uint) Builder {
	b.numSetBits = n
	return b
}

// WithAssociativity sets the number of lines in each set.
func (b Builder) WithAssociativity(e int) Builder {
	b.associativity = e
	return b
}

// WithNumBlockBits sets the number of block offset bits.
func (b Builder) WithNumBlockBits(n uint) Builder {
	b.numBlockBits = n
	return b
}

// WithConfig sets all the shape parameters at once.
func (b Builder) WithConfig(c Config) Builder {
	b.numSetBits = c.NumSetBits
	b.associativity = c.Associativity
	b.numBlockBits = c.NumBlockBits

	return b
}

// WithHook registers a hook to the simulator that is going to be built.
func (b Builder) WithHook(hook hooking.Hook) Builder {
	b.hooks = append(slices.Clip(b.hooks), hook)
	return b
}

// Build creates a simulator with every line invalid and all counters zero. It
// panics if the configuration is invalid.
func (b Builder) Build() *Simulator {
	config := Config{
		NumSetBits:    b.numSetBits,
		Associativity: b.associativity,
		NumBlockBits:  b.numBlockBits,
	}

	if err := config.Validate(); err != nil {
		panic(err)
	}

	s := &Simulator{
		config: config,
		decomposer: tagging.NewAddressDecomposer(
			config.NumSetBits, config.NumBlockBits),
		tags: tagging.NewTagArray(
			config.NumSets(),
			config.Associativity,
			tagging.NewLRUVictimFinder(),
		),
	}

	for _, hook := range b.hooks {
		s.AcceptHook(hook)
	}

	return s
}
