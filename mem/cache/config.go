package cache

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned when a cache configuration cannot be built.
var ErrInvalidConfig = errors.New("invalid cache configuration")

// maxNumSetBits bounds the number of sets so that the set array can always be
// allocated.
const maxNumSetBits = 30

// Config is the shape of a cache. It does not change during a simulation.
type Config struct {
	// NumSetBits is s, the number of address bits that select a set.
	NumSetBits uint `json:"num_set_bits"`

	// Associativity is E, the number of lines in each set.
	Associativity int `json:"associativity"`

	// NumBlockBits is b, the number of address bits of the block offset.
	NumBlockBits uint `json:"num_block_bits"`
}

// NumSets returns S = 2^s.
func (c Config) NumSets() int {
	return 1 << c.NumSetBits
}

// BlockSize returns the number of bytes in a block, 2^b.
func (c Config) BlockSize() uint64 {
	return 1 << c.NumBlockBits
}

// TotalByteSize returns the number of data bytes the cache can hold.
func (c Config) TotalByteSize() uint64 {
	return uint64(c.NumSets()) * uint64(c.Associativity) * c.BlockSize()
}

// Validate checks if a cache can be built with the configuration.
func (c Config) Validate() error {
	if c.Associativity < 1 {
		return fmt.Errorf("%w: associativity must be positive, got %d",
			ErrInvalidConfig, c.Associativity)
	}

	if c.NumSetBits > maxNumSetBits {
		return fmt.Errorf("%w: at most %d set index bits are supported, got %d",
			ErrInvalidConfig, maxNumSetBits, c.NumSetBits)
	}

	if c.NumSetBits+c.NumBlockBits > 64 {
		return fmt.Errorf(
			"%w: set index bits (%d) and block offset bits (%d) exceed 64",
			ErrInvalidConfig, c.NumSetBits, c.NumBlockBits)
	}

	return nil
}

func (c Config) String() string {
	return fmt.Sprintf("s=%d E=%d b=%d (S=%d, B=%d)",
		c.NumSetBits, c.Associativity, c.NumBlockBits,
		c.NumSets(), c.BlockSize())
}
