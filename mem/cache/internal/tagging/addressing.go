package tagging

import "fmt"

// An AddressDecomposer splits a memory address into the tag and the set index
// fields. The lowest NumBlockBits bits are the block offset, the next
// NumSetBits bits select the set, and everything above is the tag.
type AddressDecomposer struct {
	NumSetBits   uint
	NumBlockBits uint
}

// NewAddressDecomposer creates an AddressDecomposer. It panics if the set and
// block fields do not fit in a 64-bit address.
func NewAddressDecomposer(numSetBits, numBlockBits uint) AddressDecomposer {
	if numSetBits+numBlockBits > 64 {
		panic(fmt.Sprintf(
			"set bits (%d) + block bits (%d) exceed the address width",
			numSetBits, numBlockBits))
	}

	return AddressDecomposer{
		NumSetBits:   numSetBits,
		NumBlockBits: numBlockBits,
	}
}

// Decompose returns the tag and the set index of an address.
func (d AddressDecomposer) Decompose(addr uint64) (tag uint64, setID int) {
	setMask := uint64(1)<<d.NumSetBits - 1
	setID = int((addr >> d.NumBlockBits) & setMask)

	// Shifting a uint64 by 64 yields 0 in Go, which is the tag of a cache
	// without tag bits.
	tag = addr >> (d.NumSetBits + d.NumBlockBits)

	return tag, setID
}

// BlockAddress returns the address with the block offset cleared.
func (d AddressDecomposer) BlockAddress(addr uint64) uint64 {
	return addr >> d.NumBlockBits << d.NumBlockBits
}
