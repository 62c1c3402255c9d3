// Package trace reads memory access traces and replays them against a cache
// simulator.
package trace

import "fmt"

// OpKind is the kind of a traced memory operation.
type OpKind byte

// The operation kinds, encoded as their trace opcodes.
const (
	Instruction OpKind = 'I'
	Load        OpKind = 'L'
	Store       OpKind = 'S'
	Modify      OpKind = 'M'
)

func opKindOf(c byte) (OpKind, bool) {
	switch k := OpKind(c); k {
	case Instruction, Load, Store, Modify:
		return k, true
	default:
		return 0, false
	}
}

// NumAccesses returns how many cache accesses the operation performs. A
// modify is a load followed by a store to the same address. Instruction
// fetches do not reach the data cache.
func (k OpKind) NumAccesses() int {
	switch k {
	case Load, Store:
		return 1
	case Modify:
		return 2
	default:
		return 0
	}
}

func (k OpKind) String() string {
	switch k {
	case Instruction, Load, Store, Modify:
		return string(k)
	default:
		return fmt.Sprintf("OpKind(%d)", byte(k))
	}
}

// An Op is one record of a trace.
type Op struct {
	Kind    OpKind
	Address uint64
	Size    uint64
}

// String renders the op the way it appears in a trace, without the leading
// space.
func (o Op) String() string {
	return fmt.Sprintf("%s %x,%d", o.Kind, o.Address, o.Size)
}
