package riscv

import (
	"github.com/consensys/starkair/air"
	"github.com/consensys/starkair/machine"
)

// Chips returns the chip set of the base RV32 ALU machine, in the order the
// machine commits to them.
func Chips() []air.Chip {
	return []air.Chip{
		&CpuChip{},
		&AddSubChip{},
		&BitwiseChip{},
		&ByteChip{},
	}
}

// NewMachine builds the base machine over the RV32 ALU chip set.
func NewMachine(opts ...machine.Option) *machine.Machine {
	return machine.New(Chips(), opts...)
}
