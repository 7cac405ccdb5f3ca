// Package lookup defines the interaction model of the cross-table argument:
// typed facts exchanged between chips over independent buses, compiled into
// affine combinations of trace columns.
package lookup

// Kind tags an interaction with the bus it travels on. Interactions of
// different kinds can never cancel against each other.
type Kind uint8

const (
	// KindMemory is the memory read/write bus.
	KindMemory Kind = iota + 1
	// KindALU carries arithmetic operation dispatch between the CPU and ALU chips.
	KindALU
	// KindByte carries byte-level facts (range membership, bitwise results)
	// serviced by the byte oracle chip.
	KindByte
	// KindProgram carries instruction fetches against the program table.
	KindProgram
	// KindSyscall carries syscall dispatch to precompile chips.
	KindSyscall
	// KindRange carries field-range facts.
	KindRange
	// KindGlobal is the cross-shard bus.
	KindGlobal
)

func (k Kind) String() string {
	switch k {
	case KindMemory:
		return "Memory"
	case KindALU:
		return "ALU"
	case KindByte:
		return "Byte"
	case KindProgram:
		return "Program"
	case KindSyscall:
		return "Syscall"
	case KindRange:
		return "Range"
	case KindGlobal:
		return "Global"
	default:
		return "Unknown"
	}
}
