// Package executor defines the event and record types exchanged with the
// instruction-execution engine. Records arrive pre-validated; chips treat
// them as opaque, ordered inputs.
package executor

// Opcode identifies the RISC-V instruction class of an ALU event.
type Opcode uint32

const (
	OpADD Opcode = iota
	OpSUB
	OpAND
	OpOR
	OpXOR
)

func (op Opcode) String() string {
	switch op {
	case OpADD:
		return "ADD"
	case OpSUB:
		return "SUB"
	case OpAND:
		return "AND"
	case OpOR:
		return "OR"
	case OpXOR:
		return "XOR"
	default:
		return "Unknown"
	}
}

// ByteOpcode identifies a byte-level fact serviced by the byte oracle chip.
type ByteOpcode uint8

const (
	// ByteOpU8Range asserts a value fits in 8 bits.
	ByteOpU8Range ByteOpcode = iota
	ByteOpAND
	ByteOpOR
	ByteOpXOR
)

func (op ByteOpcode) String() string {
	switch op {
	case ByteOpU8Range:
		return "U8Range"
	case ByteOpAND:
		return "AND"
	case ByteOpOR:
		return "OR"
	case ByteOpXOR:
		return "XOR"
	default:
		return "Unknown"
	}
}
