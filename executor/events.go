package executor

// AluEvent records one executed ALU instruction: a = b OP c at program
// counter Pc. Events are immutable once recorded.
type AluEvent struct {
	Pc     uint32
	Opcode Opcode
	A      uint32
	B      uint32
	C      uint32
}

// ByteLookupEvent records one byte-level fact: A = B OP C for bitwise
// opcodes, or "B fits in 8 bits" for ByteOpU8Range (C and A zero). The same
// fact may be needed many times; records store it with a multiplicity.
type ByteLookupEvent struct {
	Opcode ByteOpcode
	B      uint8
	C      uint8
	A      uint8
}

// ByteRangeEvent returns the range-check fact for value v.
func ByteRangeEvent(v uint8) ByteLookupEvent {
	return ByteLookupEvent{Opcode: ByteOpU8Range, B: v}
}

// ByteRecord is anything that accepts byte-lookup facts: the shard record
// itself, or a task-local map during a parallel dependency pass.
type ByteRecord interface {
	AddByteLookupEvent(e ByteLookupEvent)
}

// ByteLookupMap is a task-local multiplicity-summing ByteRecord. Maps built
// by disjoint chunks merge commutatively, so the order of a parallel
// aggregation never shows in the result.
type ByteLookupMap map[ByteLookupEvent]uint64

// AddByteLookupEvent implements ByteRecord.
func (m ByteLookupMap) AddByteLookupEvent(e ByteLookupEvent) {
	m[e]++
}

// DiscardByteRecord drops every event; trace generation uses it where the
// dependency pass has already populated the record.
type DiscardByteRecord struct{}

// AddByteLookupEvent implements ByteRecord.
func (DiscardByteRecord) AddByteLookupEvent(ByteLookupEvent) {}
