package riscv

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/consensys/starkair/air"
	"github.com/consensys/starkair/executor"
	"github.com/consensys/starkair/lookup"
	"github.com/consensys/starkair/trace"
)

const (
	byteColB = iota
	byteColC
	byteColAnd
	byteColOr
	byteColXor
	byteColMultAnd
	byteColMultOr
	byteColMultXor
	byteColMultRange

	numByteCols = iota
)

// byteTableHeight is one row per ordered byte pair (b, c).
const byteTableHeight = 1 << 16

// byteRowIndex places the pair (b, c) at a fixed row, so that multiplicity
// updates address the table without searching it.
func byteRowIndex(b, c uint8) int {
	return int(b)<<8 | int(c)
}

// ByteChip is the sole sender on the byte bus. Its table enumerates every
// byte pair exactly once; the operand and result columns are a fixed layout
// the verifier can recompute, so soundness rests only on the multiplicity
// columns the prover fills from the shard's aggregated byte lookups.
type ByteChip struct {
	NbTasks int
}

func (*ByteChip) Name() string { return "Byte" }

func (*ByteChip) Width() int { return numByteCols }

func (*ByteChip) Included(record *executor.Record) bool {
	return len(record.ByteLookups) > 0
}

func (chip *ByteChip) GenerateTrace(record *executor.Record, _ *executor.Record) *trace.Matrix {
	m := trace.New(numByteCols, byteTableHeight)
	m.FillRows(byteTableHeight, func(i int, row []fr.Element) {
		b, c := uint8(i>>8), uint8(i)
		row[byteColB].SetUint64(uint64(b))
		row[byteColC].SetUint64(uint64(c))
		row[byteColAnd].SetUint64(uint64(b & c))
		row[byteColOr].SetUint64(uint64(b | c))
		row[byteColXor].SetUint64(uint64(b ^ c))
		row[byteColMultAnd].SetUint64(record.ByteLookups[executor.ByteLookupEvent{
			Opcode: executor.ByteOpAND, B: b, C: c, A: b & c,
		}])
		row[byteColMultOr].SetUint64(record.ByteLookups[executor.ByteLookupEvent{
			Opcode: executor.ByteOpOR, B: b, C: c, A: b | c,
		}])
		row[byteColMultXor].SetUint64(record.ByteLookups[executor.ByteLookupEvent{
			Opcode: executor.ByteOpXOR, B: b, C: c, A: b ^ c,
		}])
		if c == 0 {
			row[byteColMultRange].SetUint64(record.ByteLookups[executor.ByteRangeEvent(b)])
		}
	}, chip.NbTasks)
	return m
}

func (*ByteChip) Eval(api air.API) {
	main := api.Main()
	local := main.Local

	b, c := local[byteColB], local[byteColC]
	zero := api.Zero()

	api.Send(air.Interaction{
		Values:       []air.Variable{api.Constant(uint64(executor.ByteOpU8Range)), b, zero, zero},
		Multiplicity: local[byteColMultRange],
		Kind:         lookup.KindByte,
	})
	api.Send(air.Interaction{
		Values:       []air.Variable{api.Constant(uint64(executor.ByteOpAND)), b, c, local[byteColAnd]},
		Multiplicity: local[byteColMultAnd],
		Kind:         lookup.KindByte,
	})
	api.Send(air.Interaction{
		Values:       []air.Variable{api.Constant(uint64(executor.ByteOpOR)), b, c, local[byteColOr]},
		Multiplicity: local[byteColMultOr],
		Kind:         lookup.KindByte,
	})
	api.Send(air.Interaction{
		Values:       []air.Variable{api.Constant(uint64(executor.ByteOpXOR)), b, c, local[byteColXor]},
		Multiplicity: local[byteColMultXor],
		Kind:         lookup.KindByte,
	})
}
