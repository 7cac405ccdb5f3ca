// Package riscv holds the concrete chips of the standard machine: the CPU
// dispatch table, the add/sub and bitwise ALU tables, and the byte oracle
// servicing their range and bitwise lookups.
package riscv

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/consensys/starkair/air"
	"github.com/consensys/starkair/executor"
	"github.com/consensys/starkair/lookup"
	"github.com/consensys/starkair/trace"
)

const (
	cpuColPc = iota
	cpuColOpcode
	cpuColA
	cpuColB
	cpuColC
	cpuColIsReal

	numCpuCols
)

// pcIncrement is the byte offset between consecutive instructions.
const pcIncrement = 4

// cpuCols is the named, bounds-checked view over a CPU trace row.
type cpuCols[T any] struct{ row []T }

func cpuColsOf[T any](row []T) cpuCols[T] {
	if len(row) != numCpuCols {
		panic(fmt.Sprintf("cpu row has %d columns, want %d", len(row), numCpuCols))
	}
	return cpuCols[T]{row}
}

func (c cpuCols[T]) pc() T     { return c.row[cpuColPc] }
func (c cpuCols[T]) opcode() T { return c.row[cpuColOpcode] }
func (c cpuCols[T]) a() T      { return c.row[cpuColA] }
func (c cpuCols[T]) b() T      { return c.row[cpuColB] }
func (c cpuCols[T]) c() T      { return c.row[cpuColC] }
func (c cpuCols[T]) isReal() T { return c.row[cpuColIsReal] }

// CpuChip is the dispatch table: one row per executed instruction, in
// program order. It is the sole producer on the ALU bus; each row sends the
// operation tuple that exactly one ALU chip row receives.
type CpuChip struct {
	// NbTasks caps the parallelism of trace generation; 0 means NumCPU.
	NbTasks int
}

func (*CpuChip) Name() string { return "Cpu" }

func (*CpuChip) Width() int { return numCpuCols }

func (*CpuChip) Included(record *executor.Record) bool {
	return len(record.CpuEvents) > 0
}

func (chip *CpuChip) GenerateTrace(record *executor.Record, _ *executor.Record) *trace.Matrix {
	events := record.CpuEvents
	m := trace.New(numCpuCols, len(events))
	m.FillRows(len(events), func(i int, row []fr.Element) {
		e := events[i]
		if e.Opcode > executor.OpXOR {
			panic(fmt.Sprintf("cpu: malformed event at %d: opcode %d", i, e.Opcode))
		}
		cols := cpuColsOf(row)
		cols.row[cpuColPc].SetUint64(uint64(e.Pc))
		cols.row[cpuColOpcode].SetUint64(uint64(e.Opcode))
		cols.row[cpuColA].SetUint64(uint64(e.A))
		cols.row[cpuColB].SetUint64(uint64(e.B))
		cols.row[cpuColC].SetUint64(uint64(e.C))
		cols.row[cpuColIsReal].SetOne()
	}, chip.NbTasks)
	return m
}

func (*CpuChip) Eval(api air.API) {
	main := api.Main()
	local := cpuColsOf(main.Local)
	next := cpuColsOf(main.Next)

	isReal := local.isReal()
	api.AssertIsBoolean(isReal)

	// padding rows are all zero
	notReal := api.Sub(api.One(), isReal)
	api.When(notReal).AssertIsZero(local.pc())
	api.When(notReal).AssertIsZero(local.opcode())

	// real rows form a prefix, and the pc advances by one instruction
	realTransition := api.Mul(api.IsTransition(), next.isReal())
	api.When(realTransition).AssertIsZero(notReal)
	api.When(realTransition).AssertIsEqual(next.pc(), api.Add(local.pc(), api.Constant(pcIncrement)))

	api.Send(air.Interaction{
		Values:       []air.Variable{local.opcode(), local.a(), local.b(), local.c()},
		Multiplicity: isReal,
		Kind:         lookup.KindALU,
	})
}
