package riscv

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/consensys/starkair/air"
	"github.com/consensys/starkair/executor"
	"github.com/consensys/starkair/internal/utils"
	"github.com/consensys/starkair/lookup"
	"github.com/consensys/starkair/trace"
)

const (
	bitwiseColPc = iota
	bitwiseColIsAnd
	bitwiseColIsOr
	bitwiseColIsXor
	bitwiseColA
	bitwiseColB = bitwiseColA + air.WordSize
	bitwiseColC = bitwiseColB + air.WordSize

	numBitwiseCols = bitwiseColC + air.WordSize
)

// bitwiseCols is the named, bounds-checked view over a bitwise trace row.
type bitwiseCols[T any] struct{ row []T }

func bitwiseColsOf[T any](row []T) bitwiseCols[T] {
	if len(row) != numBitwiseCols {
		panic(fmt.Sprintf("bitwise row has %d columns, want %d", len(row), numBitwiseCols))
	}
	return bitwiseCols[T]{row}
}

func (c bitwiseCols[T]) isAnd() T       { return c.row[bitwiseColIsAnd] }
func (c bitwiseCols[T]) isOr() T        { return c.row[bitwiseColIsOr] }
func (c bitwiseCols[T]) isXor() T       { return c.row[bitwiseColIsXor] }
func (c bitwiseCols[T]) a() air.Word[T] { return c.word(bitwiseColA) }
func (c bitwiseCols[T]) b() air.Word[T] { return c.word(bitwiseColB) }
func (c bitwiseCols[T]) cOp() air.Word[T] {
	return c.word(bitwiseColC)
}

func (c bitwiseCols[T]) word(start int) air.Word[T] {
	var w air.Word[T]
	for k := 0; k < air.WordSize; k++ {
		w[k] = c.row[start+k]
	}
	return w
}

// BitwiseChip proves AND, OR and XOR. It owns no bit decomposition of its
// own: every limb triple is delegated to the byte oracle, so the only local
// constraints are the selector identities.
type BitwiseChip struct {
	// NbTasks caps the parallelism of trace generation; 0 means NumCPU.
	NbTasks int
}

func (*BitwiseChip) Name() string { return "Bitwise" }

func (*BitwiseChip) Width() int { return numBitwiseCols }

func (*BitwiseChip) Included(record *executor.Record) bool {
	return len(record.BitwiseEvents) > 0
}

func (chip *BitwiseChip) GenerateTrace(record *executor.Record, _ *executor.Record) *trace.Matrix {
	events := record.BitwiseEvents
	m := trace.New(numBitwiseCols, len(events))
	m.FillRows(len(events), func(i int, row []fr.Element) {
		eventToBitwiseRow(events[i], bitwiseColsOf(row), executor.DiscardByteRecord{})
	}, chip.NbTasks)
	return m
}

// GenerateDependencies emits one byte fact per limb triple of every event.
func (chip *BitwiseChip) GenerateDependencies(record *executor.Record, out *executor.Record) {
	events := record.BitwiseEvents
	nbTasks := chip.NbTasks
	if nbTasks <= 0 {
		nbTasks = runtime.NumCPU()
	}

	var mu sync.Mutex
	var maps []executor.ByteLookupMap
	utils.Parallelize(len(events), func(start, end int) {
		blu := make(executor.ByteLookupMap)
		scratch := make([]fr.Element, numBitwiseCols)
		for i := start; i < end; i++ {
			eventToBitwiseRow(events[i], bitwiseColsOf(scratch), blu)
		}
		mu.Lock()
		maps = append(maps, blu)
		mu.Unlock()
	}, nbTasks)

	out.AddByteLookupEventsFromMaps(maps)
}

func byteOpcodeOf(op executor.Opcode) executor.ByteOpcode {
	switch op {
	case executor.OpAND:
		return executor.ByteOpAND
	case executor.OpOR:
		return executor.ByteOpOR
	case executor.OpXOR:
		return executor.ByteOpXOR
	default:
		panic(fmt.Sprintf("bitwise: malformed event: opcode %s", op))
	}
}

func eventToBitwiseRow(e executor.AluEvent, cols bitwiseCols[fr.Element], blu executor.ByteRecord) {
	bop := byteOpcodeOf(e.Opcode)
	cols.row[bitwiseColPc].SetUint64(uint64(e.Pc))
	switch bop {
	case executor.ByteOpAND:
		cols.row[bitwiseColIsAnd].SetOne()
	case executor.ByteOpOR:
		cols.row[bitwiseColIsOr].SetOne()
	case executor.ByteOpXOR:
		cols.row[bitwiseColIsXor].SetOne()
	}
	setWord(cols.row, bitwiseColA, e.A)
	setWord(cols.row, bitwiseColB, e.B)
	setWord(cols.row, bitwiseColC, e.C)

	for k := 0; k < air.WordSize; k++ {
		blu.AddByteLookupEvent(executor.ByteLookupEvent{
			Opcode: bop,
			B:      uint8(e.B >> (8 * k)),
			C:      uint8(e.C >> (8 * k)),
			A:      uint8(e.A >> (8 * k)),
		})
	}
}

func (*BitwiseChip) Eval(api air.API) {
	main := api.Main()
	local := bitwiseColsOf(main.Local)

	isAnd, isOr, isXor := local.isAnd(), local.isOr(), local.isXor()
	isReal := api.Add(isAnd, isOr, isXor)
	api.AssertIsBoolean(isAnd)
	api.AssertIsBoolean(isOr)
	api.AssertIsBoolean(isXor)
	api.AssertIsBoolean(isReal)

	bop := api.Add(
		api.Mul(api.Constant(uint64(executor.ByteOpAND)), isAnd),
		api.Mul(api.Constant(uint64(executor.ByteOpOR)), isOr),
		api.Mul(api.Constant(uint64(executor.ByteOpXOR)), isXor),
	)

	a, b, c := local.a(), local.b(), local.cOp()
	for k := 0; k < air.WordSize; k++ {
		api.Receive(air.Interaction{
			Values:       []air.Variable{bop, b[k], c[k], a[k]},
			Multiplicity: isReal,
			Kind:         lookup.KindByte,
		})
	}

	opcode := api.Add(
		api.Mul(api.Constant(uint64(executor.OpAND)), isAnd),
		api.Mul(api.Constant(uint64(executor.OpOR)), isOr),
		api.Mul(api.Constant(uint64(executor.OpXOR)), isXor),
	)
	api.Receive(air.Interaction{
		Values: []air.Variable{
			opcode,
			air.WordCompose(api, a),
			air.WordCompose(api, b),
			air.WordCompose(api, c),
		},
		Multiplicity: isReal,
		Kind:         lookup.KindALU,
	})
}
