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
	addSubColPc = iota
	addSubColIsAdd
	addSubColIsSub
	addSubColA // 4 limbs
	addSubColB = addSubColA + air.WordSize
	addSubColC = addSubColB + air.WordSize
	// the add-operation witness: result word then carries
	addSubColValue = addSubColC + air.WordSize
	addSubColCarry = addSubColValue + air.WordSize

	numAddSubCols = addSubColCarry + air.WordSize
)

// addSubCols is the named, bounds-checked view over an add/sub trace row.
type addSubCols[T any] struct{ row []T }

func addSubColsOf[T any](row []T) addSubCols[T] {
	if len(row) != numAddSubCols {
		panic(fmt.Sprintf("addsub row has %d columns, want %d", len(row), numAddSubCols))
	}
	return addSubCols[T]{row}
}

func (c addSubCols[T]) pc() T    { return c.row[addSubColPc] }
func (c addSubCols[T]) isAdd() T { return c.row[addSubColIsAdd] }
func (c addSubCols[T]) isSub() T { return c.row[addSubColIsSub] }

func (c addSubCols[T]) a() air.Word[T] { return c.word(addSubColA) }
func (c addSubCols[T]) b() air.Word[T] { return c.word(addSubColB) }
func (c addSubCols[T]) cOp() air.Word[T] { return c.word(addSubColC) }

func (c addSubCols[T]) addOperation() air.AddOperation[T] {
	var op air.AddOperation[T]
	op.Value = c.word(addSubColValue)
	for k := 0; k < air.WordSize; k++ {
		op.Carry[k] = c.row[addSubColCarry+k]
	}
	return op
}

func (c addSubCols[T]) word(start int) air.Word[T] {
	var w air.Word[T]
	for k := 0; k < air.WordSize; k++ {
		w[k] = c.row[start+k]
	}
	return w
}

// AddSubChip proves the ADD and SUB instruction classes in one table. SUB is
// an ADD with the operands rearranged: ADD verifies a = b + c, SUB verifies
// b = a + c. The ripple-carry witness always holds the sum, which is the
// result word for ADD and the first operand for SUB.
type AddSubChip struct {
	// NbTasks caps the parallelism of trace generation; 0 means NumCPU.
	NbTasks int
}

func (*AddSubChip) Name() string { return "AddSub" }

func (*AddSubChip) Width() int { return numAddSubCols }

func (*AddSubChip) Included(record *executor.Record) bool {
	return len(record.AddEvents)+len(record.SubEvents) > 0
}

func (chip *AddSubChip) GenerateTrace(record *executor.Record, _ *executor.Record) *trace.Matrix {
	events := mergedAddSubEvents(record)
	m := trace.New(numAddSubCols, len(events))
	m.FillRows(len(events), func(i int, row []fr.Element) {
		eventToAddSubRow(events[i], addSubColsOf(row), executor.DiscardByteRecord{})
	}, chip.NbTasks)
	return m
}

// GenerateDependencies emits the byte-range facts of every result limb. The
// events are aggregated into task-local maps in parallel; the serial merge
// into out sums multiplicities and is therefore order-independent.
func (chip *AddSubChip) GenerateDependencies(record *executor.Record, out *executor.Record) {
	events := mergedAddSubEvents(record)
	nbTasks := chip.NbTasks
	if nbTasks <= 0 {
		nbTasks = runtime.NumCPU()
	}

	var mu sync.Mutex
	var maps []executor.ByteLookupMap
	utils.Parallelize(len(events), func(start, end int) {
		blu := make(executor.ByteLookupMap)
		scratch := make([]fr.Element, numAddSubCols)
		for i := start; i < end; i++ {
			eventToAddSubRow(events[i], addSubColsOf(scratch), blu)
		}
		mu.Lock()
		maps = append(maps, blu)
		mu.Unlock()
	}, nbTasks)

	out.AddByteLookupEventsFromMaps(maps)
}

func mergedAddSubEvents(record *executor.Record) []executor.AluEvent {
	events := make([]executor.AluEvent, 0, len(record.AddEvents)+len(record.SubEvents))
	events = append(events, record.AddEvents...)
	events = append(events, record.SubEvents...)
	return events
}

func eventToAddSubRow(e executor.AluEvent, cols addSubCols[fr.Element], blu executor.ByteRecord) {
	isAdd := e.Opcode == executor.OpADD
	if !isAdd && e.Opcode != executor.OpSUB {
		panic(fmt.Sprintf("addsub: malformed event: opcode %s", e.Opcode))
	}

	cols.row[addSubColPc].SetUint64(uint64(e.Pc))
	if isAdd {
		cols.row[addSubColIsAdd].SetOne()
	} else {
		cols.row[addSubColIsSub].SetOne()
	}
	setWord(cols.row, addSubColA, e.A)
	setWord(cols.row, addSubColB, e.B)
	setWord(cols.row, addSubColC, e.C)

	x := e.B
	if !isAdd {
		x = e.A
	}
	op := air.AddOperation[fr.Element]{}
	air.PopulateAdd(&op, x, e.C, blu)
	for k := 0; k < air.WordSize; k++ {
		cols.row[addSubColValue+k] = op.Value[k]
		cols.row[addSubColCarry+k] = op.Carry[k]
	}
}

func setWord(row []fr.Element, start int, v uint32) {
	w := air.WordFromUint32(v)
	copy(row[start:start+air.WordSize], w[:])
}

func (*AddSubChip) Eval(api air.API) {
	main := api.Main()
	local := addSubColsOf(main.Local)

	isAdd, isSub := local.isAdd(), local.isSub()
	isReal := api.Add(isAdd, isSub)
	api.AssertIsBoolean(isAdd)
	api.AssertIsBoolean(isSub)
	// at most one selector on per row; padding has neither
	api.AssertIsBoolean(isReal)

	// the ripple-carry witness adds x + c where x is b for ADD and a for SUB
	a, b, c := local.a(), local.b(), local.cOp()
	var x air.Word[air.Variable]
	for k := 0; k < air.WordSize; k++ {
		x[k] = api.Add(api.Mul(isAdd, b[k]), api.Mul(isSub, a[k]))
	}
	op := local.addOperation()
	air.EvalAdd(api, x, c, op, isReal)

	// the sum is the result word a for ADD, the operand b for SUB
	for k := 0; k < air.WordSize; k++ {
		api.AssertIsEqual(op.Value[k], api.Add(api.Mul(isAdd, a[k]), api.Mul(isSub, b[k])))
	}

	opcode := api.Add(
		api.Mul(api.Constant(uint64(executor.OpADD)), isAdd),
		api.Mul(api.Constant(uint64(executor.OpSUB)), isSub),
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
