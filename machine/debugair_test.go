package machine

import (
	"errors"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"

	"github.com/consensys/starkair/air"
	"github.com/consensys/starkair/executor"
	"github.com/consensys/starkair/trace"
)

// doublerChip constrains its second column to twice its first.
func doublerChip(rows [][]uint64) *evalChip {
	return &evalChip{
		name:  "Doubler",
		width: 2,
		rows:  rows,
		eval: func(api air.API) {
			local := api.Main().Local
			api.AssertIsEqual(local[1], api.Add(local[0], local[0]))
		},
	}
}

func TestCheckConstraintsPasses(t *testing.T) {
	chip := NewChip(doublerChip([][]uint64{{1, 2}, {3, 6}, {0, 0}}))
	main := chip.GenerateTrace(nil, nil)
	require.NoError(t, CheckConstraints(chip, main))
}

func TestCheckConstraintsReportsChipAndRow(t *testing.T) {
	chip := NewChip(doublerChip([][]uint64{{1, 2}, {3, 6}, {4, 8}}))
	main := chip.GenerateTrace(nil, nil)

	// corrupt one cell
	main.Row(2)[1].SetUint64(9)
	err := CheckConstraints(chip, main)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrConstraintViolated)
	require.Contains(t, err.Error(), "Doubler")
	require.Contains(t, err.Error(), "row 2")
}

func TestCheckConstraintsReportsLowestFailingRow(t *testing.T) {
	chip := NewChip(doublerChip([][]uint64{{1, 2}, {3, 6}, {4, 8}, {5, 10}}))
	main := chip.GenerateTrace(nil, nil)
	main.Row(1)[1].SetUint64(7)
	main.Row(3)[1].SetUint64(11)

	err := CheckConstraints(chip, main, 4)
	require.ErrorIs(t, err, ErrConstraintViolated)
	require.Contains(t, err.Error(), "row 1")
}

func TestCheckConstraintsRowSelectors(t *testing.T) {
	// a counter: first row starts at zero, consecutive rows increment; the
	// wraparound pair last→first is exempt through IsTransition
	counter := &evalChip{
		name:  "Counter",
		width: 1,
		rows:  [][]uint64{{0}, {1}, {2}, {3}},
		eval: func(api air.API) {
			main := api.Main()
			api.When(api.IsFirstRow()).AssertIsZero(main.Local[0])
			api.When(api.IsTransition()).AssertIsEqual(
				main.Next[0],
				api.Add(main.Local[0], api.One()),
			)
		},
	}
	chip := NewChip(counter)
	main := chip.GenerateTrace(nil, nil)
	require.NoError(t, CheckConstraints(chip, main))

	// breaking a middle transition is caught
	main.Row(2)[0].SetUint64(7)
	require.ErrorIs(t, CheckConstraints(chip, main), ErrConstraintViolated)
}

// isZeroChip probes its first column with an inverse-based zero test.
// Columns: x, inverse, result, isReal.
type isZeroChip struct {
	probes []uint64
}

func (c *isZeroChip) Name() string { return "IsZero" }
func (c *isZeroChip) Width() int   { return 4 }

func (c *isZeroChip) Included(_ *executor.Record) bool { return len(c.probes) > 0 }

func (c *isZeroChip) GenerateTrace(_ *executor.Record, _ *executor.Record) *trace.Matrix {
	m := trace.New(4, len(c.probes))
	m.FillRows(len(c.probes), func(i int, row []fr.Element) {
		row[0].SetUint64(c.probes[i])
		var op air.IsZeroOperation[fr.Element]
		air.PopulateIsZero(&op, row[0])
		row[1] = op.Inverse
		row[2] = op.Result
		row[3].SetOne()
	})
	return m
}

func (c *isZeroChip) Eval(api air.API) {
	local := api.Main().Local
	isReal := local[3]
	api.AssertIsBoolean(isReal)
	op := air.IsZeroOperation[air.Variable]{Inverse: local[1], Result: local[2]}
	air.EvalIsZero(api, local[0], op, isReal)
}

func TestIsZeroOperationConstraints(t *testing.T) {
	chip := NewChip(&isZeroChip{probes: []uint64{0, 5, 0, 1 << 40}})
	main := chip.GenerateTrace(nil, nil)
	require.NoError(t, CheckConstraints(chip, main))

	// claiming a nonzero probe is zero must fail
	main.Row(1)[2].SetOne()
	require.ErrorIs(t, CheckConstraints(chip, main), ErrConstraintViolated)
}

func TestEvalPermutationConstraintsAcceptGenerated(t *testing.T) {
	chip := NewChip(busChip("Sender", true, [][]uint64{{7, 1}, {9, 2}, {11, 0}}))
	main := chip.GenerateTrace(nil, nil)
	alpha, beta := elem(123), elem(456)

	perm, cumulative := GeneratePermutationTrace(chip, main, alpha, beta)
	require.NoError(t, EvalPermutationConstraints(chip, main, perm, alpha, beta, cumulative))
}

func TestEvalPermutationConstraintsRejectTamperedReciprocal(t *testing.T) {
	chip := NewChip(busChip("Sender", true, [][]uint64{{7, 1}, {9, 2}}))
	main := chip.GenerateTrace(nil, nil)
	alpha, beta := elem(123), elem(456)

	perm, cumulative := GeneratePermutationTrace(chip, main, alpha, beta)
	perm.Row(0)[0].SetUint64(3)
	err := EvalPermutationConstraints(chip, main, perm, alpha, beta, cumulative)
	require.ErrorIs(t, err, ErrConstraintViolated)
}

func TestEvalPermutationConstraintsRejectWrongTarget(t *testing.T) {
	chip := NewChip(busChip("Sender", true, [][]uint64{{7, 1}}))
	main := chip.GenerateTrace(nil, nil)
	alpha, beta := elem(123), elem(456)

	perm, cumulative := GeneratePermutationTrace(chip, main, alpha, beta)
	one := elem(1)
	var wrong fr.Element
	wrong.Add(&cumulative, &one)
	err := EvalPermutationConstraints(chip, main, perm, alpha, beta, wrong)
	require.ErrorIs(t, err, ErrCumulativeSumMismatch)
}

func TestCheckMachineBalanced(t *testing.T) {
	m := New([]air.Chip{
		busChip("Sender", true, [][]uint64{{7, 3}}),
		busChip("Receiver", false, [][]uint64{{7, 1}, {7, 2}}),
	})
	record := executor.NewRecord(0)
	traces, err := m.GenerateTraces(record)
	require.NoError(t, err)
	alpha, beta, err := m.DeriveChallenges(traces)
	require.NoError(t, err)

	require.NoError(t, m.CheckMachine(record, traces, alpha, beta))
}

func TestCheckMachineDetectsImbalance(t *testing.T) {
	m := New([]air.Chip{
		busChip("Sender", true, [][]uint64{{7, 3}}),
		busChip("Receiver", false, [][]uint64{{7, 1}}),
	})
	record := executor.NewRecord(0)
	traces, err := m.GenerateTraces(record)
	require.NoError(t, err)
	alpha, beta, err := m.DeriveChallenges(traces)
	require.NoError(t, err)

	err = m.CheckMachine(record, traces, alpha, beta)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrCumulativeSumMismatch) || errors.Is(err, ErrImbalancedInteractions))
}
