package machine

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"

	"github.com/consensys/starkair/air"
	"github.com/consensys/starkair/executor"
	"github.com/consensys/starkair/lookup"
	"github.com/consensys/starkair/trace"
)

// evalChip is a toy chip whose behavior is given inline; trace rows are
// provided directly instead of being derived from events.
type evalChip struct {
	name  string
	width int
	rows  [][]uint64
	eval  func(api air.API)
}

func (c *evalChip) Name() string { return c.name }
func (c *evalChip) Width() int   { return c.width }

func (c *evalChip) GenerateTrace(_ *executor.Record, _ *executor.Record) *trace.Matrix {
	m := trace.New(c.width, len(c.rows))
	m.FillRows(len(c.rows), func(i int, row []fr.Element) {
		for k, v := range c.rows[i] {
			row[k].SetUint64(v)
		}
	})
	return m
}

func (c *evalChip) Eval(api air.API)                 { c.eval(api) }
func (c *evalChip) Included(_ *executor.Record) bool { return len(c.rows) > 0 }

func TestCompileSingleColumnInteraction(t *testing.T) {
	chip := NewChip(&evalChip{
		name:  "Toy",
		width: 2,
		eval: func(api air.API) {
			local := api.Main().Local
			api.Send(air.Interaction{
				Values:       []air.Variable{local[0]},
				Multiplicity: local[1],
				Kind:         lookup.KindRange,
			})
		},
	})

	require.Len(t, chip.Sends(), 1)
	require.Empty(t, chip.Receives())
	require.Equal(t, 2, chip.PermutationWidth())

	send := chip.Sends()[0]
	require.Equal(t, lookup.KindRange, send.Kind)
	require.Equal(t, int(lookup.KindRange), send.ArgumentIndex)
	require.Len(t, send.Values, 1)
	require.Len(t, send.Values[0].Terms, 1)
	require.Equal(t, 0, send.Values[0].Terms[0].Column)
	require.Len(t, send.Multiplicity.Terms, 1)
	require.Equal(t, 1, send.Multiplicity.Terms[0].Column)
}

func TestCompileAffineCombination(t *testing.T) {
	chip := NewChip(&evalChip{
		name:  "Toy",
		width: 3,
		eval: func(api air.API) {
			local := api.Main().Local
			// 2·col0 + col2 + 5, with col0 referenced twice to exercise
			// duplicate folding
			v := api.Add(
				local[0],
				api.Add(local[2], api.Constant(5)),
				local[0],
			)
			api.Receive(air.Interaction{
				Values:       []air.Variable{v},
				Multiplicity: api.One(),
				Kind:         lookup.KindByte,
			})
		},
	})

	require.Len(t, chip.Receives(), 1)
	vc := chip.Receives()[0].Values[0]
	require.Len(t, vc.Terms, 2)
	require.Equal(t, 0, vc.Terms[0].Column)
	two := elem(2)
	require.True(t, vc.Terms[0].Coeff.Equal(&two))
	require.Equal(t, 2, vc.Terms[1].Column)
	five := elem(5)
	require.True(t, vc.Constant.Equal(&five))

	// evaluating the compiled column against a concrete row matches the
	// expression
	row := []fr.Element{elem(3), elem(100), elem(7)}
	got := vc.Apply(row)
	want := elem(2*3 + 7 + 5)
	require.True(t, got.Equal(&want))
}

func TestCompileCancellationDropsTerm(t *testing.T) {
	chip := NewChip(&evalChip{
		name:  "Toy",
		width: 2,
		eval: func(api air.API) {
			local := api.Main().Local
			// col0 + col1 − col0 compiles to just col1
			v := api.Sub(api.Add(local[0], local[1]), local[0])
			api.Send(air.Interaction{
				Values:       []air.Variable{v},
				Multiplicity: api.One(),
				Kind:         lookup.KindRange,
			})
		},
	})
	vc := chip.Sends()[0].Values[0]
	require.Len(t, vc.Terms, 1)
	require.Equal(t, 1, vc.Terms[0].Column)
}

func TestCompileRejectsNonAffineValue(t *testing.T) {
	require.Panics(t, func() {
		NewChip(&evalChip{
			name:  "Toy",
			width: 2,
			eval: func(api air.API) {
				local := api.Main().Local
				api.Send(air.Interaction{
					Values:       []air.Variable{api.Mul(local[0], local[1])},
					Multiplicity: api.One(),
					Kind:         lookup.KindRange,
				})
			},
		})
	})
}

func TestCompileRejectsNextRowValue(t *testing.T) {
	require.Panics(t, func() {
		NewChip(&evalChip{
			name:  "Toy",
			width: 2,
			eval: func(api air.API) {
				api.Send(air.Interaction{
					Values:       []air.Variable{api.Main().Next[0]},
					Multiplicity: api.One(),
					Kind:         lookup.KindRange,
				})
			},
		})
	})
}

func TestCompileIgnoresAssertions(t *testing.T) {
	// non-affine and next-row expressions are fine inside assertions; only
	// interactions are restricted
	require.NotPanics(t, func() {
		NewChip(&evalChip{
			name:  "Toy",
			width: 2,
			eval: func(api air.API) {
				main := api.Main()
				api.AssertIsZero(api.Mul(main.Local[0], main.Local[1]))
				api.When(main.Local[0]).AssertIsEqual(main.Next[1], main.Local[1])
				api.AssertIsBoolean(api.IsFirstRow())
			},
		})
	})
}

func TestNewPanicsOnDuplicateChipNames(t *testing.T) {
	noop := func(api air.API) {}
	require.Panics(t, func() {
		New([]air.Chip{
			&evalChip{name: "Toy", width: 1, eval: noop},
			&evalChip{name: "Toy", width: 1, eval: noop},
		})
	})
}

func elem(v uint64) fr.Element {
	var e fr.Element
	e.SetUint64(v)
	return e
}
