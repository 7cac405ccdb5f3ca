package lookup

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"

	"github.com/consensys/starkair/trace"
)

func elem(v uint64) fr.Element {
	var e fr.Element
	e.SetUint64(v)
	return e
}

func TestVirtualColumnApply(t *testing.T) {
	row := []fr.Element{elem(3), elem(5), elem(7)}

	single := NewSingleColumn(1)
	sv := single.Apply(row)
	require.True(t, sv.Equal(&row[1]))

	constant := NewConstantColumn(42)
	v := constant.Apply(row)
	want := elem(42)
	require.True(t, v.Equal(&want))

	// 2·col0 + col2 + 1
	combo := VirtualColumn{
		Terms:    []Term{{Column: 0, Coeff: elem(2)}, {Column: 2, Coeff: elem(1)}},
		Constant: elem(1),
	}
	got := combo.Apply(row)
	want = elem(14)
	require.True(t, got.Equal(&want))
}

func TestArgumentIndexFollowsKind(t *testing.T) {
	it := NewInteraction([]VirtualColumn{NewSingleColumn(0)}, NewSingleColumn(1), KindByte)
	require.Equal(t, int(KindByte), it.ArgumentIndex)

	// a send and a receive on the same bus must fingerprint identically for
	// equal value tuples, whichever chip declared them
	other := NewInteraction([]VirtualColumn{NewSingleColumn(0)}, NewConstantColumn(1), KindByte)
	require.Equal(t, it.ArgumentIndex, other.ArgumentIndex)
}

func TestFingerprint(t *testing.T) {
	// values (col0, col1) on row (3, 5); alpha^idx = 9, beta = 2
	it := NewInteraction(
		[]VirtualColumn{NewSingleColumn(0), NewSingleColumn(1)},
		NewConstantColumn(1),
		KindALU,
	)
	row := []fr.Element{elem(3), elem(5)}
	alphaPow := elem(9)
	betaPows := []fr.Element{elem(1), elem(2)}

	got := it.Fingerprint(row, alphaPow, betaPows)
	want := elem(9 + 3 + 2*5)
	require.True(t, got.Equal(&want), "got %s", got.String())
}

// twoColumnTrace builds a matrix whose rows are (value, multiplicity) pairs.
func twoColumnTrace(t *testing.T, rows [][2]uint64) *trace.Matrix {
	t.Helper()
	m := trace.New(2, len(rows))
	m.FillRows(len(rows), func(i int, row []fr.Element) {
		row[0].SetUint64(rows[i][0])
		row[1].SetUint64(rows[i][1])
	})
	return m
}

func TestAccountantBalanced(t *testing.T) {
	send := NewInteraction([]VirtualColumn{NewSingleColumn(0)}, NewSingleColumn(1), KindByte)
	receive := NewInteraction([]VirtualColumn{NewSingleColumn(0)}, NewSingleColumn(1), KindByte)

	// sender emits fact 7 three times in one row; receivers consume it
	// across two rows
	senderTrace := twoColumnTrace(t, [][2]uint64{{7, 3}})
	receiverTrace := twoColumnTrace(t, [][2]uint64{{7, 1}, {7, 2}})

	a := NewAccountant()
	a.Record([]Interaction{send}, nil, senderTrace)
	a.Record(nil, []Interaction{receive}, receiverTrace)
	require.Empty(t, a.Imbalances())
}

func TestAccountantReportsNetMultiplicity(t *testing.T) {
	send := NewInteraction([]VirtualColumn{NewSingleColumn(0)}, NewSingleColumn(1), KindByte)
	receive := NewInteraction([]VirtualColumn{NewSingleColumn(0)}, NewSingleColumn(1), KindByte)

	senderTrace := twoColumnTrace(t, [][2]uint64{{7, 3}})
	receiverTrace := twoColumnTrace(t, [][2]uint64{{7, 1}})

	a := NewAccountant()
	a.Record([]Interaction{send}, nil, senderTrace)
	a.Record(nil, []Interaction{receive}, receiverTrace)

	imbalances := a.Imbalances()
	require.Len(t, imbalances, 1)
	require.Contains(t, imbalances[0], "Byte(7)")
	require.Contains(t, imbalances[0], "2")
}

func TestAccountantSeparatesKinds(t *testing.T) {
	send := NewInteraction([]VirtualColumn{NewSingleColumn(0)}, NewSingleColumn(1), KindByte)
	receive := NewInteraction([]VirtualColumn{NewSingleColumn(0)}, NewSingleColumn(1), KindALU)

	m := twoColumnTrace(t, [][2]uint64{{7, 1}})

	// same value tuple on different buses must not cancel
	a := NewAccountant()
	a.Record([]Interaction{send}, []Interaction{receive}, m)
	require.Len(t, a.Imbalances(), 2)
}

func TestAccountantIgnoresZeroMultiplicity(t *testing.T) {
	send := NewInteraction([]VirtualColumn{NewSingleColumn(0)}, NewSingleColumn(1), KindByte)

	// padding rows carry zero multiplicity
	m := twoColumnTrace(t, [][2]uint64{{7, 0}, {9, 0}})

	a := NewAccountant()
	a.Record([]Interaction{send}, nil, m)
	require.Empty(t, a.Imbalances())
}

func TestKindString(t *testing.T) {
	require.Equal(t, "Memory", KindMemory.String())
	require.Equal(t, "Byte", KindByte.String())
	require.Equal(t, "Global", KindGlobal.String())
}
