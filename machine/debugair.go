package machine

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/consensys/starkair/air"
	"github.com/consensys/starkair/debug"
	"github.com/consensys/starkair/executor"
	"github.com/consensys/starkair/internal/utils"
	"github.com/consensys/starkair/lookup"
	"github.com/consensys/starkair/trace"
)

var (
	// ErrConstraintViolated reports a per-row identity that does not hold
	// over concrete trace values.
	ErrConstraintViolated = errors.New("constraint violated")
	// ErrCumulativeSumMismatch reports permutation running sums that do not
	// reach their target.
	ErrCumulativeSumMismatch = errors.New("cumulative sum mismatch")
	// ErrImbalancedInteractions reports a bus whose sends and receives do
	// not cancel machine-wide.
	ErrImbalancedInteractions = errors.New("imbalanced interactions")
)

// debugBuilder evaluates a chip's constraints against one concrete row pair.
// Variables are field elements; assertions compare against zero and report
// the first violation. Interaction declarations are ignored here — balance
// is a machine-level property checked separately.
type debugBuilder struct {
	window       air.TraceWindow
	isFirstRow   fr.Element
	isLastRow    fr.Element
	isTransition fr.Element

	// filter is the product of the conditions of the enclosing When calls
	filter fr.Element

	fail func(msg string)
}

func newDebugBuilder(local, next []fr.Element, i, height int, fail func(msg string)) *debugBuilder {
	b := &debugBuilder{fail: fail}
	b.window.Local = make([]air.Variable, len(local))
	b.window.Next = make([]air.Variable, len(next))
	for k := range local {
		b.window.Local[k] = local[k]
	}
	for k := range next {
		b.window.Next[k] = next[k]
	}
	b.filter.SetOne()
	if i == 0 {
		b.isFirstRow.SetOne()
	}
	if i == height-1 {
		b.isLastRow.SetOne()
	} else {
		b.isTransition.SetOne()
	}
	return b
}

func (b *debugBuilder) Main() air.TraceWindow { return b.window }

func (b *debugBuilder) Add(a1, a2 air.Variable, in ...air.Variable) air.Variable {
	x, y := asElement(a1), asElement(a2)
	x.Add(&x, &y)
	for _, v := range in {
		y = asElement(v)
		x.Add(&x, &y)
	}
	return x
}

func (b *debugBuilder) Sub(a1, a2 air.Variable) air.Variable {
	x, y := asElement(a1), asElement(a2)
	x.Sub(&x, &y)
	return x
}

func (b *debugBuilder) Mul(a1, a2 air.Variable, in ...air.Variable) air.Variable {
	x, y := asElement(a1), asElement(a2)
	x.Mul(&x, &y)
	for _, v := range in {
		y = asElement(v)
		x.Mul(&x, &y)
	}
	return x
}

func (b *debugBuilder) Neg(a air.Variable) air.Variable {
	x := asElement(a)
	x.Neg(&x)
	return x
}

func (b *debugBuilder) Constant(v uint64) air.Variable {
	var c fr.Element
	c.SetUint64(v)
	return c
}

func (b *debugBuilder) One() air.Variable  { return b.Constant(1) }
func (b *debugBuilder) Zero() air.Variable { return b.Constant(0) }

func (b *debugBuilder) IsFirstRow() air.Variable   { return b.isFirstRow }
func (b *debugBuilder) IsLastRow() air.Variable    { return b.isLastRow }
func (b *debugBuilder) IsTransition() air.Variable { return b.isTransition }

func (b *debugBuilder) AssertIsZero(a air.Variable) {
	x := asElement(a)
	x.Mul(&x, &b.filter)
	if !x.IsZero() {
		b.fail(fmt.Sprintf("expected zero, got %s", x.String()))
	}
}

func (b *debugBuilder) AssertIsEqual(a1, a2 air.Variable) {
	b.AssertIsZero(b.Sub(a1, a2))
}

func (b *debugBuilder) AssertIsBoolean(a air.Variable) {
	x := asElement(a)
	var xm1 fr.Element
	xm1.SetOne()
	xm1.Sub(&x, &xm1)
	x.Mul(&x, &xm1)
	b.AssertIsZero(x)
}

func (b *debugBuilder) When(cond air.Variable) air.API {
	scoped := *b
	c := asElement(cond)
	scoped.filter.Mul(&b.filter, &c)
	return &scoped
}

func (b *debugBuilder) Send(air.Interaction)    {}
func (b *debugBuilder) Receive(air.Interaction) {}

func asElement(v air.Variable) fr.Element {
	e, ok := v.(fr.Element)
	if !ok {
		panic(fmt.Sprintf("foreign variable of type %T in concrete evaluation\n%s", v, debug.Stack()))
	}
	return e
}

// CheckConstraints re-evaluates the chip's Eval on every row of the main
// trace, including the wraparound pair last→first used by transition
// constraints, and returns ErrConstraintViolated (wrapped with the chip
// name, row index, and row contents) on the first violation.
func CheckConstraints(chip *Chip, main *trace.Matrix, nbTasks ...int) error {
	height := main.Height()
	var mu sync.Mutex
	failRow := -1
	failMsg := ""

	utils.Parallelize(height, func(start, end int) {
		for i := start; i < end; i++ {
			local := main.Row(i)
			next := main.Row((i + 1) % height)
			violated := ""
			b := newDebugBuilder(local, next, i, height, func(msg string) {
				if violated == "" {
					violated = msg
				}
			})
			chip.Eval(b)
			if violated != "" {
				mu.Lock()
				if failRow == -1 || i < failRow {
					failRow = i
					failMsg = violated
				}
				mu.Unlock()
				return
			}
		}
	}, nbTasks...)

	if failRow == -1 {
		return nil
	}
	return fmt.Errorf("%w: chip %s row %d: %s\nrow: %s",
		ErrConstraintViolated, chip.Name(), failRow, failMsg, formatRow(main.Row(failRow)))
}

// EvalPermutationConstraints checks the permutation trace against the main
// trace over concrete values: the reciprocal identity per interaction
// column, the running-sum transition, the first-row boundary, and the
// last-row cumulative target.
func EvalPermutationConstraints(chip *Chip, main, perm *trace.Matrix, alpha, beta fr.Element, target fr.Element) error {
	n := chip.NumInteractions()
	if n == 0 {
		return nil
	}
	if perm.Height() != main.Height() {
		return fmt.Errorf("chip %s: permutation height %d != main height %d", chip.Name(), perm.Height(), main.Height())
	}
	height := main.Height()

	interactions := make([]lookup.Interaction, 0, n)
	interactions = append(interactions, chip.sends...)
	interactions = append(interactions, chip.receives...)

	alphaPows := make([]fr.Element, n)
	maxValues := 0
	for j, it := range interactions {
		alphaPows[j].Exp(alpha, big.NewInt(int64(it.ArgumentIndex)))
		maxValues = max(maxValues, len(it.Values))
	}
	betaPows := powers(beta, maxValues)

	var one fr.Element
	one.SetOne()
	var prevPhi fr.Element
	for i := 0; i < height; i++ {
		row := main.Row(i)
		permRow := perm.Row(i)

		var rowSum, tmp fr.Element
		for j := range interactions {
			fingerprint := interactions[j].Fingerprint(row, alphaPows[j], betaPows)
			recip := permRow[j]
			// zero fingerprints appear only through a collision; their slot
			// is unused and stays uninverted
			if !(fingerprint.IsZero() && recip.IsZero()) {
				tmp.Mul(&fingerprint, &recip)
				if !tmp.Equal(&one) {
					return fmt.Errorf("%w: chip %s row %d interaction %d: fingerprint·reciprocal != 1",
						ErrConstraintViolated, chip.Name(), i, j)
				}
			}
			mult := interactions[j].Multiplicity.Apply(row)
			if j >= len(chip.sends) {
				mult.Neg(&mult)
			}
			tmp.Mul(&mult, &recip)
			rowSum.Add(&rowSum, &tmp)
		}

		phi := permRow[n]
		expected := rowSum
		if i > 0 {
			expected.Add(&expected, &prevPhi)
		}
		if !phi.Equal(&expected) {
			return fmt.Errorf("%w: chip %s row %d: running sum transition does not hold",
				ErrConstraintViolated, chip.Name(), i)
		}
		prevPhi = phi
	}

	if !prevPhi.Equal(&target) {
		return fmt.Errorf("%w: chip %s: φ[last] = %s, want %s",
			ErrCumulativeSumMismatch, chip.Name(), prevPhi.String(), target.String())
	}
	return nil
}

// CheckMachine validates a shard end to end before cryptographic proving:
// every included chip's per-row constraints, its permutation trace, the
// machine-wide cancellation of cumulative sums, and the reference per-kind
// balance accounting. Not part of the proving path; a failure is final.
func (m *Machine) CheckMachine(record *executor.Record, traces map[string]*trace.Matrix, alpha, beta fr.Element) error {
	perms, sums := m.GeneratePermutationTraces(traces, alpha, beta)

	accountant := lookup.NewAccountant()
	for _, c := range m.chips {
		main, ok := traces[c.Name()]
		if !ok {
			continue
		}
		if err := CheckConstraints(c, main, m.nbTasks); err != nil {
			return err
		}
		if perm, ok := perms[c.Name()]; ok {
			if err := EvalPermutationConstraints(c, main, perm, alpha, beta, sums[c.Name()]); err != nil {
				return err
			}
		}
		accountant.Record(c.sends, c.receives, main)
	}

	var zero fr.Element
	if !CumulativeSumsCancel(sums, zero) {
		return fmt.Errorf("%w: shard %d", ErrCumulativeSumMismatch, record.Shard)
	}
	if imbalances := accountant.Imbalances(); len(imbalances) > 0 {
		return fmt.Errorf("%w:\n%s", ErrImbalancedInteractions, strings.Join(imbalances, "\n"))
	}
	return nil
}

func formatRow(row []fr.Element) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i := range row {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(row[i].String())
	}
	sb.WriteByte(']')
	return sb.String()
}
