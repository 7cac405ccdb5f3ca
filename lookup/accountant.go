package lookup

import (
	"sort"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/consensys/starkair/trace"
)

// Accountant is a reference balance checker. It walks concrete traces,
// evaluates every interaction's value tuple and multiplicity per row, and
// accumulates the net multiplicity of each distinct (kind, value tuple) fact.
// A balanced machine nets to zero everywhere. It is quadratic in spirit and
// used only by tests and the debug harness, never by the proving path.
type Accountant struct {
	counts map[string]fr.Element
}

// NewAccountant returns an empty accountant.
func NewAccountant() *Accountant {
	return &Accountant{counts: make(map[string]fr.Element)}
}

// Record accumulates the sends (positively) and receives (negatively) of one
// chip over every row of its main trace. Rows with zero multiplicity
// contribute nothing.
func (a *Accountant) Record(sends, receives []Interaction, m *trace.Matrix) {
	for i := 0; i < m.Height(); i++ {
		row := m.Row(i)
		for j := range sends {
			a.add(&sends[j], row, false)
		}
		for j := range receives {
			a.add(&receives[j], row, true)
		}
	}
}

func (a *Accountant) add(it *Interaction, row []fr.Element, negate bool) {
	mult := it.Multiplicity.Apply(row)
	if mult.IsZero() {
		return
	}
	if negate {
		mult.Neg(&mult)
	}
	k := key(it.Kind, it.ApplyValues(row))
	c := a.counts[k]
	c.Add(&c, &mult)
	if c.IsZero() {
		delete(a.counts, k)
		return
	}
	a.counts[k] = c
}

// Imbalances returns the facts whose net multiplicity is nonzero, sorted, as
// "kind(v0,...) -> net" strings. Empty means every bus balances.
func (a *Accountant) Imbalances() []string {
	out := make([]string, 0, len(a.counts))
	for k, c := range a.counts {
		out = append(out, k+" -> "+c.String())
	}
	sort.Strings(out)
	return out
}
