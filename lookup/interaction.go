package lookup

import (
	"strings"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Interaction is one compiled send or receive: an ordered tuple of affine
// value columns, an affine multiplicity, and the bus kind. ArgumentIndex is
// the bus discriminant folded into the fingerprint: a matching send and
// receive share it, while interactions on different buses fingerprint
// differently even when their value tuples coincide.
type Interaction struct {
	Values        []VirtualColumn
	Multiplicity  VirtualColumn
	Kind          Kind
	ArgumentIndex int
}

// NewInteraction returns the interaction with the argument index derived
// from the kind.
func NewInteraction(values []VirtualColumn, multiplicity VirtualColumn, kind Kind) Interaction {
	return Interaction{
		Values:        values,
		Multiplicity:  multiplicity,
		Kind:          kind,
		ArgumentIndex: int(kind),
	}
}

// ApplyValues evaluates every value column against a concrete row.
func (it *Interaction) ApplyValues(row []fr.Element) []fr.Element {
	out := make([]fr.Element, len(it.Values))
	for i := range it.Values {
		out[i] = it.Values[i].Apply(row)
	}
	return out
}

// Fingerprint computes the random linear combination of the interaction on
// the given row:
//
//	alpha^ArgumentIndex + Σ_k beta^k · value_k(row)
//
// alphaPow must be alpha^ArgumentIndex and betaPows the powers of beta, of
// length ≥ len(Values).
func (it *Interaction) Fingerprint(row []fr.Element, alphaPow fr.Element, betaPows []fr.Element) fr.Element {
	res := alphaPow
	var v, tmp fr.Element
	for k := range it.Values {
		v = it.Values[k].Apply(row)
		tmp.Mul(&betaPows[k], &v)
		res.Add(&res, &tmp)
	}
	return res
}

// key returns a canonical string for the (kind, value tuple) of the
// interaction evaluated on a row, used by the reference balance accounting.
func key(kind Kind, values []fr.Element) string {
	var sb strings.Builder
	sb.WriteString(kind.String())
	sb.WriteByte('(')
	for i := range values {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(values[i].String())
	}
	sb.WriteByte(')')
	return sb.String()
}
