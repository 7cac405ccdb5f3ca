package lookup

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Term is one weighted column reference of an affine combination.
type Term struct {
	Column int
	Coeff  fr.Element
}

// VirtualColumn is an affine combination of current-row columns plus a
// constant. Interaction values and multiplicities are compiled down to this
// form; anything of higher degree is rejected at compile time.
type VirtualColumn struct {
	Terms    []Term
	Constant fr.Element
}

// NewSingleColumn returns the virtual column selecting column col.
func NewSingleColumn(col int) VirtualColumn {
	var one fr.Element
	one.SetOne()
	return VirtualColumn{Terms: []Term{{Column: col, Coeff: one}}}
}

// NewConstantColumn returns the virtual column with constant value v.
func NewConstantColumn(v uint64) VirtualColumn {
	var c fr.Element
	c.SetUint64(v)
	return VirtualColumn{Constant: c}
}

// Apply evaluates the combination against a concrete row.
func (vc *VirtualColumn) Apply(row []fr.Element) fr.Element {
	res := vc.Constant
	var tmp fr.Element
	for _, t := range vc.Terms {
		tmp.Mul(&t.Coeff, &row[t.Column])
		res.Add(&res, &tmp)
	}
	return res
}
