package machine

import (
	"fmt"
	"sort"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/consensys/starkair/air"
	"github.com/consensys/starkair/debug"
	"github.com/consensys/starkair/lookup"
)

// symExpr is the symbolic value flowing through a chip's Eval when compiling
// interactions. It tracks an affine combination of current-row columns for
// as long as the expression stays affine; anything beyond (products of
// columns, next-row references, row selectors) degrades to a non-affine
// marker, which is fine for assertions (ignored here) but rejected when
// used inside an interaction.
type symExpr struct {
	affine   bool
	terms    []lookup.Term // sorted by column, nonzero coefficients
	constant fr.Element
}

func symConst(v fr.Element) symExpr {
	return symExpr{affine: true, constant: v}
}

func symVar(col int) symExpr {
	var one fr.Element
	one.SetOne()
	return symExpr{affine: true, terms: []lookup.Term{{Column: col, Coeff: one}}}
}

var symOpaque = symExpr{}

func (e symExpr) isConstant() bool {
	return e.affine && len(e.terms) == 0
}

func symAdd(a, b symExpr) symExpr {
	if !a.affine || !b.affine {
		return symOpaque
	}
	out := symExpr{affine: true, terms: make([]lookup.Term, 0, len(a.terms)+len(b.terms))}
	out.constant.Add(&a.constant, &b.constant)
	out.terms = append(out.terms, a.terms...)
	for _, t := range b.terms {
		out.terms = append(out.terms, t)
	}
	return normalize(out)
}

func symNeg(a symExpr) symExpr {
	if !a.affine {
		return symOpaque
	}
	out := symExpr{affine: true, terms: make([]lookup.Term, len(a.terms))}
	out.constant.Neg(&a.constant)
	for i, t := range a.terms {
		out.terms[i] = t
		out.terms[i].Coeff.Neg(&t.Coeff)
	}
	return out
}

func symMul(a, b symExpr) symExpr {
	if !a.affine || !b.affine {
		return symOpaque
	}
	if !a.isConstant() && !b.isConstant() {
		// degree 2: legal in constraints, rejected later if it reaches an
		// interaction
		return symOpaque
	}
	scale, lin := a, b
	if !a.isConstant() {
		scale, lin = b, a
	}
	out := symExpr{affine: true, terms: make([]lookup.Term, len(lin.terms))}
	out.constant.Mul(&lin.constant, &scale.constant)
	for i, t := range lin.terms {
		out.terms[i] = t
		out.terms[i].Coeff.Mul(&t.Coeff, &scale.constant)
	}
	return normalize(out)
}

// normalize sorts terms by column and folds duplicates, dropping zero
// coefficients, so that equal expressions compile to equal virtual columns.
func normalize(e symExpr) symExpr {
	if len(e.terms) < 2 {
		if len(e.terms) == 1 && e.terms[0].Coeff.IsZero() {
			e.terms = nil
		}
		return e
	}
	sort.Slice(e.terms, func(i, j int) bool { return e.terms[i].Column < e.terms[j].Column })
	folded := e.terms[:0]
	for _, t := range e.terms {
		if n := len(folded); n > 0 && folded[n-1].Column == t.Column {
			folded[n-1].Coeff.Add(&folded[n-1].Coeff, &t.Coeff)
			continue
		}
		folded = append(folded, t)
	}
	out := folded[:0]
	for _, t := range folded {
		if !t.Coeff.IsZero() {
			out = append(out, t)
		}
	}
	e.terms = out
	return e
}

// interactionBuilder runs a chip's Eval symbolically, recording the declared
// sends and receives and ignoring assertions.
type interactionBuilder struct {
	width    int
	window   air.TraceWindow
	sends    []lookup.Interaction
	receives []lookup.Interaction
}

func newInteractionBuilder(width int) *interactionBuilder {
	b := &interactionBuilder{width: width}
	b.window.Local = make([]air.Variable, width)
	b.window.Next = make([]air.Variable, width)
	for i := 0; i < width; i++ {
		b.window.Local[i] = symVar(i)
		// next-row references are not affine in the current row
		b.window.Next[i] = symOpaque
	}
	return b
}

func (b *interactionBuilder) Main() air.TraceWindow { return b.window }

func (b *interactionBuilder) Add(a1, a2 air.Variable, in ...air.Variable) air.Variable {
	acc := symAdd(asSym(a1), asSym(a2))
	for _, v := range in {
		acc = symAdd(acc, asSym(v))
	}
	return acc
}

func (b *interactionBuilder) Sub(a1, a2 air.Variable) air.Variable {
	return symAdd(asSym(a1), symNeg(asSym(a2)))
}

func (b *interactionBuilder) Mul(a1, a2 air.Variable, in ...air.Variable) air.Variable {
	acc := symMul(asSym(a1), asSym(a2))
	for _, v := range in {
		acc = symMul(acc, asSym(v))
	}
	return acc
}

func (b *interactionBuilder) Neg(a air.Variable) air.Variable {
	return symNeg(asSym(a))
}

func (b *interactionBuilder) Constant(v uint64) air.Variable {
	var c fr.Element
	c.SetUint64(v)
	return symConst(c)
}

func (b *interactionBuilder) One() air.Variable {
	return b.Constant(1)
}

func (b *interactionBuilder) Zero() air.Variable {
	return b.Constant(0)
}

func (b *interactionBuilder) IsFirstRow() air.Variable   { return symOpaque }
func (b *interactionBuilder) IsLastRow() air.Variable    { return symOpaque }
func (b *interactionBuilder) IsTransition() air.Variable { return symOpaque }

func (b *interactionBuilder) AssertIsZero(air.Variable)       {}
func (b *interactionBuilder) AssertIsEqual(_, _ air.Variable) {}
func (b *interactionBuilder) AssertIsBoolean(air.Variable)    {}
func (b *interactionBuilder) When(air.Variable) air.API       { return b }

func (b *interactionBuilder) Send(in air.Interaction) {
	b.sends = append(b.sends, b.compile(in))
}

func (b *interactionBuilder) Receive(in air.Interaction) {
	b.receives = append(b.receives, b.compile(in))
}

func (b *interactionBuilder) compile(in air.Interaction) lookup.Interaction {
	values := make([]lookup.VirtualColumn, len(in.Values))
	for i, v := range in.Values {
		values[i] = b.toVirtualColumn(v, "value")
	}
	return lookup.NewInteraction(values, b.toVirtualColumn(in.Multiplicity, "multiplicity"), in.Kind)
}

func (b *interactionBuilder) toVirtualColumn(v air.Variable, what string) lookup.VirtualColumn {
	e := asSym(v)
	if !e.affine {
		panic(fmt.Sprintf("interaction %s is not an affine expression of the current row\n%s", what, debug.Stack()))
	}
	return lookup.VirtualColumn{Terms: e.terms, Constant: e.constant}
}

func asSym(v air.Variable) symExpr {
	e, ok := v.(symExpr)
	if !ok {
		panic(fmt.Sprintf("foreign variable of type %T in symbolic evaluation", v))
	}
	return e
}
