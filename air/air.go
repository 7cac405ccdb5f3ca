// Package air defines the chip contract: how an event log becomes a
// constrained trace table. A chip turns its events into rows of field
// elements, and declares — through a builder API — the per-row polynomial
// identities and the cross-table interactions that bind it to the rest of
// the machine.
package air

import (
	"github.com/consensys/starkair/executor"
	"github.com/consensys/starkair/lookup"
	"github.com/consensys/starkair/trace"
)

// Variable is an opaque value manipulated through an [API]. Its concrete
// representation depends on the builder evaluating the chip: a symbolic
// affine expression when compiling interactions, a field element when
// checking constraints against a concrete trace.
type Variable interface{}

// TraceWindow exposes the two consecutive rows a constraint may reference.
type TraceWindow struct {
	Local []Variable
	Next  []Variable
}

// Interaction is a declared cross-table fact: an ordered value tuple, a
// multiplicity, and the bus it travels on. Values and multiplicity must be
// affine in the current row's columns.
type Interaction struct {
	Values       []Variable
	Multiplicity Variable
	Kind         lookup.Kind
}

// API is the builder interface a chip's Eval runs against. All assertions
// are zero-valued algebraic identities; there are no branches and no
// fallible paths. Misuse (e.g. a non-affine interaction value) panics.
type API interface {
	// Main returns the current and next row views.
	Main() TraceWindow

	Add(a, b Variable, in ...Variable) Variable
	Sub(a, b Variable) Variable
	Mul(a, b Variable, in ...Variable) Variable
	Neg(a Variable) Variable

	Constant(v uint64) Variable
	One() Variable
	Zero() Variable

	// IsFirstRow, IsLastRow and IsTransition evaluate to 1 on the rows they
	// name and 0 elsewhere; IsTransition covers every row but the last.
	IsFirstRow() Variable
	IsLastRow() Variable
	IsTransition() Variable

	AssertIsZero(a Variable)
	AssertIsEqual(a, b Variable)
	// AssertIsBoolean asserts a·(a−1) = 0.
	AssertIsBoolean(a Variable)

	// When returns an API whose assertions hold only where cond is nonzero,
	// i.e. every asserted identity is multiplied by cond.
	When(cond Variable) API

	Send(in Interaction)
	Receive(in Interaction)
}

// Chip is one table of the machine: it proves one class of operation.
type Chip interface {
	// Name identifies the chip within a machine; must be unique.
	Name() string

	// Width returns the number of main trace columns.
	Width() int

	// GenerateTrace builds the main trace from the record's events: one row
	// per event, zero-padded to a power of two. It must be deterministic
	// regardless of internal parallelism, and must not read out.
	GenerateTrace(record *executor.Record, out *executor.Record) *trace.Matrix

	// Eval declares every per-row identity and interaction of the chip. It
	// runs once per builder, never per row.
	Eval(api API)

	// Included reports whether the chip has work in the given shard.
	Included(record *executor.Record) bool
}

// DependencyGenerator is implemented by chips whose rows imply synthetic
// events consumed by other chips in the same shard (e.g. byte-range facts
// serviced by the byte oracle).
type DependencyGenerator interface {
	GenerateDependencies(record *executor.Record, out *executor.Record)
}
