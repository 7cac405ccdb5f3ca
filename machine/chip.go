// Package machine binds chips into one globally consistent proof: it
// compiles each chip's interactions, generates traces, derives the
// permutation (LogUp) argument tying every send to its receives, and hosts
// the debug harness that re-checks every constraint over concrete values.
package machine

import (
	"github.com/consensys/starkair/air"
	"github.com/consensys/starkair/executor"
	"github.com/consensys/starkair/lookup"
	"github.com/consensys/starkair/trace"
)

// Chip wraps an air.Chip with its compiled interactions. Construction runs
// the chip's Eval once against the symbolic builder and caches the result;
// the underlying Eval is re-run only by the debug harness and the verifier.
type Chip struct {
	inner    air.Chip
	sends    []lookup.Interaction
	receives []lookup.Interaction
}

// NewChip compiles the chip's interactions.
func NewChip(a air.Chip) *Chip {
	b := newInteractionBuilder(a.Width())
	a.Eval(b)
	return &Chip{
		inner:    a,
		sends:    b.sends,
		receives: b.receives,
	}
}

// Name returns the underlying chip's name.
func (c *Chip) Name() string { return c.inner.Name() }

// Width returns the main trace width.
func (c *Chip) Width() int { return c.inner.Width() }

// Inner returns the wrapped chip.
func (c *Chip) Inner() air.Chip { return c.inner }

// Sends returns the compiled send interactions.
func (c *Chip) Sends() []lookup.Interaction { return c.sends }

// Receives returns the compiled receive interactions.
func (c *Chip) Receives() []lookup.Interaction { return c.receives }

// NumInteractions returns the number of declared interactions.
func (c *Chip) NumInteractions() int { return len(c.sends) + len(c.receives) }

// PermutationWidth returns the width of the chip's permutation trace: one
// column per interaction plus the running sum.
func (c *Chip) PermutationWidth() int {
	if c.NumInteractions() == 0 {
		return 0
	}
	return c.NumInteractions() + 1
}

// GenerateTrace forwards to the underlying chip.
func (c *Chip) GenerateTrace(record *executor.Record, out *executor.Record) *trace.Matrix {
	return c.inner.GenerateTrace(record, out)
}

// GenerateDependencies runs the chip's dependency pass, if it has one.
func (c *Chip) GenerateDependencies(record *executor.Record, out *executor.Record) {
	if dep, ok := c.inner.(air.DependencyGenerator); ok {
		dep.GenerateDependencies(record, out)
	}
}

// Included forwards to the underlying chip.
func (c *Chip) Included(record *executor.Record) bool { return c.inner.Included(record) }

// Eval forwards to the underlying chip.
func (c *Chip) Eval(api air.API) { c.inner.Eval(api) }
