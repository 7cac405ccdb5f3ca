package machine

import (
	"fmt"
	"runtime"
	"time"

	"github.com/bits-and-blooms/bitset"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/consensys/starkair/air"
	"github.com/consensys/starkair/executor"
	"github.com/consensys/starkair/logger"
	"github.com/consensys/starkair/trace"
)

// Machine is an ordered set of chips proved together. Chips never see each
// other; the only cross-chip obligation is that, per interaction kind, the
// multiplicity-weighted sends and receives over the whole machine balance.
type Machine struct {
	chips   []*Chip
	nbTasks int
	log     zerolog.Logger
}

// Option configures a machine.
type Option func(*Machine)

// WithNbTasks sets the parallelism degree used for trace and permutation
// generation. The output is bit-identical for any value.
func WithNbTasks(n int) Option {
	return func(m *Machine) {
		if n > 0 {
			m.nbTasks = n
		}
	}
}

// WithLogger overrides the machine's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Machine) { m.log = l }
}

// New builds a machine from the given chips, compiling each chip's
// interactions. Chip names must be unique.
func New(chips []air.Chip, opts ...Option) *Machine {
	m := &Machine{
		nbTasks: runtime.NumCPU(),
		log:     logger.Logger().With().Str("component", "machine").Logger(),
	}
	seen := make(map[string]struct{}, len(chips))
	for _, a := range chips {
		if _, dup := seen[a.Name()]; dup {
			panic(fmt.Sprintf("duplicate chip name %q", a.Name()))
		}
		seen[a.Name()] = struct{}{}
		c := NewChip(a)
		m.chips = append(m.chips, c)
		m.log.Debug().Str("chip", c.Name()).
			Int("width", c.Width()).
			Int("sends", len(c.sends)).
			Int("receives", len(c.receives)).
			Msg("compiled chip interactions")
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Chips returns the machine's chips in proving order.
func (m *Machine) Chips() []*Chip { return m.chips }

// NbTasks returns the configured parallelism degree.
func (m *Machine) NbTasks() int { return m.nbTasks }

// IncludedChips returns the mask of chips that have work in the shard.
func (m *Machine) IncludedChips(record *executor.Record) *bitset.BitSet {
	included := bitset.New(uint(len(m.chips)))
	for i, c := range m.chips {
		if c.Included(record) {
			included.Set(uint(i))
		}
	}
	return included
}

// GenerateDependencies runs every included chip's dependency pass against
// the record, appending synthetic events to out. Chips aggregate internally
// in parallel; the merges into out are commutative multiplicity sums, so
// the serial combination order never shows in the result.
func (m *Machine) GenerateDependencies(record, out *executor.Record) {
	start := time.Now()
	included := m.IncludedChips(record)
	for i, c := range m.chips {
		if included.Test(uint(i)) {
			c.GenerateDependencies(record, out)
		}
	}
	m.log.Debug().Dur("took", time.Since(start)).
		Int("byteLookups", len(out.ByteLookups)).
		Msg("generated dependencies")
}

// GenerateTraces builds the main trace of every included chip, one chip per
// goroutine. Returns the traces keyed by chip name.
func (m *Machine) GenerateTraces(record *executor.Record) (map[string]*trace.Matrix, error) {
	start := time.Now()
	included := m.IncludedChips(record)
	traces := make([]*trace.Matrix, len(m.chips))

	var g errgroup.Group
	for i, c := range m.chips {
		if !included.Test(uint(i)) {
			continue
		}
		g.Go(func() error {
			out := executor.NewRecord(record.Shard)
			traces[i] = c.GenerateTrace(record, out)
			if w := traces[i].Width(); w != c.Width() {
				return fmt.Errorf("chip %s produced a trace of width %d, declared %d", c.Name(), w, c.Width())
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]*trace.Matrix, included.Count())
	for i, c := range m.chips {
		if traces[i] != nil {
			out[c.Name()] = traces[i]
			m.log.Trace().Str("chip", c.Name()).
				Int("logHeight", traces[i].LogHeight()).
				Msg("main trace")
		}
	}
	m.log.Debug().Dur("took", time.Since(start)).
		Int("chips", len(out)).
		Msg("generated main traces")
	return out, nil
}
