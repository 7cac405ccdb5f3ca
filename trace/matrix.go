// Package trace provides row-major matrices of field elements, one per chip.
//
// A matrix holds one row per event, zero-padded to a power of two height.
// Rows are filled in parallel over disjoint contiguous chunks; the result is
// bit-identical regardless of the number of tasks used to produce it.
package trace

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"golang.org/x/crypto/sha3"

	"github.com/consensys/starkair/internal/utils"
)

// Matrix is a row-major buffer of field elements with a power-of-two height.
type Matrix struct {
	width  int
	values []fr.Element
}

// New returns a zeroed matrix of the given width, with height the next power
// of two ≥ nbRows.
func New(width, nbRows int) *Matrix {
	if width <= 0 {
		panic("trace: width must be positive")
	}
	if nbRows < 0 {
		panic("trace: negative row count")
	}
	height := utils.NextPowerOfTwo(nbRows)
	return &Matrix{
		width:  width,
		values: make([]fr.Element, width*height),
	}
}

// Width returns the number of columns.
func (m *Matrix) Width() int {
	return m.width
}

// Height returns the number of rows; always a power of two.
func (m *Matrix) Height() int {
	return len(m.values) / m.width
}

// LogHeight returns log2 of the height.
func (m *Matrix) LogHeight() int {
	return utils.Log2Ceil(m.Height())
}

// Row returns the i-th row as a capacity-bounded subslice; writes through it
// mutate the matrix, but the view cannot grow into neighboring rows.
func (m *Matrix) Row(i int) []fr.Element {
	if i < 0 || i >= m.Height() {
		panic(fmt.Sprintf("trace: row %d out of range [0, %d)", i, m.Height()))
	}
	start := i * m.width
	end := start + m.width
	return m.values[start:end:end]
}

// FillRows calls fill for each row i in [0, nbRows), partitioning the rows
// into contiguous chunks processed in parallel. Each invocation owns its row
// subslice exclusively; fill must not touch shared state.
func (m *Matrix) FillRows(nbRows int, fill func(i int, row []fr.Element), nbTasks ...int) {
	if nbRows > m.Height() {
		panic(fmt.Sprintf("trace: fill of %d rows exceeds height %d", nbRows, m.Height()))
	}
	utils.Parallelize(nbRows, func(start, end int) {
		for i := start; i < end; i++ {
			fill(i, m.Row(i))
		}
	}, nbTasks...)
}

// Values returns the backing row-major slice.
func (m *Matrix) Values() []fr.Element {
	return m.values
}

// Digest returns the sha3-256 hash of the canonical big-endian encoding of the
// matrix, suitable for binding into a Fiat-Shamir transcript in place of a
// polynomial commitment.
func (m *Matrix) Digest() [32]byte {
	h := sha3.New256()
	var header [16]byte
	writeUint64(header[:8], uint64(m.width))
	writeUint64(header[8:], uint64(m.Height()))
	h.Write(header[:])
	for i := range m.values {
		b := m.values[i].Bytes()
		h.Write(b[:])
	}
	var out [32]byte
	h.Sum(out[:0])
	return out
}

// Equal reports whether two matrices have identical shape and content.
func (m *Matrix) Equal(other *Matrix) bool {
	if m.width != other.width || len(m.values) != len(other.values) {
		return false
	}
	for i := range m.values {
		if !m.values[i].Equal(&other.values[i]) {
			return false
		}
	}
	return true
}

func writeUint64(dst []byte, v uint64) {
	for i := 0; i < 8; i++ {
		dst[i] = byte(v >> (56 - 8*i))
	}
}
