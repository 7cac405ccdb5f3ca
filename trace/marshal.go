package trace

import (
	"fmt"
	"io"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/fxamacker/cbor/v2"
)

// rawMatrix is the serialized form; Values holds the canonical big-endian
// encoding of each element, row-major.
type rawMatrix struct {
	Width  uint64 `cbor:"1,keyasint"`
	Height uint64 `cbor:"2,keyasint"`
	Values []byte `cbor:"3,keyasint"`
}

// WriteTo serializes the matrix in CBOR. It implements io.WriterTo.
func (m *Matrix) WriteTo(w io.Writer) (int64, error) {
	raw := rawMatrix{
		Width:  uint64(m.width),
		Height: uint64(m.Height()),
		Values: make([]byte, 0, len(m.values)*fr.Bytes),
	}
	for i := range m.values {
		b := m.values[i].Bytes()
		raw.Values = append(raw.Values, b[:]...)
	}
	enc, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return 0, err
	}
	buf, err := enc.Marshal(&raw)
	if err != nil {
		return 0, fmt.Errorf("serializing trace: %w", err)
	}
	n, err := w.Write(buf)
	return int64(n), err
}

// ReadFrom deserializes the matrix from CBOR. It implements io.ReaderFrom.
func (m *Matrix) ReadFrom(r io.Reader) (int64, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return int64(len(buf)), err
	}
	var raw rawMatrix
	if err := cbor.Unmarshal(buf, &raw); err != nil {
		return int64(len(buf)), fmt.Errorf("deserializing trace: %w", err)
	}
	if raw.Width == 0 {
		return int64(len(buf)), fmt.Errorf("deserializing trace: zero width")
	}
	if raw.Height == 0 || raw.Height&(raw.Height-1) != 0 {
		return int64(len(buf)), fmt.Errorf("deserializing trace: height %d is not a power of two", raw.Height)
	}
	// divide rather than multiply so oversized Width·Height pairs cannot wrap
	// around the length check
	nbValues := uint64(len(raw.Values)) / fr.Bytes
	if uint64(len(raw.Values))%fr.Bytes != 0 || nbValues%raw.Width != 0 || nbValues/raw.Width != raw.Height {
		return int64(len(buf)), fmt.Errorf("deserializing trace: %d value bytes for a %d×%d matrix", len(raw.Values), raw.Height, raw.Width)
	}
	m.width = int(raw.Width)
	m.values = make([]fr.Element, nbValues)
	for i := range m.values {
		m.values[i].SetBytes(raw.Values[i*fr.Bytes : (i+1)*fr.Bytes])
	}
	return int64(len(buf)), nil
}
