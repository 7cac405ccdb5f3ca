package air

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// WordSize is the number of byte limbs in a machine word.
const WordSize = 4

// Word is a 32-bit machine word as four little-endian byte limbs. Keeping
// words in limbs is what keeps addition constraints at bounded degree: a
// full 32-bit addition identity is not expressible as a low-degree
// polynomial over the field.
type Word[T any] [WordSize]T

// WordFromUint32 decomposes v into its byte limbs as field elements.
func WordFromUint32(v uint32) Word[fr.Element] {
	var w Word[fr.Element]
	for k := 0; k < WordSize; k++ {
		w[k].SetUint64(uint64(v >> (8 * k) & 0xff))
	}
	return w
}

// WordToUint32 recomposes a word whose limbs hold canonical byte values.
func WordToUint32(w Word[fr.Element]) uint32 {
	var out uint32
	for k := 0; k < WordSize; k++ {
		b := w[k].Bytes()
		out |= uint32(b[len(b)-1]) << (8 * k)
	}
	return out
}

// WordCompose returns the field recomposition Σ limb_k · 2^(8k). The result
// is affine in the limbs and therefore usable as an interaction value.
func WordCompose(api API, w Word[Variable]) Variable {
	acc := w[0]
	for k := 1; k < WordSize; k++ {
		acc = api.Add(acc, api.Mul(api.Constant(uint64(1)<<(8*k)), w[k]))
	}
	return acc
}
