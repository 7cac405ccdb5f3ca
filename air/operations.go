package air

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/consensys/starkair/executor"
	"github.com/consensys/starkair/lookup"
)

// AddOperation is the shared witness layout for a 32-bit addition: the
// resulting word plus one ripple-carry bit per limb boundary. The carry out
// of the last limb absorbs the mod-2^32 overflow.
type AddOperation[T any] struct {
	Value Word[T]
	Carry [WordSize]T
}

// PopulateAdd fills the witness for x + y (mod 2^32), records the byte-range
// facts of the result limbs, and returns the sum.
func PopulateAdd(op *AddOperation[fr.Element], x, y uint32, blu executor.ByteRecord) uint32 {
	var carry uint32
	for k := 0; k < WordSize; k++ {
		limbSum := x>>(8*k)&0xff + y>>(8*k)&0xff + carry
		carry = limbSum >> 8
		op.Carry[k].SetUint64(uint64(carry))
		limb := uint8(limbSum)
		op.Value[k].SetUint64(uint64(limb))
		blu.AddByteLookupEvent(executor.ByteRangeEvent(limb))
	}
	return x + y
}

// EvalAdd asserts op.Value = x + y limb-wise with ripple carries, filtered
// by cond, and delegates the byte-range facts of the result limbs to the
// byte oracle with multiplicity cond. cond must be affine (typically
// is_real) so padding rows contribute no lookups.
func EvalAdd(api API, x, y Word[Variable], op AddOperation[Variable], cond Variable) {
	base := api.Constant(256)
	carryIn := api.Zero()
	for k := 0; k < WordSize; k++ {
		limbSum := api.Add(x[k], y[k], carryIn)
		api.When(cond).AssertIsEqual(limbSum, api.Add(op.Value[k], api.Mul(base, op.Carry[k])))
		api.AssertIsBoolean(op.Carry[k])
		carryIn = op.Carry[k]
	}
	for k := 0; k < WordSize; k++ {
		api.Receive(Interaction{
			Values:       []Variable{api.Constant(uint64(executor.ByteOpU8Range)), op.Value[k], api.Zero(), api.Zero()},
			Multiplicity: cond,
			Kind:         lookup.KindByte,
		})
	}
}

// IsZeroOperation is the shared witness layout for an inverse-based zero
// test: Result = 1 iff the probed value is zero. The identities
// cond·(Result − 1 + x·Inverse) = 0 and cond·x·Result = 0 pin Result
// without branching.
type IsZeroOperation[T any] struct {
	Inverse T
	Result  T
}

// PopulateIsZero fills the witness for probing x.
func PopulateIsZero(op *IsZeroOperation[fr.Element], x fr.Element) {
	if x.IsZero() {
		op.Inverse.SetZero()
		op.Result.SetOne()
		return
	}
	op.Inverse.Inverse(&x)
	op.Result.SetZero()
}

// EvalIsZero asserts op.Result = (x == 0), filtered by cond.
func EvalIsZero(api API, x Variable, op IsZeroOperation[Variable], cond Variable) {
	api.When(cond).AssertIsZero(api.Sub(api.Add(op.Result, api.Mul(x, op.Inverse)), api.One()))
	api.When(cond).AssertIsZero(api.Mul(x, op.Result))
	api.AssertIsBoolean(op.Result)
}
