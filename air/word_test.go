package air

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

func TestWordFromUint32Limbs(t *testing.T) {
	w := WordFromUint32(0x0a0b0c0d)
	for k, limb := range []uint64{0x0d, 0x0c, 0x0b, 0x0a} {
		var want fr.Element
		want.SetUint64(limb)
		require.True(t, w[k].Equal(&want), "limb %d", k)
	}
}

func TestWordRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)
	properties.Property("decompose then recompose is identity", prop.ForAll(
		func(v uint32) bool {
			return WordToUint32(WordFromUint32(v)) == v
		},
		gen.UInt32(),
	))
	properties.TestingRun(t)
}
