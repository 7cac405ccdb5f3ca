package machine

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	fiatshamir "github.com/consensys/gnark-crypto/fiat-shamir"
	"golang.org/x/crypto/sha3"

	"github.com/consensys/starkair/trace"
)

// DeriveChallenges derives the two permutation challenges (alpha, beta) from
// the main traces via Fiat-Shamir. In the full protocol the transcript binds
// polynomial commitments; here the commitment layer is external, so the
// digest of each committed trace stands in for its commitment. Traces are
// bound in chip order so any reordering or alteration changes the
// challenges. Alpha and beta are per-proof values: callers thread them
// explicitly into permutation generation and constraint checks.
func (m *Machine) DeriveChallenges(traces map[string]*trace.Matrix) (alpha, beta fr.Element, err error) {
	fs := fiatshamir.NewTranscript(sha3.New256(), "alpha", "beta")

	for _, c := range m.chips {
		t, ok := traces[c.Name()]
		if !ok {
			continue
		}
		digest := t.Digest()
		if err = fs.Bind("alpha", digest[:]); err != nil {
			return alpha, beta, fmt.Errorf("binding %s trace: %w", c.Name(), err)
		}
		if err = fs.Bind("beta", digest[:]); err != nil {
			return alpha, beta, fmt.Errorf("binding %s trace: %w", c.Name(), err)
		}
	}

	bAlpha, err := fs.ComputeChallenge("alpha")
	if err != nil {
		return alpha, beta, err
	}
	alpha.SetBytes(bAlpha)

	bBeta, err := fs.ComputeChallenge("beta")
	if err != nil {
		return alpha, beta, err
	}
	beta.SetBytes(bBeta)

	return alpha, beta, nil
}
