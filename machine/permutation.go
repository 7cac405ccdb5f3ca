package machine

import (
	"math/big"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/consensys/starkair/internal/utils"
	"github.com/consensys/starkair/lookup"
	"github.com/consensys/starkair/trace"
)

// GeneratePermutationTrace builds the chip's auxiliary LogUp trace from its
// main trace and the two Fiat-Shamir challenges, and returns it together
// with the chip's cumulative sum (the running sum at the last row).
//
// Layout: one column per interaction, sends first, then receives, then the
// running sum φ. Column j of row i holds the reciprocal of the interaction's
// fingerprint
//
//	alpha^argumentIndex + Σ_k beta^k · value_k(row i)
//
// and φ accumulates the signed, multiplicity-weighted reciprocals:
//
//	φ[i] = φ[i-1] + Σ_sends mult·recip − Σ_receives mult·recip.
//
// Soundness rests on fingerprint collisions being negligible over the field;
// no structural guard excludes them. A true zero fingerprint (possible only
// by such a collision) is left uninverted by the batch inversion.
func GeneratePermutationTrace(chip *Chip, main *trace.Matrix, alpha, beta fr.Element, nbTasks ...int) (*trace.Matrix, fr.Element) {
	var cumulative fr.Element
	n := chip.NumInteractions()
	if n == 0 {
		return nil, cumulative
	}
	height := main.Height()
	perm := trace.New(n+1, height)

	interactions := make([]lookup.Interaction, 0, n)
	interactions = append(interactions, chip.sends...)
	interactions = append(interactions, chip.receives...)

	alphaPows := make([]fr.Element, n)
	maxValues := 0
	for j, it := range interactions {
		alphaPows[j].Exp(alpha, big.NewInt(int64(it.ArgumentIndex)))
		maxValues = max(maxValues, len(it.Values))
	}
	betaPows := powers(beta, maxValues)

	// fingerprints, reciprocals and per-row signed sums, in disjoint row
	// chunks
	utils.Parallelize(height, func(start, end int) {
		scratch := make([]fr.Element, 0, (end-start)*n)
		for i := start; i < end; i++ {
			row := main.Row(i)
			for j := range interactions {
				scratch = append(scratch, interactions[j].Fingerprint(row, alphaPows[j], betaPows))
			}
		}
		inverted := fr.BatchInvert(scratch)
		var tmp, rowSum fr.Element
		for i := start; i < end; i++ {
			row := main.Row(i)
			permRow := perm.Row(i)
			copy(permRow[:n], inverted[(i-start)*n:(i-start+1)*n])
			rowSum.SetZero()
			for j := range interactions {
				mult := interactions[j].Multiplicity.Apply(row)
				if j >= len(chip.sends) {
					mult.Neg(&mult)
				}
				tmp.Mul(&mult, &permRow[j])
				rowSum.Add(&rowSum, &tmp)
			}
			permRow[n] = rowSum
		}
	}, nbTasks...)

	// running sum: a single sequential prefix pass over the last column
	for i := 1; i < height; i++ {
		prev := perm.Row(i - 1)[n]
		perm.Row(i)[n].Add(&perm.Row(i)[n], &prev)
	}
	cumulative = perm.Row(height - 1)[n]
	return perm, cumulative
}

// GeneratePermutationTraces builds the permutation trace of every chip with
// a main trace, returning them and the per-chip cumulative sums keyed by
// chip name.
func (m *Machine) GeneratePermutationTraces(traces map[string]*trace.Matrix, alpha, beta fr.Element) (map[string]*trace.Matrix, map[string]fr.Element) {
	start := time.Now()
	perms := make(map[string]*trace.Matrix, len(traces))
	sums := make(map[string]fr.Element, len(traces))
	for _, c := range m.chips {
		main, ok := traces[c.Name()]
		if !ok {
			continue
		}
		perm, sum := GeneratePermutationTrace(c, main, alpha, beta, m.nbTasks)
		if perm != nil {
			perms[c.Name()] = perm
			sums[c.Name()] = sum
		}
	}
	m.log.Debug().Dur("took", time.Since(start)).
		Int("chips", len(perms)).
		Msg("generated permutation traces")
	return perms, sums
}

// CumulativeSumsCancel reports whether the per-chip cumulative sums add to
// the expected machine-wide target (zero for a self-balanced shard).
func CumulativeSumsCancel(sums map[string]fr.Element, target fr.Element) bool {
	var total fr.Element
	for _, s := range sums {
		total.Add(&total, &s)
	}
	return total.Equal(&target)
}

func powers(x fr.Element, n int) []fr.Element {
	out := make([]fr.Element, n)
	if n == 0 {
		return out
	}
	out[0].SetOne()
	for i := 1; i < n; i++ {
		out[i].Mul(&out[i-1], &x)
	}
	return out
}
