package machine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/consensys/starkair/air"
	"github.com/consensys/starkair/executor"
)

func TestDeriveChallengesDeterministic(t *testing.T) {
	m := New([]air.Chip{
		busChip("Sender", true, [][]uint64{{7, 3}}),
		busChip("Receiver", false, [][]uint64{{7, 3}}),
	})
	traces, err := m.GenerateTraces(executor.NewRecord(0))
	require.NoError(t, err)

	alpha1, beta1, err := m.DeriveChallenges(traces)
	require.NoError(t, err)
	alpha2, beta2, err := m.DeriveChallenges(traces)
	require.NoError(t, err)

	require.True(t, alpha1.Equal(&alpha2))
	require.True(t, beta1.Equal(&beta2))
	require.False(t, alpha1.IsZero())
	require.False(t, alpha1.Equal(&beta1))
}

func TestDeriveChallengesBindTraceContent(t *testing.T) {
	m := New([]air.Chip{busChip("Sender", true, [][]uint64{{7, 3}})})
	traces, err := m.GenerateTraces(executor.NewRecord(0))
	require.NoError(t, err)

	alpha1, _, err := m.DeriveChallenges(traces)
	require.NoError(t, err)

	// any altered cell must yield different challenges
	traces["Sender"].Row(0)[0].SetUint64(8)
	alpha2, _, err := m.DeriveChallenges(traces)
	require.NoError(t, err)
	require.False(t, alpha1.Equal(&alpha2))
}

func TestDeriveChallengesSkipAbsentChips(t *testing.T) {
	m := New([]air.Chip{
		busChip("Sender", true, [][]uint64{{7, 3}}),
		busChip("Receiver", false, nil),
	})
	// the receiver has no rows, so no trace; challenges still derive
	traces, err := m.GenerateTraces(executor.NewRecord(0))
	require.NoError(t, err)
	require.Len(t, traces, 1)

	_, _, err = m.DeriveChallenges(traces)
	require.NoError(t, err)
}
