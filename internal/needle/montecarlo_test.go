package needle

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunMonteCarloRejectsNonPositiveTrials(t *testing.T) {
	_, err := RunMonteCarlo(SimParams{Config: DefaultConfig(), Trials: 0}, nil, nil)
	require.ErrorIs(t, err, ErrInvalidTrials)

	_, err = RunMonteCarlo(SimParams{Config: DefaultConfig(), Trials: -5}, nil, nil)
	require.ErrorIs(t, err, ErrInvalidTrials)
}

func TestRunMonteCarloRejectsBadConfig(t *testing.T) {
	_, err := RunMonteCarlo(SimParams{Config: Config{LineDistance: -1, NeedleLength: 1, CenterXRange: 1}, Trials: 10}, nil, nil)
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = RunMonteCarlo(SimParams{Config: DefaultConfig(), Method: "bogus", Trials: 10}, nil, nil)
	require.ErrorIs(t, err, ErrUnknownMethod)
}

func TestRunMonteCarloReplicates(t *testing.T) {
	calls := 0
	sum, err := RunMonteCarlo(SimParams{
		Config:     DefaultConfig(),
		Method:     MethodNearest,
		Trials:     20000,
		Replicates: 5,
	}, NewSeededRNG(3), func() { calls++ })
	require.NoError(t, err)

	require.Equal(t, 100000, calls)
	require.EqualValues(t, 100000, sum.Stats.Total)
	require.LessOrEqual(t, sum.Stats.Crossed, sum.Stats.Total)
	require.InDelta(t, 1/math.Pi, sum.Probability, 1e-12)
	require.Len(t, sum.Estimates.Samples, 5)
	require.InDelta(t, math.Pi, sum.Estimates.Mean, 0.15)
	require.LessOrEqual(t, sum.Estimates.P50, sum.Estimates.P90)
	require.LessOrEqual(t, sum.Estimates.P90, sum.Estimates.P99)
}

func TestRunMonteCarloDefaultsToOneReplicate(t *testing.T) {
	sum, err := RunMonteCarlo(SimParams{Config: DefaultConfig(), Trials: 100}, NewSeededRNG(1), nil)
	require.NoError(t, err)
	require.EqualValues(t, 100, sum.Stats.Total)
	require.LessOrEqual(t, len(sum.Estimates.Samples), 1)
}

func TestCalcEstimates(t *testing.T) {
	e := calcEstimates([]float64{4, 2, math.NaN(), 3, 1})
	require.Len(t, e.Samples, 4)
	require.Equal(t, 2.5, e.Mean)
	require.Equal(t, 1.25, e.Var)
	require.Equal(t, 2.5, e.P50)
	require.InDelta(t, 3.7, e.P90, 1e-12)

	empty := calcEstimates([]float64{math.NaN()})
	require.True(t, math.IsNaN(empty.Mean))
}
