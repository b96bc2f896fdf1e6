package sentiment

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAnalyzePositive(t *testing.T) {
	score := Analyze("Bitcoin rallies to a record high, investors celebrate great gains")
	require.Equal(t, Positive, score.Label)
	require.Greater(t, score.Compound, compoundThreshold)
}

func TestAnalyzeNegative(t *testing.T) {
	score := Analyze("Terrible crash wipes out savings, panic and fear grip the market")
	require.Equal(t, Negative, score.Label)
	require.Less(t, score.Compound, -compoundThreshold)
}

func TestAnalyzeEmptyText(t *testing.T) {
	score := Analyze("   ")
	require.Equal(t, Neutral, score.Label)
	require.Zero(t, score.Compound)
}

func TestAnalyzeHeadlineJoinsParts(t *testing.T) {
	withDesc := AnalyzeHeadline("Exchange hacked", "Users report stolen funds and huge losses")
	titleOnly := AnalyzeHeadline("Exchange hacked", "")
	require.Equal(t, Negative, withDesc.Label)
	require.NotEqual(t, withDesc.Compound, titleOnly.Compound)
}

func TestLabelThresholds(t *testing.T) {
	require.Equal(t, Positive, labelFor(0.05))
	require.Equal(t, Negative, labelFor(-0.05))
	require.Equal(t, Neutral, labelFor(0.049))
	require.Equal(t, Neutral, labelFor(-0.049))
	require.Equal(t, Neutral, labelFor(0))
}

func TestAggregate(t *testing.T) {
	scores := []Score{
		{Compound: 0.6, Label: Positive},
		{Compound: 0.2, Label: Positive},
		{Compound: -0.4, Label: Negative},
		{Compound: 0.0, Label: Neutral},
	}
	dist := Aggregate(scores)
	require.Equal(t, 4, dist.Count)
	require.Equal(t, 2, dist.Positive)
	require.Equal(t, 1, dist.Negative)
	require.Equal(t, 1, dist.Neutral)
	require.InDelta(t, 0.1, dist.AverageCompound, 1e-9)
}

func TestAggregateEmpty(t *testing.T) {
	dist := Aggregate(nil)
	require.Zero(t, dist.Count)
	require.Zero(t, dist.AverageCompound)
}
