package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicy_Select(t *testing.T) {
	policy := DefaultPolicy()

	tests := []struct {
		name        string
		n           int
		granularity Granularity
		expected    Spec
		insufficent bool
	}{
		{name: "3 buckets é histórico insuficiente", n: 3, granularity: Weekly, insufficent: true},
		{name: "4 buckets usa somente nível", n: 4, granularity: Weekly, expected: Spec{Model: ModelSimpleLevel}},
		{name: "11 buckets ainda usa somente nível", n: 11, granularity: Weekly, expected: Spec{Model: ModelSimpleLevel}},
		{name: "12 buckets semanais ativam tendência", n: 12, granularity: Weekly, expected: Spec{Model: ModelTrendOnly, Trend: true}},
		{name: "51 buckets semanais não bastam para sazonalidade", n: 51, granularity: Weekly, expected: Spec{Model: ModelTrendOnly, Trend: true}},
		{
			name:        "52 buckets semanais ativam sazonalidade com período 52",
			n:           52,
			granularity: Weekly,
			expected:    Spec{Model: ModelTrendSeasonal, Trend: true, Seasonal: true, Period: 52},
		},
		{name: "23 meses usam tendência", n: 23, granularity: Monthly, expected: Spec{Model: ModelTrendOnly, Trend: true}},
		{
			name:        "24 meses ativam sazonalidade com período 12",
			n:           24,
			granularity: Monthly,
			expected:    Spec{Model: ModelTrendSeasonal, Trend: true, Seasonal: true, Period: 12},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := policy.Select(tt.n, tt.granularity)
			if tt.insufficent {
				assert.ErrorIs(t, err, ErrInsufficientHistory)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, spec)
		})
	}
}

func TestPolicy_SelectWithLowerMonthlyTrendThreshold(t *testing.T) {
	policy := DefaultPolicy()
	policy.Monthly.Trend = 6
	require.NoError(t, policy.Validate())

	spec, err := policy.Select(6, Monthly)
	require.NoError(t, err)
	assert.Equal(t, ModelTrendOnly, spec.Model)

	spec, err = policy.Select(6, Weekly)
	require.NoError(t, err)
	assert.Equal(t, ModelSimpleLevel, spec.Model)
}

func TestPolicy_MinimumHistoryIsFixed(t *testing.T) {
	policy := DefaultPolicy()
	policy.Weekly = Thresholds{Trend: MinHistory, Seasonal: 52}
	require.NoError(t, policy.Validate())

	_, err := policy.Select(MinHistory-1, Weekly)
	assert.ErrorIs(t, err, ErrInsufficientHistory)

	spec, err := policy.Select(MinHistory, Weekly)
	require.NoError(t, err)
	assert.Equal(t, ModelTrendOnly, spec.Model)
}

func TestPolicy_SelectInvalidGranularity(t *testing.T) {
	_, err := DefaultPolicy().Select(30, Granularity("yearly"))
	assert.ErrorIs(t, err, ErrInvalidGranularity)
}

func TestPolicy_Validate(t *testing.T) {
	assert.NoError(t, DefaultPolicy().Validate())

	trendBelowMinimum := DefaultPolicy()
	trendBelowMinimum.Weekly = Thresholds{Trend: 3, Seasonal: 52}
	assert.Error(t, trendBelowMinimum.Validate())

	inverted := DefaultPolicy()
	inverted.Weekly = Thresholds{Trend: 30, Seasonal: 20}
	assert.Error(t, inverted.Validate())

	noFullCycle := DefaultPolicy()
	noFullCycle.Monthly = Thresholds{Trend: 6, Seasonal: 10}
	assert.Error(t, noFullCycle.Validate())
}
