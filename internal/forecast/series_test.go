package forecast

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// segunda-feira
var baseMonday = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func weeklyObservations(start time.Time, values ...float64) []Observation {
	obs := make([]Observation, 0, len(values))
	for i, v := range values {
		if v == 0 {
			continue
		}
		// meio da semana para exercitar o alinhamento na segunda-feira
		obs = append(obs, Observation{Time: start.AddDate(0, 0, 7*i+2).Add(15 * time.Hour), Revenue: v})
	}
	return obs
}

func TestGranularity_BucketStart(t *testing.T) {
	tests := []struct {
		name        string
		granularity Granularity
		input       time.Time
		expected    time.Time
	}{
		{
			name:        "Domingo pertence à semana iniciada na segunda anterior",
			granularity: Weekly,
			input:       time.Date(2024, 1, 7, 23, 59, 0, 0, time.UTC),
			expected:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:        "Segunda-feira é o próprio início do bucket",
			granularity: Weekly,
			input:       time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC),
			expected:    time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC),
		},
		{
			name:        "Semana atravessando a virada do ano",
			granularity: Weekly,
			input:       time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC),
			expected:    time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC),
		},
		{
			name:        "Mês é ancorado no dia 1",
			granularity: Monthly,
			input:       time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC),
			expected:    time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:        "Data local usa o dia do calendário da própria zona",
			granularity: Monthly,
			input:       time.Date(2024, 3, 31, 22, 0, 0, 0, time.FixedZone("BRT", -3*3600)),
			expected:    time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.granularity.BucketStart(tt.input))
		})
	}
}

func TestParseGranularity(t *testing.T) {
	g, err := ParseGranularity(" Weekly ")
	require.NoError(t, err)
	assert.Equal(t, Weekly, g)

	g, err = ParseGranularity("monthly")
	require.NoError(t, err)
	assert.Equal(t, Monthly, g)

	_, err = ParseGranularity("daily")
	assert.ErrorIs(t, err, ErrInvalidGranularity)
}

func TestBuildSeries_WeeklyAggregatesAndFillsGaps(t *testing.T) {
	obs := []Observation{
		{Time: time.Date(2024, 1, 22, 9, 0, 0, 0, time.UTC), Revenue: 30},
		{Time: time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC), Revenue: 100},
		{Time: time.Date(2024, 1, 7, 18, 0, 0, 0, time.UTC), Revenue: 50},
		{Time: time.Date(2024, 1, 9, 9, 0, 0, 0, time.UTC), Revenue: 20},
	}

	series, err := BuildSeries(obs, Weekly)
	require.NoError(t, err)

	require.Equal(t, 4, series.Len())
	assert.Equal(t, []float64{150, 20, 0, 30}, series.Values())
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), series.Buckets[0].Start)
	assert.Equal(t, time.Date(2024, 1, 22, 0, 0, 0, 0, time.UTC), series.Last())
}

func TestBuildSeries_MonthlyFillsMissingMonths(t *testing.T) {
	obs := []Observation{
		{Time: time.Date(2023, 11, 30, 0, 0, 0, 0, time.UTC), Revenue: 10},
		{Time: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Revenue: 40},
	}

	series, err := BuildSeries(obs, Monthly)
	require.NoError(t, err)

	require.Equal(t, 4, series.Len())
	assert.Equal(t, []float64{10, 0, 0, 40}, series.Values())
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), series.Buckets[2].Start)
}

func TestBuildSeries_NoData(t *testing.T) {
	tests := []struct {
		name string
		obs  []Observation
	}{
		{name: "Sem observações", obs: nil},
		{name: "Somente receitas não positivas", obs: []Observation{
			{Time: baseMonday, Revenue: 0},
			{Time: baseMonday, Revenue: -25},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series, err := BuildSeries(tt.obs, Weekly)
			assert.ErrorIs(t, err, ErrNoData)
			assert.Equal(t, 0, series.Len())
		})
	}
}

func TestBuildSeries_InvalidGranularity(t *testing.T) {
	_, err := BuildSeries(weeklyObservations(baseMonday, 1, 2), Granularity("daily"))
	assert.ErrorIs(t, err, ErrInvalidGranularity)
}

func TestBuildSeries_OrderDoesNotMatter(t *testing.T) {
	obs := weeklyObservations(baseMonday, 10, 20, 0, 40, 50)
	reversed := make([]Observation, len(obs))
	for i := range obs {
		reversed[len(obs)-1-i] = obs[i]
	}

	a, err := BuildSeries(obs, Weekly)
	require.NoError(t, err)
	b, err := BuildSeries(reversed, Weekly)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestBuildSeries_SilentWeeksStayAsZeroBuckets(t *testing.T) {
	values := make([]float64, 20)
	for i := range values {
		values[i] = 500 + float64(i)
	}
	values[8], values[9], values[10] = 0, 0, 0

	series, err := BuildSeries(weeklyObservations(baseMonday, values...), Weekly)
	require.NoError(t, err)

	require.Equal(t, 20, series.Len())
	assert.Equal(t, values, series.Values())
}

func TestTrimLeadingZeros(t *testing.T) {
	buckets := []Bucket{
		{Start: baseMonday, Revenue: 0},
		{Start: baseMonday.AddDate(0, 0, 7), Revenue: 0},
		{Start: baseMonday.AddDate(0, 0, 14), Revenue: 5},
		{Start: baseMonday.AddDate(0, 0, 21), Revenue: 0},
		{Start: baseMonday.AddDate(0, 0, 28), Revenue: 3},
	}

	trimmed := trimLeadingZeros(buckets)
	require.Len(t, trimmed, 3)
	assert.Equal(t, 5.0, trimmed[0].Revenue)
	assert.Equal(t, 0.0, trimmed[1].Revenue)

	allZero := []Bucket{{Start: baseMonday}, {Start: baseMonday.AddDate(0, 0, 7)}}
	assert.Len(t, trimLeadingZeros(allZero), 2)
}

func TestBuildSeries_IsAlwaysRegular(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for _, g := range []Granularity{Weekly, Monthly} {
		for round := 0; round < 20; round++ {
			obs := make([]Observation, 0)
			for i := 0; i < 1+rng.Intn(60); i++ {
				offset := time.Duration(rng.Intn(900*24)) * time.Hour
				obs = append(obs, Observation{Time: baseMonday.Add(offset), Revenue: 1 + rng.Float64()*1000})
			}

			series, err := BuildSeries(obs, g)
			require.NoError(t, err)
			require.NotZero(t, series.Len())
			assert.Greater(t, series.Buckets[0].Revenue, 0.0)

			for i := 1; i < series.Len(); i++ {
				expected := g.Advance(series.Buckets[i-1].Start, 1)
				assert.Equal(t, expected, series.Buckets[i].Start, "lacuna entre buckets %d e %d", i-1, i)
			}
		}
	}
}
