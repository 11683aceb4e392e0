package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSalesFilter_PreviousPeriod(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	prev, ok := SalesFilter{StartDate: &start, EndDate: &end, Marketplace: "shopee"}.PreviousPeriod()
	require.True(t, ok)

	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), *prev.EndDate)
	assert.Equal(t, time.Date(2024, 1, 30, 0, 0, 0, 0, time.UTC), *prev.StartDate)
	assert.Equal(t, "shopee", prev.Marketplace)

	_, ok = SalesFilter{StartDate: &start}.PreviousPeriod()
	assert.False(t, ok)
}

func TestClassifyHHI(t *testing.T) {
	tests := []struct {
		score    float64
		expected RiskLevel
	}{
		{score: 0, expected: RiskLow},
		{score: 1499, expected: RiskLow},
		{score: 1500, expected: RiskModerate},
		{score: 2500, expected: RiskModerate},
		{score: 2501, expected: RiskHigh},
		{score: 10000, expected: RiskHigh},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ClassifyHHI(tt.score), "hhi %v", tt.score)
	}
}

func TestResolveTenant(t *testing.T) {
	allowed := []string{"animoshop", "novoon"}

	tenant, err := ResolveTenant(allowed, "  NovoOn ")
	require.NoError(t, err)
	assert.Equal(t, "novoon", tenant)

	_, err = ResolveTenant(allowed, "   ")
	assert.ErrorIs(t, err, ErrTenantRequired)
	assert.EqualError(t, err, "tenant é obrigatório")

	_, err = ResolveTenant(allowed, "outra")
	assert.ErrorIs(t, err, ErrUnknownTenant)
	assert.EqualError(t, err, `tenant não configurado: "outra"`)
}
