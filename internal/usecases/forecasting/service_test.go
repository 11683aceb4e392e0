package forecasting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/sales-forecast-api/infrastructure/repository/mocks"
	"github.com/vfg2006/sales-forecast-api/internal/cache"
	"github.com/vfg2006/sales-forecast-api/internal/config"
	"github.com/vfg2006/sales-forecast-api/internal/domain"
	"github.com/vfg2006/sales-forecast-api/internal/forecast"
	"go.uber.org/mock/gomock"
)

type brokenCache struct{}

func (brokenCache) Get(context.Context, string) ([]domain.RevenueObservation, bool, error) {
	return nil, false, errors.New("connection refused")
}
func (brokenCache) Set(context.Context, string, []domain.RevenueObservation) error {
	return errors.New("connection refused")
}
func (brokenCache) Invalidate(context.Context, string) error {
	return errors.New("connection refused")
}

func testConfig() config.Forecast {
	return config.Forecast{
		Tenants:                  []string{"animoshop", "novoon"},
		WeeklyHorizon:            8,
		MonthlyHorizon:           6,
		WeeklyTrendThreshold:     12,
		MonthlyTrendThreshold:    12,
		WeeklySeasonalThreshold:  52,
		MonthlySeasonalThreshold: 24,
	}
}

// weeklyRevenue gera uma observação por segunda-feira a partir de 01/01/2024
func weeklyRevenue(values ...float64) []domain.RevenueObservation {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]domain.RevenueObservation, len(values))
	for i, v := range values {
		out[i] = domain.RevenueObservation{Date: start.AddDate(0, 0, 7*i), Revenue: v}
	}
	return out
}

func flatRevenue(n int) []domain.RevenueObservation {
	values := make([]float64, n)
	for i := range values {
		values[i] = 1000
	}
	return weeklyRevenue(values...)
}

type fixture struct {
	service      *Service
	salesRepo    *mocks.MockSalesRecordRepository
	snapshotRepo *mocks.MockForecastSnapshotRepository
}

func newFixture(t *testing.T, c cache.ObservationCache) fixture {
	ctrl := gomock.NewController(t)

	salesRepo := mocks.NewMockSalesRecordRepository(ctrl)
	snapshotRepo := mocks.NewMockForecastSnapshotRepository(ctrl)

	if c == nil {
		c = cache.NewMemoryCache(time.Minute)
	}

	return fixture{
		service:      NewService(testConfig(), salesRepo, snapshotRepo, c),
		salesRepo:    salesRepo,
		snapshotRepo: snapshotRepo,
	}
}

func countForecastPoints(result *forecast.Result) int {
	n := 0
	for _, p := range result.Points {
		if p.Type == forecast.PointForecast {
			n++
		}
	}
	return n
}

func TestService_Forecast(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		tenant      string
		granularity forecast.Granularity
		horizon     int
		setup       func(f fixture)
		validate    func(t *testing.T, result *forecast.Result, err error)
	}{
		{
			name:        "Horizonte zero usa o padrão semanal",
			tenant:      "animoshop",
			granularity: forecast.Weekly,
			setup: func(f fixture) {
				f.salesRepo.EXPECT().ListRevenueObservations(gomock.Any(), "animoshop").Return(flatRevenue(10), nil)
			},
			validate: func(t *testing.T, result *forecast.Result, err error) {
				require.NoError(t, err)
				assert.Equal(t, forecast.StatusOK, result.Status)
				assert.Equal(t, forecast.ModelSimpleLevel, result.Model)
				assert.Equal(t, 8, result.Horizon)
				assert.Equal(t, 8, countForecastPoints(result))
			},
		},
		{
			name:        "Horizonte informado prevalece",
			tenant:      "novoon",
			granularity: forecast.Weekly,
			horizon:     3,
			setup: func(f fixture) {
				f.salesRepo.EXPECT().ListRevenueObservations(gomock.Any(), "novoon").Return(flatRevenue(10), nil)
			},
			validate: func(t *testing.T, result *forecast.Result, err error) {
				require.NoError(t, err)
				assert.Equal(t, 3, countForecastPoints(result))
			},
		},
		{
			name:        "Tenant é normalizado antes da consulta",
			tenant:      "  AnimoShop ",
			granularity: forecast.Monthly,
			setup: func(f fixture) {
				f.salesRepo.EXPECT().ListRevenueObservations(gomock.Any(), "animoshop").Return(flatRevenue(10), nil)
			},
			validate: func(t *testing.T, result *forecast.Result, err error) {
				require.NoError(t, err)
				// 10 semanas cabem em 3 meses
				assert.Equal(t, forecast.StatusInsufficientHistory, result.Status)
				assert.Equal(t, 6, result.Horizon)
			},
		},
		{
			name:        "Tenant sem vendas retorna no_data",
			tenant:      "animoshop",
			granularity: forecast.Weekly,
			setup: func(f fixture) {
				f.salesRepo.EXPECT().ListRevenueObservations(gomock.Any(), "animoshop").Return(nil, nil)
			},
			validate: func(t *testing.T, result *forecast.Result, err error) {
				require.NoError(t, err)
				assert.Equal(t, forecast.StatusNoData, result.Status)
			},
		},
		{
			name:        "Tenant vazio",
			tenant:      " ",
			granularity: forecast.Weekly,
			setup:       func(fixture) {},
			validate: func(t *testing.T, _ *forecast.Result, err error) {
				assert.ErrorIs(t, err, domain.ErrTenantRequired)
			},
		},
		{
			name:        "Tenant fora da configuração",
			tenant:      "outraloja",
			granularity: forecast.Weekly,
			setup:       func(fixture) {},
			validate: func(t *testing.T, _ *forecast.Result, err error) {
				assert.ErrorIs(t, err, domain.ErrUnknownTenant)
			},
		},
		{
			name:        "Granularidade inválida não consulta o banco",
			tenant:      "animoshop",
			granularity: forecast.Granularity("daily"),
			setup:       func(fixture) {},
			validate: func(t *testing.T, _ *forecast.Result, err error) {
				assert.ErrorIs(t, err, forecast.ErrInvalidGranularity)
			},
		},
		{
			name:        "Horizonte negativo",
			tenant:      "animoshop",
			granularity: forecast.Weekly,
			horizon:     -1,
			setup: func(f fixture) {
				f.salesRepo.EXPECT().ListRevenueObservations(gomock.Any(), "animoshop").Return(flatRevenue(10), nil)
			},
			validate: func(t *testing.T, _ *forecast.Result, err error) {
				assert.ErrorIs(t, err, forecast.ErrInvalidHorizon)
			},
		},
		{
			name:        "Erro do repositório é propagado",
			tenant:      "animoshop",
			granularity: forecast.Weekly,
			setup: func(f fixture) {
				f.salesRepo.EXPECT().ListRevenueObservations(gomock.Any(), "animoshop").Return(nil, errors.New("timeout"))
			},
			validate: func(t *testing.T, _ *forecast.Result, err error) {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "timeout")
				assert.Contains(t, err.Error(), "animoshop")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			tt.setup(f)

			result, err := f.service.Forecast(ctx, tt.tenant, tt.granularity, tt.horizon)
			tt.validate(t, result, err)
		})
	}
}

func TestService_ObservationsUseCache(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	f.salesRepo.EXPECT().
		ListRevenueObservations(gomock.Any(), "animoshop").
		Return(flatRevenue(12), nil).
		Times(1)

	first, err := f.service.Observations(ctx, "animoshop")
	require.NoError(t, err)
	second, err := f.service.Observations(ctx, "animoshop")
	require.NoError(t, err)

	assert.Len(t, first, 12)
	assert.Equal(t, first, second)
	assert.Equal(t, 1000.0, second[0].Revenue)
}

func TestService_InvalidateCacheForcesReload(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	gomock.InOrder(
		f.salesRepo.EXPECT().ListRevenueObservations(gomock.Any(), "novoon").Return(flatRevenue(5), nil),
		f.salesRepo.EXPECT().ListRevenueObservations(gomock.Any(), "novoon").Return(flatRevenue(7), nil),
	)

	before, err := f.service.Observations(ctx, "novoon")
	require.NoError(t, err)
	require.NoError(t, f.service.InvalidateCache(ctx, "novoon"))
	after, err := f.service.Observations(ctx, "novoon")
	require.NoError(t, err)

	assert.Len(t, before, 5)
	assert.Len(t, after, 7)

	assert.ErrorIs(t, f.service.InvalidateCache(ctx, "desconhecido"), domain.ErrUnknownTenant)
}

func TestService_BrokenCacheFallsBackToRepository(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, brokenCache{})

	f.salesRepo.EXPECT().
		ListRevenueObservations(gomock.Any(), "animoshop").
		Return(flatRevenue(10), nil).
		Times(2)

	for i := 0; i < 2; i++ {
		result, err := f.service.Forecast(ctx, "animoshop", forecast.Weekly, 2)
		require.NoError(t, err)
		assert.Equal(t, forecast.StatusOK, result.Status)
	}

	assert.Error(t, f.service.InvalidateCache(ctx, "animoshop"))
}

func TestService_RefreshSnapshots(t *testing.T) {
	ctx := context.Background()
	generatedAt := time.Date(2024, 3, 18, 2, 0, 0, 0, time.UTC)

	t.Run("Persiste as previsões semanal e mensal em uma única chamada", func(t *testing.T) {
		f := newFixture(t, nil)
		f.service.now = func() time.Time { return generatedAt }
		ids := []string{"abc123", "def456"}
		f.service.newID = func() (string, error) {
			id := ids[0]
			ids = ids[1:]
			return id, nil
		}

		f.salesRepo.EXPECT().ListRevenueObservations(gomock.Any(), "animoshop").Return(flatRevenue(60), nil).Times(1)
		f.snapshotRepo.EXPECT().
			SaveOrUpdate(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, snapshots ...*domain.ForecastSnapshot) error {
				require.Len(t, snapshots, 2)
				assert.Equal(t, forecast.Weekly, snapshots[0].Granularity)
				assert.Equal(t, forecast.Monthly, snapshots[1].Granularity)
				return nil
			})

		snapshots, err := f.service.RefreshSnapshots(ctx, "animoshop")
		require.NoError(t, err)
		require.Len(t, snapshots, 2)

		weekly, monthly := snapshots[0], snapshots[1]
		assert.Equal(t, "abc123", weekly.ID)
		assert.Equal(t, "def456", monthly.ID)
		assert.Equal(t, "animoshop", weekly.Tenant)
		assert.Equal(t, generatedAt, weekly.GeneratedAt)
		assert.Equal(t, generatedAt, monthly.GeneratedAt)
		assert.Equal(t, 8, weekly.Horizon)
		assert.Equal(t, 6, monthly.Horizon)
		assert.Equal(t, forecast.ModelTrendSeasonal, weekly.Model)
		assert.Equal(t, forecast.StatusOK, monthly.Status)
		assert.Equal(t, forecast.Weekly, weekly.Result.Granularity)
	})

	t.Run("Erro ao salvar é propagado", func(t *testing.T) {
		f := newFixture(t, nil)

		f.salesRepo.EXPECT().ListRevenueObservations(gomock.Any(), "novoon").Return(flatRevenue(10), nil)
		f.snapshotRepo.EXPECT().SaveOrUpdate(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("deadlock"))

		snapshots, err := f.service.RefreshSnapshots(ctx, "novoon")
		require.Error(t, err)
		assert.Nil(t, snapshots)
		assert.Contains(t, err.Error(), "deadlock")
	})

	t.Run("Erro ao gerar id interrompe antes de salvar", func(t *testing.T) {
		f := newFixture(t, nil)
		f.service.newID = func() (string, error) { return "", errors.New("sem entropia") }

		f.salesRepo.EXPECT().ListRevenueObservations(gomock.Any(), "novoon").Return(flatRevenue(10), nil)

		_, err := f.service.RefreshSnapshots(ctx, "novoon")
		assert.Error(t, err)
	})
}

func TestService_LatestSnapshot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	expected := &domain.ForecastSnapshot{ID: "abc123", Tenant: "novoon", Granularity: forecast.Monthly}

	f.snapshotRepo.EXPECT().GetLatest(gomock.Any(), "novoon", forecast.Monthly).Return(expected, nil)
	f.snapshotRepo.EXPECT().GetLatest(gomock.Any(), "animoshop", forecast.Weekly).Return(nil, nil)

	snapshot, err := f.service.LatestSnapshot(ctx, "novoon", forecast.Monthly)
	require.NoError(t, err)
	assert.Equal(t, expected, snapshot)

	snapshot, err = f.service.LatestSnapshot(ctx, "animoshop", forecast.Weekly)
	require.NoError(t, err)
	assert.Nil(t, snapshot)

	_, err = f.service.LatestSnapshot(ctx, "animoshop", forecast.Granularity("yearly"))
	assert.ErrorIs(t, err, forecast.ErrInvalidGranularity)
}

func TestService_Tenants(t *testing.T) {
	f := newFixture(t, nil)

	tenants := f.service.Tenants()
	tenants[0] = "alterado"

	assert.Equal(t, []string{"animoshop", "novoon"}, f.service.Tenants())
}
