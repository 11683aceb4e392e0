package forecasting

import (
	"context"
	"slices"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/sales-forecast-api/infrastructure/repository"
	"github.com/vfg2006/sales-forecast-api/internal/cache"
	"github.com/vfg2006/sales-forecast-api/internal/config"
	"github.com/vfg2006/sales-forecast-api/internal/domain"
	"github.com/vfg2006/sales-forecast-api/internal/forecast"
	"github.com/vfg2006/sales-forecast-api/internal/metrics"
	"github.com/vfg2006/sales-forecast-api/pkg/log"
	"github.com/vfg2006/sales-forecast-api/pkg/utils"
)

// Granularities são as granularidades persistidas em cada atualização de snapshots
var Granularities = []forecast.Granularity{forecast.Weekly, forecast.Monthly}

type Forecaster interface {
	// Forecast gera a previsão sob demanda; horizon 0 usa o padrão configurado para a granularidade
	Forecast(ctx context.Context, tenant string, granularity forecast.Granularity, horizon int) (*forecast.Result, error)
	// RefreshSnapshots recalcula e persiste as previsões semanal e mensal do tenant
	RefreshSnapshots(ctx context.Context, tenant string) ([]*domain.ForecastSnapshot, error)
	LatestSnapshot(ctx context.Context, tenant string, granularity forecast.Granularity) (*domain.ForecastSnapshot, error)
	// Observations retorna as observações do tenant, passando pelo cache
	Observations(ctx context.Context, tenant string) ([]forecast.Observation, error)
	InvalidateCache(ctx context.Context, tenant string) error
	Tenants() []string
}

type Service struct {
	cfg          config.Forecast
	salesRepo    repository.SalesRecordRepository
	snapshotRepo repository.ForecastSnapshotRepository
	cache        cache.ObservationCache
	engine       *forecast.Forecaster
	now          func() time.Time
	newID        func() (string, error)
}

func NewService(
	cfg config.Forecast,
	salesRepo repository.SalesRecordRepository,
	snapshotRepo repository.ForecastSnapshotRepository,
	observationCache cache.ObservationCache,
) *Service {
	engine := forecast.New(
		forecast.WithPolicy(cfg.Policy()),
		forecast.WithFallbackHook(func(e forecast.FallbackEvent) {
			metrics.ObserveFallback(string(e.Granularity), string(e.Model))
		}),
	)

	return &Service{
		cfg:          cfg,
		salesRepo:    salesRepo,
		snapshotRepo: snapshotRepo,
		cache:        observationCache,
		engine:       engine,
		now:          time.Now,
		newID:        utils.GenerateID,
	}
}

func (s *Service) Tenants() []string {
	return slices.Clone(s.cfg.Tenants)
}

func (s *Service) Forecast(ctx context.Context, tenant string, granularity forecast.Granularity, horizon int) (*forecast.Result, error) {
	tenant, err := s.resolveTenant(tenant)
	if err != nil {
		return nil, err
	}
	if err := granularity.Validate(); err != nil {
		return nil, err
	}

	observations, err := s.Observations(ctx, tenant)
	if err != nil {
		return nil, err
	}

	return s.generate(ctx, tenant, observations, granularity, horizon)
}

func (s *Service) RefreshSnapshots(ctx context.Context, tenant string) ([]*domain.ForecastSnapshot, error) {
	tenant, err := s.resolveTenant(tenant)
	if err != nil {
		return nil, err
	}

	observations, err := s.Observations(ctx, tenant)
	if err != nil {
		return nil, err
	}

	generatedAt := s.now()
	snapshots := make([]*domain.ForecastSnapshot, 0, len(Granularities))

	for _, g := range Granularities {
		result, err := s.generate(ctx, tenant, observations, g, 0)
		if err != nil {
			return nil, err
		}

		id, err := s.newID()
		if err != nil {
			return nil, errors.Wrap(err, "erro ao gerar id do snapshot")
		}

		snapshots = append(snapshots, domain.NewForecastSnapshot(id, tenant, result, generatedAt))
	}

	if err := s.snapshotRepo.SaveOrUpdate(ctx, snapshots...); err != nil {
		return nil, errors.Wrapf(err, "erro ao salvar snapshots do tenant %s", tenant)
	}

	log.ForContext(ctx).WithFields(log.Fields{
		"tenant":    tenant,
		"snapshots": len(snapshots),
	}).Info("Snapshots de previsão atualizados")

	return snapshots, nil
}

func (s *Service) LatestSnapshot(ctx context.Context, tenant string, granularity forecast.Granularity) (*domain.ForecastSnapshot, error) {
	tenant, err := s.resolveTenant(tenant)
	if err != nil {
		return nil, err
	}
	if err := granularity.Validate(); err != nil {
		return nil, err
	}

	snapshot, err := s.snapshotRepo.GetLatest(ctx, tenant, granularity)
	if err != nil {
		return nil, errors.Wrapf(err, "erro ao buscar snapshot %s do tenant %s", granularity, tenant)
	}

	return snapshot, nil
}

func (s *Service) Observations(ctx context.Context, tenant string) ([]forecast.Observation, error) {
	tenant, err := s.resolveTenant(tenant)
	if err != nil {
		return nil, err
	}

	cached, found, err := s.cache.Get(ctx, tenant)
	if err != nil {
		// cache indisponível não impede a leitura do banco
		logrus.WithError(err).WithField("tenant", tenant).Warn("Erro ao ler observações do cache")
	}
	metrics.ObserveCache(found)
	if found {
		return toObservations(cached), nil
	}

	loaded, err := s.salesRepo.ListRevenueObservations(ctx, tenant)
	if err != nil {
		return nil, errors.Wrapf(err, "erro ao carregar observações do tenant %s", tenant)
	}

	if err := s.cache.Set(ctx, tenant, loaded); err != nil {
		logrus.WithError(err).WithField("tenant", tenant).Warn("Erro ao gravar observações no cache")
	}

	return toObservations(loaded), nil
}

func (s *Service) InvalidateCache(ctx context.Context, tenant string) error {
	tenant, err := s.resolveTenant(tenant)
	if err != nil {
		return err
	}

	if err := s.cache.Invalidate(ctx, tenant); err != nil {
		return errors.Wrapf(err, "erro ao invalidar cache do tenant %s", tenant)
	}

	logrus.WithField("tenant", tenant).Info("Cache de observações invalidado")
	return nil
}

func (s *Service) generate(ctx context.Context, tenant string, observations []forecast.Observation, g forecast.Granularity, horizon int) (*forecast.Result, error) {
	if horizon == 0 {
		horizon = s.cfg.DefaultHorizon(g)
	}

	start := time.Now()
	result, err := s.engine.Generate(observations, g, horizon)
	if err != nil {
		return nil, err
	}

	metrics.ObserveForecast(string(g), string(result.Model), string(result.Status), time.Since(start))

	logger := log.ForContext(ctx).WithFields(log.Fields{
		"tenant":      tenant,
		"granularity": g,
		"status":      result.Status,
		"model":       result.Model,
		"buckets":     result.Buckets,
	})

	if result.Fallback {
		logger.WithField("fallback_reason", result.FallbackReason).
			Warnf("Modelo %s falhou, usando média dos últimos buckets", result.SelectedModel)
	} else {
		logger.Debug("Previsão gerada")
	}

	return result, nil
}

func (s *Service) resolveTenant(tenant string) (string, error) {
	return domain.ResolveTenant(s.cfg.Tenants, tenant)
}

func toObservations(in []domain.RevenueObservation) []forecast.Observation {
	out := make([]forecast.Observation, len(in))
	for i, o := range in {
		out[i] = forecast.Observation{Time: o.Date, Revenue: o.Revenue}
	}
	return out
}
