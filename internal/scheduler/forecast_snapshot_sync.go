package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/sales-forecast-api/infrastructure/repository"
	"github.com/vfg2006/sales-forecast-api/internal/config"
	"github.com/vfg2006/sales-forecast-api/internal/domain"
	"github.com/vfg2006/sales-forecast-api/internal/metrics"
)

// SnapshotRefresher recalcula as previsões persistidas de um tenant
type SnapshotRefresher interface {
	RefreshSnapshots(ctx context.Context, tenant string) ([]*domain.ForecastSnapshot, error)
	InvalidateCache(ctx context.Context, tenant string) error
	Tenants() []string
}

// ForecastSnapshotSyncConfig representa a configuração do agendador de snapshots de previsão
type ForecastSnapshotSyncConfig struct {
	CronSchedule      string
	MaxConcurrentJobs int
	RetentionDays     int
	SyncEnabled       bool
}

// SyncReport resume uma execução da sincronização
type SyncReport struct {
	RunID     string            `json:"run_id"`
	StartedAt time.Time         `json:"started_at"`
	Duration  string            `json:"duration"`
	Refreshed int               `json:"refreshed"`
	Failed    map[string]string `json:"failed,omitempty"`
	Purged    int64             `json:"purged"`
}

// ForecastSnapshotSyncService agenda o recálculo diário das previsões de todos os tenants
type ForecastSnapshotSyncService struct {
	scheduler           *gocron.Scheduler
	config              ForecastSnapshotSyncConfig
	refresher           SnapshotRefresher
	snapshotRepo        repository.ForecastSnapshotRepository
	syncRunning         bool
	syncMutex           sync.Mutex
	lastSyncStartedAt   time.Time
	lastSyncCompletedAt time.Time
	lastReport          *SyncReport
	ctx                 context.Context
}

func NewForecastSnapshotSyncService(
	refresher SnapshotRefresher,
	snapshotRepo repository.ForecastSnapshotRepository,
	appConfig *config.Config,
) *ForecastSnapshotSyncService {
	syncConfig := ForecastSnapshotSyncConfig{
		CronSchedule:      appConfig.ForecastSync.CronSchedule,
		MaxConcurrentJobs: appConfig.ForecastSync.MaxConcurrentJobs,
		RetentionDays:     appConfig.ForecastSync.RetentionDays,
		SyncEnabled:       appConfig.ForecastSync.Enabled,
	}
	if syncConfig.MaxConcurrentJobs < 1 {
		syncConfig.MaxConcurrentJobs = 1
	}

	logrus.WithFields(logrus.Fields{
		"cron_schedule":       syncConfig.CronSchedule,
		"max_concurrent_jobs": syncConfig.MaxConcurrentJobs,
		"retention_days":      syncConfig.RetentionDays,
		"sync_enabled":        syncConfig.SyncEnabled,
	}).Info("Configuração do agendador de snapshots de previsão carregada")

	return &ForecastSnapshotSyncService{
		scheduler:    gocron.NewScheduler(time.Local),
		config:       syncConfig,
		refresher:    refresher,
		snapshotRepo: snapshotRepo,
		ctx:          context.Background(),
	}
}

// Start agenda a sincronização e para o agendador quando ctx for cancelado
func (s *ForecastSnapshotSyncService) Start(ctx context.Context) error {
	s.syncMutex.Lock()
	s.ctx = ctx
	s.syncMutex.Unlock()

	if !s.config.SyncEnabled {
		logrus.Info("Sincronização de snapshots de previsão desabilitada por configuração")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando agendador de snapshots de previsão")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.Run(ctx)
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar sincronização de snapshots de previsão: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador de snapshots de previsão")
		s.scheduler.Stop()
	}()

	return nil
}

// Run executa uma sincronização completa. Retorna nil se outra execução já estiver em andamento.
func (s *ForecastSnapshotSyncService) Run(ctx context.Context) *SyncReport {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Sincronização de snapshots de previsão já em andamento, ignorando")
		return nil
	}
	s.syncRunning = true
	s.syncMutex.Unlock()

	return s.run(ctx)
}

func (s *ForecastSnapshotSyncService) run(ctx context.Context) *SyncReport {
	report := &SyncReport{
		RunID:     uuid.New().String(),
		StartedAt: time.Now(),
		Failed:    map[string]string{},
	}

	s.syncMutex.Lock()
	s.lastSyncStartedAt = report.StartedAt
	s.syncMutex.Unlock()

	defer func() {
		s.syncMutex.Lock()
		s.syncRunning = false
		s.syncMutex.Unlock()
	}()

	logger := logrus.WithField("run_id", report.RunID)

	tenants := s.refresher.Tenants()
	logger.WithField("tenants", len(tenants)).Info("Iniciando sincronização de snapshots de previsão")

	var mu sync.Mutex
	semaphore := make(chan struct{}, s.config.MaxConcurrentJobs)
	var wg sync.WaitGroup

	for _, tenant := range tenants {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(tenant string) {
			defer func() {
				<-semaphore
				wg.Done()
			}()

			err := s.refreshTenant(ctx, tenant)
			metrics.ObserveSync(tenant, err)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				logger.WithError(err).WithField("tenant", tenant).Error("Erro ao atualizar snapshots de previsão")
				report.Failed[tenant] = err.Error()
				return
			}
			report.Refreshed++
		}(tenant)
	}

	wg.Wait()

	if s.config.RetentionDays > 0 {
		purged, err := s.snapshotRepo.DeleteOlderThan(ctx, s.config.RetentionDays)
		if err != nil {
			logger.WithError(err).Error("Erro ao remover snapshots antigos")
		}
		report.Purged = purged
	}

	report.Duration = time.Since(report.StartedAt).String()

	logger.WithFields(logrus.Fields{
		"duration":  report.Duration,
		"refreshed": report.Refreshed,
		"failed":    len(report.Failed),
		"purged":    report.Purged,
	}).Info("Sincronização de snapshots de previsão concluída")

	s.syncMutex.Lock()
	s.lastSyncCompletedAt = time.Now()
	s.lastReport = report
	s.syncMutex.Unlock()

	return report
}

// refreshTenant descarta o cache antes do recálculo para ler as vendas carregadas pelo ETL
func (s *ForecastSnapshotSyncService) refreshTenant(ctx context.Context, tenant string) error {
	if err := s.refresher.InvalidateCache(ctx, tenant); err != nil {
		logrus.WithError(err).WithField("tenant", tenant).Warn("Não foi possível invalidar o cache antes da sincronização")
	}

	_, err := s.refresher.RefreshSnapshots(ctx, tenant)
	return err
}

// TriggerManualSync inicia manualmente uma sincronização. Retorna false se já houver uma em andamento.
func (s *ForecastSnapshotSyncService) TriggerManualSync() bool {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Sincronização de snapshots de previsão já em andamento, ignorando solicitação manual")
		return false
	}
	s.syncRunning = true
	ctx := s.ctx
	s.syncMutex.Unlock()

	logrus.Info("Iniciando sincronização manual de snapshots de previsão")
	go s.run(ctx)

	return true
}

// GetStatus retorna o status atual da sincronização
func (s *ForecastSnapshotSyncService) GetStatus() map[string]any {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	return map[string]any{
		"sync_running":           s.syncRunning,
		"sync_cron":              s.config.CronSchedule,
		"sync_enabled":           s.config.SyncEnabled,
		"retention_days":         s.config.RetentionDays,
		"last_sync_started_at":   s.lastSyncStartedAt,
		"last_sync_completed_at": s.lastSyncCompletedAt,
		"last_report":            s.lastReport,
	}
}
