package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/sales-forecast-api/internal/api"
	"github.com/vfg2006/sales-forecast-api/internal/api/handler"
	"github.com/vfg2006/sales-forecast-api/internal/domain"
	"github.com/vfg2006/sales-forecast-api/internal/forecast"
	"github.com/vfg2006/sales-forecast-api/internal/metrics"
	"github.com/vfg2006/sales-forecast-api/internal/scheduler"
	"github.com/vfg2006/sales-forecast-api/internal/usecases/authenticating"
	"github.com/vfg2006/sales-forecast-api/pkg/utils"
)

func runServe(args []string) error {
	fs := newFlagSet("serve")
	fs.String("port", "", "porta HTTP das rotas de operação")
	fs.Bool("sync-enabled", false, "habilita o agendador de snapshots de previsão")
	fs.Parse(args)

	cfg, err := loadConfig(fs, map[string]string{
		"PORT":                  "port",
		"FORECAST_SYNC_ENABLED": "sync-enabled",
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.conn.Bootstrap(ctx); err != nil {
		return err
	}

	metrics.Register()

	syncService := scheduler.NewForecastSnapshotSyncService(a.forecasting, a.snapshotRepo, cfg)
	if err := syncService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador de snapshots de previsão")
	} else {
		logrus.Info("Agendador de snapshots de previsão iniciado com sucesso")
	}

	server, err := api.New(cfg, api.Services{
		Database:      a.conn,
		Cache:         a.forecasting,
		Authenticator: authenticating.NewService(cfg),
		CronJobs: handler.CronJobServices{
			ForecastSnapshotSyncService: syncService,
		},
	})
	if err != nil {
		return err
	}

	return server.Run(ctx)
}

func runForecast(args []string) error {
	fs := newFlagSet("forecast")
	tenant := fs.StringP("tenant", "t", "", "tenant a prever")
	granularity := fs.StringP("granularity", "g", string(forecast.Weekly), "weekly ou monthly")
	horizon := fs.Int("horizon", 0, "quantidade de buckets previstos (0 usa o padrão da granularidade)")
	latest := fs.Bool("latest", false, "imprime o último snapshot persistido em vez de recalcular")
	fs.Parse(args)

	g, err := forecast.ParseGranularity(*granularity)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(fs, map[string]string{})
	if err != nil {
		return err
	}

	ctx := context.Background()
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if *latest {
		snapshot, err := a.forecasting.LatestSnapshot(ctx, *tenant, g)
		if err != nil {
			return err
		}
		if snapshot == nil {
			return fmt.Errorf("nenhum snapshot %s encontrado para %s", g, *tenant)
		}
		fmt.Println(utils.PrettyJson(snapshot))
		return nil
	}

	result, err := a.forecasting.Forecast(ctx, *tenant, g, *horizon)
	if err != nil {
		return err
	}

	fmt.Println(utils.PrettyJson(result))
	return nil
}

func runToken(args []string) error {
	fs := newFlagSet("token")
	subject := fs.String("subject", "", "identificação de quem usará o token")
	role := fs.String("role", domain.RoleOperator, "perfil: admin ou operator")
	ttl := fs.Duration("ttl", 24*time.Hour, "validade do token")
	fs.Parse(args)

	if *subject == "" {
		return fmt.Errorf("--subject é obrigatório")
	}

	cfg, err := loadConfig(fs, map[string]string{})
	if err != nil {
		return err
	}

	token, err := authenticating.NewService(cfg).GenerateToken(*subject, *role, *ttl)
	if err != nil {
		return err
	}

	fmt.Println(token)
	return nil
}
