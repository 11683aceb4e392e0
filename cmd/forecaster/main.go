package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/vfg2006/sales-forecast-api/infrastructure/database/postgres"
	"github.com/vfg2006/sales-forecast-api/infrastructure/repository"
	"github.com/vfg2006/sales-forecast-api/internal/cache"
	"github.com/vfg2006/sales-forecast-api/internal/config"
	"github.com/vfg2006/sales-forecast-api/internal/usecases/forecasting"
	"github.com/vfg2006/sales-forecast-api/internal/usecases/summarizing"
	"github.com/vfg2006/sales-forecast-api/pkg/log"
)

const usage = `uso: forecaster <comando> [flags]

comandos:
  serve     aplica o schema, inicia o agendador e as rotas de operação
  forecast  imprime a previsão de um tenant em JSON
  summary   imprime o resumo, os marketplaces, o risco de concentração e, com -g, a evolução da receita
  token     emite um token para as rotas de operação
`

// app reúne as dependências compartilhadas pelos comandos
type app struct {
	cfg          *config.Config
	conn         *postgres.Connection
	cache        cache.ObservationCache
	snapshotRepo repository.ForecastSnapshotRepository
	forecasting  *forecasting.Service
	summarizing  *summarizing.Service
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	command, args := os.Args[1], os.Args[2:]

	var err error
	switch command {
	case "serve":
		err = runServe(args)
	case "forecast":
		err = runForecast(args)
	case "summary":
		err = runSummary(args)
	case "token":
		err = runToken(args)
	case "help", "-h", "--help":
		fmt.Fprint(os.Stdout, usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "comando desconhecido: %s\n\n%s", command, usage)
		os.Exit(2)
	}

	if err != nil {
		logrus.WithError(err).Fatal("Erro ao executar o comando ", command)
	}
}

// newFlagSet cria as flags comuns a todos os comandos, ligadas às chaves do viper
func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ExitOnError)
	fs.String("log-level", "", "nível de log (debug, info, warn, error)")
	fs.String("cache-backend", "", "backend do cache de observações (memory ou redis)")
	return fs
}

// loadConfig aplica as flags sobre variáveis de ambiente e valores padrão
func loadConfig(fs *pflag.FlagSet, bindings map[string]string) (*config.Config, error) {
	bindings["LOG_LEVEL"] = "log-level"
	bindings["CACHE_BACKEND"] = "cache-backend"

	for key, flag := range bindings {
		if err := viper.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return nil, fmt.Errorf("erro ao associar a flag %s: %w", flag, err)
		}
	}

	log.Configure("info")

	cfg, err := config.NewConfig()
	if err != nil {
		return nil, err
	}

	level, err := log.Configure(cfg.App.LogLevel)
	if err != nil {
		logrus.Warnf("Nível de log inválido: %s, usando 'info'", cfg.App.LogLevel)
	}
	logrus.Debugf("Nível de log configurado para: %s", level)

	return cfg, nil
}

// newApp conecta ao PostgreSQL e ao cache e monta os casos de uso
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	conn, err := pgconn(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	observationCache, err := cache.New(ctx, cfg)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("erro ao iniciar o cache de observações: %w", err)
	}

	salesRepo := repository.NewSalesRecordRepository(conn, cfg.Database.SalesTable)
	snapshotRepo := repository.NewForecastSnapshotRepository(conn)

	forecastingService := forecasting.NewService(cfg.Forecast, salesRepo, snapshotRepo, observationCache)
	summarizingService := summarizing.NewService(cfg.Forecast.Tenants, salesRepo, forecastingService)

	return &app{
		cfg:          cfg,
		conn:         conn,
		cache:        observationCache,
		snapshotRepo: snapshotRepo,
		forecasting:  forecastingService,
		summarizing:  summarizingService,
	}, nil
}

func (a *app) Close() {
	if closer, ok := a.cache.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			logrus.WithError(err).Warn("Erro ao fechar o cache")
		}
	}
	if err := a.conn.Close(); err != nil {
		logrus.WithError(err).Warn("Erro ao fechar a conexão com PostgreSQL")
	}
}

// pgconn cria uma conexão com o banco de dados
func pgconn(ctx context.Context, dbConfig config.Database) (*postgres.Connection, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	conn, err := postgres.NewConnection(connectCtx, dbConfig)
	if err != nil {
		return nil, fmt.Errorf("erro ao conectar ao PostgreSQL: %w", err)
	}

	logrus.Info("Conexão com PostgreSQL estabelecida com sucesso")
	return conn, nil
}
