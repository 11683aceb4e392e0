package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/vfg2006/sales-forecast-api/internal/forecast"
)

const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

type Config struct {
	App          App          `mapstructure:",squash"`
	Server       Server       `mapstructure:",squash"`
	Database     Database     `mapstructure:",squash"`
	Auth         Auth         `mapstructure:",squash"`
	Forecast     Forecast     `mapstructure:",squash"`
	Cache        Cache        `mapstructure:",squash"`
	Redis        Redis        `mapstructure:",squash"`
	ForecastSync ForecastSync `mapstructure:",squash"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

type Server struct {
	Host           string   `mapstructure:"host"`
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

type Database struct {
	DSN          string `mapstructure:"-"`
	Driver       string `mapstructure:"database_driver"`
	Password     string `mapstructure:"database_password"`
	URL          string `mapstructure:"database_url"`
	User         string `mapstructure:"database_user"`
	SSLMode      string `mapstructure:"database_sslmode"`
	MaxOpenConns int    `mapstructure:"database_max_open_conns"`
	SalesTable   string `mapstructure:"sales_table"`
}

type Auth struct {
	Secret string `mapstructure:"auth_secret"`
}

// Forecast agrupa os tenants atendidos, os horizontes padrão e os cortes do seletor de modelos
type Forecast struct {
	Tenants                  []string `mapstructure:"forecast_tenants"`
	WeeklyHorizon            int      `mapstructure:"forecast_weekly_horizon"`
	MonthlyHorizon           int      `mapstructure:"forecast_monthly_horizon"`
	WeeklyTrendThreshold     int      `mapstructure:"forecast_weekly_trend_threshold"`
	MonthlyTrendThreshold    int      `mapstructure:"forecast_monthly_trend_threshold"`
	WeeklySeasonalThreshold  int      `mapstructure:"forecast_weekly_seasonal_threshold"`
	MonthlySeasonalThreshold int      `mapstructure:"forecast_monthly_seasonal_threshold"`
}

type Cache struct {
	Backend string        `mapstructure:"cache_backend"`
	TTL     time.Duration `mapstructure:"cache_ttl"`
}

type Redis struct {
	Addr     string `mapstructure:"redis_addr"`
	Password string `mapstructure:"redis_password"`
	DB       int    `mapstructure:"redis_db"`
	Prefix   string `mapstructure:"redis_prefix"`
}

type ForecastSync struct {
	CronSchedule      string `mapstructure:"forecast_sync_cron"`
	MaxConcurrentJobs int    `mapstructure:"forecast_sync_max_concurrent_jobs"`
	RetentionDays     int    `mapstructure:"forecast_sync_retention_days"`
	Enabled           bool   `mapstructure:"forecast_sync_enabled"`
}

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "localhost:5432/sales")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "")
	viper.SetDefault("DATABASE_SSLMODE", "disable")
	viper.SetDefault("DATABASE_MAX_OPEN_CONNS", 10)
	viper.SetDefault("SALES_TABLE", "harmonized_sales")

	viper.SetDefault("AUTH_SECRET", "")

	viper.SetDefault("FORECAST_TENANTS", "animoshop,novoon")
	viper.SetDefault("FORECAST_WEEKLY_HORIZON", 8)
	viper.SetDefault("FORECAST_MONTHLY_HORIZON", 6)
	viper.SetDefault("FORECAST_WEEKLY_TREND_THRESHOLD", 12)
	viper.SetDefault("FORECAST_MONTHLY_TREND_THRESHOLD", 12)
	viper.SetDefault("FORECAST_WEEKLY_SEASONAL_THRESHOLD", 52)
	viper.SetDefault("FORECAST_MONTHLY_SEASONAL_THRESHOLD", 24)

	viper.SetDefault("CACHE_BACKEND", CacheBackendMemory)
	viper.SetDefault("CACHE_TTL", "5m") // mesmo tempo de vida do cache por empresa do painel
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("REDIS_PREFIX", "sales-forecast")

	viper.SetDefault("FORECAST_SYNC_CRON", "0 2 * * *")      // Todos os dias às 2h da manhã
	viper.SetDefault("FORECAST_SYNC_MAX_CONCURRENT_JOBS", 3) // 3 tenants em paralelo
	viper.SetDefault("FORECAST_SYNC_RETENTION_DAYS", 90)
	viper.SetDefault("FORECAST_SYNC_ENABLED", false)

	viper.SetDefault("LOG_LEVEL", "info")
}

func NewConfig() (*Config, error) {
	loadEnvFile() // ONLY LOCAL

	SetDefaults()

	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logrus.Debug("Usando variáveis carregadas pelo godotenv (viper não conseguiu ler .env): ", err)
	}

	return Load(viper.GetViper())
}

// Load decodifica a configuração a partir de uma instância do viper já populada
func Load(v *viper.Viper) (*Config, error) {
	config := &Config{}

	err := v.Unmarshal(config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	config.Database.DSN = buildDSN(config.Database)
	config.Forecast.Tenants = normalizeTenants(config.Forecast.Tenants)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate verifica os valores que não podem ser corrigidos por padrão
func (c *Config) Validate() error {
	if !tableNamePattern.MatchString(c.Database.SalesTable) {
		return fmt.Errorf("nome de tabela de vendas inválido: %q", c.Database.SalesTable)
	}
	if len(c.Forecast.Tenants) == 0 {
		return errors.New("nenhum tenant configurado em FORECAST_TENANTS")
	}
	if c.Forecast.WeeklyHorizon < 1 || c.Forecast.MonthlyHorizon < 1 {
		return errors.New("os horizontes padrão de previsão devem ser positivos")
	}
	if c.Cache.Backend != CacheBackendMemory && c.Cache.Backend != CacheBackendRedis {
		return fmt.Errorf("backend de cache desconhecido: %q", c.Cache.Backend)
	}
	if c.ForecastSync.MaxConcurrentJobs < 1 {
		c.ForecastSync.MaxConcurrentJobs = 1
	}
	return c.Forecast.Policy().Validate()
}

// Policy converte os cortes configurados na política do seletor de modelos
func (f Forecast) Policy() forecast.Policy {
	return forecast.Policy{
		Weekly: forecast.Thresholds{
			Trend:    f.WeeklyTrendThreshold,
			Seasonal: f.WeeklySeasonalThreshold,
		},
		Monthly: forecast.Thresholds{
			Trend:    f.MonthlyTrendThreshold,
			Seasonal: f.MonthlySeasonalThreshold,
		},
	}
}

// DefaultHorizon retorna o horizonte usado quando a chamada não informa um
func (f Forecast) DefaultHorizon(g forecast.Granularity) int {
	if g == forecast.Monthly {
		return f.MonthlyHorizon
	}
	return f.WeeklyHorizon
}

func normalizeTenants(tenants []string) []string {
	out := make([]string, 0, len(tenants))
	seen := make(map[string]bool, len(tenants))
	for _, t := range tenants {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func buildDSN(db Database) string {
	dsn := fmt.Sprintf("%s://%s:%s@%s", db.Driver, db.User, db.Password, db.URL)
	if db.SSLMode != "" {
		dsn = fmt.Sprintf("%s?sslmode=%s", dsn, db.SSLMode)
	}
	return dsn
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	locations := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(filepath.Dir(cwd), ".env"),
		filepath.Join(cwd, "../../.env"),
	}

	for _, location := range locations {
		if err := godotenv.Load(location); err == nil {
			logrus.Info("Arquivo .env carregado com sucesso de: ", location)
			return
		}
	}

	logrus.Debug("Nenhum arquivo .env encontrado, usando somente variáveis de ambiente")
}
