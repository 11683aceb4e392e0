package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	jsoniter "github.com/json-iterator/go"
	"github.com/lib/pq"
	"github.com/vfg2006/sales-forecast-api/infrastructure/database/postgres"
	"github.com/vfg2006/sales-forecast-api/internal/domain"
	"github.com/vfg2006/sales-forecast-api/internal/forecast"
)

const (
	forecastSnapshotsTable = "forecast_snapshots"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type ForecastSnapshotRepository interface {
	// SaveOrUpdate grava os snapshots numa única transação, substituindo o anterior de cada tenant/granularidade
	SaveOrUpdate(ctx context.Context, snapshots ...*domain.ForecastSnapshot) error
	GetLatest(ctx context.Context, tenant string, granularity forecast.Granularity) (*domain.ForecastSnapshot, error)
	DeleteOlderThan(ctx context.Context, days int) (int64, error)
}

type forecastSnapshotRepository struct {
	conn postgres.Conn
}

func NewForecastSnapshotRepository(conn postgres.Conn) ForecastSnapshotRepository {
	return &forecastSnapshotRepository{
		conn: conn,
	}
}

func (r *forecastSnapshotRepository) SaveOrUpdate(ctx context.Context, snapshots ...*domain.ForecastSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	return r.conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		for _, snapshot := range snapshots {
			if err := r.upsert(ctx, tx, snapshot); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *forecastSnapshotRepository) upsert(ctx context.Context, q postgres.Queryer, snapshot *domain.ForecastSnapshot) error {
	payload, err := json.Marshal(snapshot.Result)
	if err != nil {
		return fmt.Errorf("erro ao serializar o resultado da previsão: %w", err)
	}

	query, args, err := squirrel.StatementBuilder.
		Insert(forecastSnapshotsTable).
		Columns("id", "tenant", "granularity", "status", "model", "horizon", "fallback", "payload", "generated_at").
		Values(
			snapshot.ID,
			snapshot.Tenant,
			string(snapshot.Granularity),
			string(snapshot.Status),
			string(snapshot.Model),
			snapshot.Horizon,
			snapshot.Fallback,
			payload,
			snapshot.GeneratedAt,
		).
		Suffix(`
			ON CONFLICT (tenant, granularity) DO UPDATE SET
				status = EXCLUDED.status,
				model = EXCLUDED.model,
				horizon = EXCLUDED.horizon,
				fallback = EXCLUDED.fallback,
				payload = EXCLUDED.payload,
				generated_at = EXCLUDED.generated_at,
				updated_at = NOW()
		`).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	_, err = q.ExecContext(ctx, query, args...)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			return fmt.Errorf("erro no banco de dados: %w (código: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("erro ao executar a query: %w", err)
	}

	return nil
}

func (r *forecastSnapshotRepository) GetLatest(ctx context.Context, tenant string, granularity forecast.Granularity) (*domain.ForecastSnapshot, error) {
	query, args, err := squirrel.
		Select("id", "tenant", "granularity", "status", "model", "horizon", "fallback", "payload", "generated_at", "created_at", "updated_at").
		From(forecastSnapshotsTable).
		Where(squirrel.Eq{"tenant": tenant, "granularity": string(granularity)}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	snapshot, err := r.scanSnapshot(r.conn.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao escanear snapshot: %w", err)
	}

	return snapshot, nil
}

func (r *forecastSnapshotRepository) DeleteOlderThan(ctx context.Context, days int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -days)

	query, args, err := squirrel.
		Delete(forecastSnapshotsTable).
		Where(squirrel.Lt{"generated_at": cutoff}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("erro ao construir a query: %w", err)
	}

	result, err := r.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("erro ao executar a query: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("erro ao obter número de linhas afetadas: %w", err)
	}

	return rowsAffected, nil
}

func (r *forecastSnapshotRepository) scanSnapshot(row *sql.Row) (*domain.ForecastSnapshot, error) {
	snapshot := &domain.ForecastSnapshot{}
	var (
		granularity string
		status      string
		model       string
		payload     []byte
	)

	err := row.Scan(
		&snapshot.ID,
		&snapshot.Tenant,
		&granularity,
		&status,
		&model,
		&snapshot.Horizon,
		&snapshot.Fallback,
		&payload,
		&snapshot.GeneratedAt,
		&snapshot.CreatedAt,
		&snapshot.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	snapshot.Granularity = forecast.Granularity(granularity)
	snapshot.Status = forecast.Status(status)
	snapshot.Model = forecast.Model(model)

	if payload != nil {
		result := &forecast.Result{}
		if err := json.Unmarshal(payload, result); err != nil {
			return nil, fmt.Errorf("erro ao deserializar JSON do payload: %w", err)
		}
		snapshot.Result = result
	}

	return snapshot, nil
}
