package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vfg2006/sales-forecast-api/infrastructure/database/postgres"
	"github.com/vfg2006/sales-forecast-api/internal/domain"
)

// SalesRecordRepository lê a tabela harmonizada de vendas mantida pelo ETL
type SalesRecordRepository interface {
	// ListRevenueObservations retorna a receita diária positiva do tenant em ordem cronológica
	ListRevenueObservations(ctx context.Context, tenant string) ([]domain.RevenueObservation, error)
	// TotalsByMarketplace soma as métricas de venda por marketplace no período filtrado
	TotalsByMarketplace(ctx context.Context, tenant string, filter domain.SalesFilter) ([]*domain.MarketplaceTotals, error)
}

type salesRecordRepository struct {
	conn  postgres.Queryer
	table string
}

func NewSalesRecordRepository(conn postgres.Queryer, table string) SalesRecordRepository {
	return &salesRecordRepository{
		conn:  conn,
		table: table,
	}
}

func (r *salesRecordRepository) ListRevenueObservations(ctx context.Context, tenant string) ([]domain.RevenueObservation, error) {
	query, args, err := squirrel.
		Select("sale_date", "SUM(revenue) AS revenue").
		From(r.table).
		Where(squirrel.Eq{"tenant": tenant}).
		Where(squirrel.Gt{"revenue": 0}).
		GroupBy("sale_date").
		OrderBy("sale_date ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	observations := make([]domain.RevenueObservation, 0)
	for rows.Next() {
		var (
			date    time.Time
			revenue float64
		)
		if err := rows.Scan(&date, &revenue); err != nil {
			return nil, fmt.Errorf("erro ao escanear receita diária: %w", err)
		}
		observations = append(observations, domain.RevenueObservation{Date: date, Revenue: revenue})
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return observations, nil
}

func (r *salesRecordRepository) TotalsByMarketplace(ctx context.Context, tenant string, filter domain.SalesFilter) ([]*domain.MarketplaceTotals, error) {
	builder := squirrel.
		Select(
			"marketplace",
			"COALESCE(SUM(revenue), 0)",
			"COALESCE(SUM(net_profit), 0)",
			"COALESCE(SUM(freight), 0)",
			"COALESCE(SUM(commission), 0)",
			"COALESCE(SUM(orders), 0)",
			"COUNT(*)",
		).
		From(r.table).
		Where(squirrel.Eq{"tenant": tenant})

	if filter.StartDate != nil {
		builder = builder.Where(squirrel.GtOrEq{"sale_date": filter.StartDate.Format(time.DateOnly)})
	}
	if filter.EndDate != nil {
		builder = builder.Where(squirrel.LtOrEq{"sale_date": filter.EndDate.Format(time.DateOnly)})
	}
	if filter.Source != "" {
		builder = builder.Where(squirrel.Eq{"source": filter.Source})
	}
	if filter.Marketplace != "" {
		builder = builder.Where(squirrel.Eq{"marketplace": filter.Marketplace})
	}

	query, args, err := builder.
		GroupBy("marketplace").
		OrderBy("marketplace ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	totals := make([]*domain.MarketplaceTotals, 0)
	for rows.Next() {
		t := &domain.MarketplaceTotals{}
		err := rows.Scan(
			&t.Marketplace,
			&t.Revenue,
			&t.NetProfit,
			&t.Freight,
			&t.Commission,
			&t.Orders,
			&t.Rows,
		)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear totais por marketplace: %w", err)
		}
		totals = append(totals, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return totals, nil
}
