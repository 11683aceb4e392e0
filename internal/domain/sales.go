package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RevenueObservation é a receita de um dia de vendas de um tenant
type RevenueObservation struct {
	Date    time.Time
	Revenue float64
}

// SalesFilter restringe as consultas sobre a tabela harmonizada de vendas.
// Datas nulas e textos vazios não filtram.
type SalesFilter struct {
	StartDate   *time.Time
	EndDate     *time.Time
	Source      string
	Marketplace string
}

// HasPeriod indica se o filtro tem início e fim definidos
func (f SalesFilter) HasPeriod() bool {
	return f.StartDate != nil && f.EndDate != nil
}

// PreviousPeriod devolve o filtro do período anterior com a mesma duração,
// terminando um dia antes do início do período atual
func (f SalesFilter) PreviousPeriod() (SalesFilter, bool) {
	if !f.HasPeriod() {
		return SalesFilter{}, false
	}

	duration := f.EndDate.Sub(*f.StartDate)
	prevEnd := f.StartDate.AddDate(0, 0, -1)
	prevStart := prevEnd.Add(-duration)

	return SalesFilter{
		StartDate:   &prevStart,
		EndDate:     &prevEnd,
		Source:      f.Source,
		Marketplace: f.Marketplace,
	}, true
}

// MarketplaceTotals são as somas de um marketplace no período filtrado
type MarketplaceTotals struct {
	Marketplace string
	Revenue     decimal.Decimal
	NetProfit   decimal.Decimal
	Freight     decimal.Decimal
	Commission  decimal.Decimal
	Orders      int64
	Rows        int64
}
