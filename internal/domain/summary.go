package domain

import "github.com/shopspring/decimal"

type SalesSummary struct {
	Revenue       decimal.Decimal `json:"revenue"`
	NetProfit     decimal.Decimal `json:"net_profit"`
	Freight       decimal.Decimal `json:"freight"`
	Commissions   decimal.Decimal `json:"commissions"`
	Orders        int64           `json:"orders"`
	AverageTicket decimal.Decimal `json:"average_ticket"`
	Cost          decimal.Decimal `json:"cost"`
}

// SummaryComparison traz as variações percentuais contra o período anterior
type SummaryComparison struct {
	RevenuePct     float64 `json:"revenue_pct"`
	NetProfitPct   float64 `json:"net_profit_pct"`
	OrdersPct      float64 `json:"orders_pct"`
	TicketPct      float64 `json:"ticket_pct"`
	PreviousPeriod string  `json:"previous_period"`
}

type SummaryReport struct {
	Tenant     string             `json:"tenant"`
	Current    SalesSummary       `json:"current"`
	Previous   *SalesSummary      `json:"previous,omitempty"`
	Comparison *SummaryComparison `json:"comparison,omitempty"`
}

type MarketplaceRevenue struct {
	Marketplace string          `json:"marketplace"`
	Revenue     decimal.Decimal `json:"revenue"`
	NetProfit   decimal.Decimal `json:"net_profit"`
	Orders      int64           `json:"orders"`
}
