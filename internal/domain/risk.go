package domain

import "github.com/shopspring/decimal"

type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
)

// Faixas do índice Herfindahl-Hirschman
const (
	hhiModerateFloor = 1500
	hhiHighFloor     = 2500
)

// ClassifyHHI classifica o índice de concentração
func ClassifyHHI(score float64) RiskLevel {
	switch {
	case score < hhiModerateFloor:
		return RiskLow
	case score <= hhiHighFloor:
		return RiskModerate
	default:
		return RiskHigh
	}
}

type MarketplaceShare struct {
	Marketplace string          `json:"marketplace"`
	Revenue     decimal.Decimal `json:"revenue"`
	SharePct    float64         `json:"share_percentage"`
}

// ConcentrationRisk mede a dependência do tenant em relação aos marketplaces.
// RevenueAtRisk é a receita do marketplace dominante no período.
type ConcentrationRisk struct {
	Tenant           string             `json:"tenant"`
	HHI              float64            `json:"hhi_score"`
	Level            RiskLevel          `json:"risk_level"`
	TotalRevenue     decimal.Decimal    `json:"total_revenue"`
	Dominant         string             `json:"dominant_marketplace"`
	DominantSharePct float64            `json:"dominant_share_percentage"`
	RevenueAtRisk    decimal.Decimal    `json:"revenue_at_risk"`
	Distribution     []MarketplaceShare `json:"distribution"`
}
