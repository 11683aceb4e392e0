package domain

import (
	"time"

	"github.com/vfg2006/sales-forecast-api/internal/forecast"
)

// ForecastSnapshot é a última previsão calculada para um tenant e uma granularidade
type ForecastSnapshot struct {
	ID          string               `json:"id"`
	Tenant      string               `json:"tenant"`
	Granularity forecast.Granularity `json:"granularity"`
	Status      forecast.Status      `json:"status"`
	Model       forecast.Model       `json:"model,omitempty"`
	Horizon     int                  `json:"horizon"`
	Fallback    bool                 `json:"fallback"`
	Result      *forecast.Result     `json:"result"`
	GeneratedAt time.Time            `json:"generated_at"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// NewForecastSnapshot copia para o snapshot os campos do resultado usados em consultas
func NewForecastSnapshot(id, tenant string, result *forecast.Result, generatedAt time.Time) *ForecastSnapshot {
	return &ForecastSnapshot{
		ID:          id,
		Tenant:      tenant,
		Granularity: result.Granularity,
		Status:      result.Status,
		Model:       result.Model,
		Horizon:     result.Horizon,
		Fallback:    result.Fallback,
		Result:      result,
		GeneratedAt: generatedAt,
	}
}
