package forecast

import (
	"fmt"
	"strings"
	"time"
)

// Granularity define o tamanho de cada bucket da série
type Granularity string

const (
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
)

const (
	weeklySeasonalPeriod  = 52
	monthlySeasonalPeriod = 12
)

// ParseGranularity converte o token informado pelo chamador em uma Granularity válida
func ParseGranularity(token string) (Granularity, error) {
	switch Granularity(strings.ToLower(strings.TrimSpace(token))) {
	case Weekly:
		return Weekly, nil
	case Monthly:
		return Monthly, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidGranularity, token)
	}
}

// Validate retorna ErrInvalidGranularity para valores fora do contrato
func (g Granularity) Validate() error {
	if g != Weekly && g != Monthly {
		return fmt.Errorf("%w: %q", ErrInvalidGranularity, string(g))
	}
	return nil
}

// SeasonalPeriod retorna o número de buckets de um ciclo anual
func (g Granularity) SeasonalPeriod() int {
	if g == Monthly {
		return monthlySeasonalPeriod
	}
	return weeklySeasonalPeriod
}

// BucketStart retorna o início do bucket que contém t (segunda-feira ou dia 1), em UTC
func (g Granularity) BucketStart(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)

	if g == Monthly {
		return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
	}

	// time.Sunday == 0; deslocamos para que segunda seja o dia 0 da semana
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// Advance avança n buckets a partir de start
func (g Granularity) Advance(start time.Time, n int) time.Time {
	if g == Monthly {
		return start.AddDate(0, n, 0)
	}
	return start.AddDate(0, 0, 7*n)
}
