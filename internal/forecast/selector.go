package forecast

import "fmt"

// Model identifica a variante de decomposição usada na previsão
type Model string

const (
	ModelSimpleLevel   Model = "simple_level"
	ModelTrendOnly     Model = "trend_only"
	ModelTrendSeasonal Model = "trend_seasonal"
	ModelFallback      Model = "trailing_average"
)

// Thresholds são os cortes de tamanho de série para uma granularidade
type Thresholds struct {
	Trend    int
	Seasonal int
}

// MinHistory é o menor número de buckets que gera previsão; abaixo dele o resultado é insufficient_history
const MinHistory = 4

// Policy define os cortes de tendência e sazonalidade usados pelo seletor de modelos.
// Os valores são constantes de política, não regra de negócio.
type Policy struct {
	Weekly  Thresholds
	Monthly Thresholds
}

// DefaultPolicy retorna os cortes 12 / 52 (semanal) e 12 / 24 (mensal)
func DefaultPolicy() Policy {
	return Policy{
		Weekly:  Thresholds{Trend: 12, Seasonal: 52},
		Monthly: Thresholds{Trend: 12, Seasonal: 24},
	}
}

// Validate garante que os cortes são crescentes e que o corte sazonal cobre um ciclo completo
func (p Policy) Validate() error {
	for _, g := range []Granularity{Weekly, Monthly} {
		t := p.thresholds(g)
		if t.Trend < MinHistory || t.Seasonal < t.Trend {
			return fmt.Errorf("forecast: cortes inválidos para %s: mínimo=%d tendência=%d sazonal=%d",
				g, MinHistory, t.Trend, t.Seasonal)
		}
		if t.Seasonal < g.SeasonalPeriod() {
			return fmt.Errorf("forecast: corte sazonal de %s (%d) menor que o período %d",
				g, t.Seasonal, g.SeasonalPeriod())
		}
	}

	return nil
}

func (p Policy) thresholds(g Granularity) Thresholds {
	if g == Monthly {
		return p.Monthly
	}
	return p.Weekly
}

// Spec descreve o modelo escolhido e quais componentes estão ativos
type Spec struct {
	Model    Model
	Trend    bool
	Seasonal bool
	Period   int
}

// Select escolhe o modelo de forma determinística a partir do tamanho da série.
// Séries menores que MinHistory retornam ErrInsufficientHistory.
func (p Policy) Select(n int, g Granularity) (Spec, error) {
	if err := g.Validate(); err != nil {
		return Spec{}, err
	}

	if n < MinHistory {
		return Spec{}, fmt.Errorf("%w: %d buckets, mínimo %d", ErrInsufficientHistory, n, MinHistory)
	}

	t := p.thresholds(g)
	switch {
	case n >= t.Seasonal:
		return Spec{Model: ModelTrendSeasonal, Trend: true, Seasonal: true, Period: g.SeasonalPeriod()}, nil
	case n >= t.Trend:
		return Spec{Model: ModelTrendOnly, Trend: true}, nil
	default:
		return Spec{Model: ModelSimpleLevel}, nil
	}
}
