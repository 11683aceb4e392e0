package forecast

import (
	"errors"
	"math"
)

// Fitted é um modelo ajustado a uma série
type Fitted interface {
	// Residuals retorna os resíduos dentro da amostra (observado - estimado)
	Residuals() []float64
	// Forecast retorna h estimativas centrais a partir do último bucket
	Forecast(h int) []float64
	// Params retorna os parâmetros de suavização escolhidos
	Params() Params
}

// Fitter ajusta um modelo a partir dos valores da série e da especificação escolhida
type Fitter interface {
	Fit(values []float64, spec Spec) (Fitted, error)
}

// Params são os parâmetros de suavização exponencial.
// Beta só é usado com tendência e Gamma só com sazonalidade.
type Params struct {
	Alpha float64 `json:"alpha"`
	Beta  float64 `json:"beta,omitempty"`
	Gamma float64 `json:"gamma,omitempty"`
}

// Grid define os candidatos avaliados pela busca de parâmetros
type Grid struct {
	Alphas []float64
	Betas  []float64
	Gammas []float64
}

// DefaultGrid cobre alpha de 0.05 a 0.95 e valores usuais de beta e gamma
func DefaultGrid() Grid {
	alphas := make([]float64, 0, 19)
	for i := 1; i <= 19; i++ {
		alphas = append(alphas, float64(i)*0.05)
	}

	return Grid{
		Alphas: alphas,
		Betas:  []float64{0.01, 0.05, 0.1, 0.2, 0.3},
		Gammas: []float64{0.05, 0.1, 0.2, 0.3, 0.5},
	}
}

// HoltWinters é a suavização exponencial aditiva com componentes opcionais:
// só nível, nível + tendência, ou nível + tendência + sazonalidade.
// Os parâmetros são escolhidos por busca em grade minimizando a soma dos
// quadrados dos resíduos um passo à frente, sem aleatoriedade.
type HoltWinters struct {
	Grid Grid
}

// NewHoltWinters cria o ajustador com a grade padrão
func NewHoltWinters() *HoltWinters {
	return &HoltWinters{Grid: DefaultGrid()}
}

// Fit avalia todos os candidatos da grade e mantém o de menor SSE.
// Empates mantêm o primeiro candidato avaliado.
func (hw *HoltWinters) Fit(values []float64, spec Spec) (Fitted, error) {
	if len(values) < 2 {
		return nil, &ModelFitError{Model: spec.Model, Reason: "série com menos de dois pontos"}
	}
	if spec.Seasonal && (spec.Period < 2 || len(values) < spec.Period) {
		return nil, &ModelFitError{Model: spec.Model, Reason: "série menor que um ciclo sazonal"}
	}

	betas := []float64{0}
	if spec.Trend {
		betas = hw.Grid.Betas
	}
	gammas := []float64{0}
	if spec.Seasonal {
		gammas = hw.Grid.Gammas
	}

	var (
		best    *holtWintersFit
		bestSSE = math.Inf(1)
		lastErr error
	)

	for _, alpha := range hw.Grid.Alphas {
		for _, beta := range betas {
			for _, gamma := range gammas {
				if spec.Seasonal && gamma > 1-alpha {
					continue
				}

				fit, sse, err := runHoltWinters(values, spec, Params{Alpha: alpha, Beta: beta, Gamma: gamma})
				if err != nil {
					lastErr = err
					continue
				}

				if sse < bestSSE {
					best, bestSSE = fit, sse
				}
			}
		}
	}

	if best == nil {
		if lastErr == nil {
			lastErr = &ModelFitError{Model: spec.Model, Reason: "nenhum candidato de parâmetros avaliado"}
		}
		return nil, lastErr
	}

	return best, nil
}

// holtWintersFit guarda o estado final das recorrências
type holtWintersFit struct {
	spec      Spec
	params    Params
	level     float64
	trend     float64
	seasonal  []float64
	lastIndex int
	residuals []float64
}

func (f *holtWintersFit) Residuals() []float64 {
	out := make([]float64, len(f.residuals))
	copy(out, f.residuals)
	return out
}

func (f *holtWintersFit) Params() Params {
	return f.params
}

func (f *holtWintersFit) Forecast(h int) []float64 {
	out := make([]float64, h)
	for i := 1; i <= h; i++ {
		value := f.level
		if f.spec.Trend {
			value += float64(i) * f.trend
		}
		if f.spec.Seasonal {
			value += f.seasonal[(f.lastIndex+i)%f.spec.Period]
		}
		out[i-1] = value
	}
	return out
}

// runHoltWinters executa as recorrências com parâmetros fixos e retorna o SSE
func runHoltWinters(values []float64, spec Spec, params Params) (*holtWintersFit, float64, error) {
	n := len(values)

	var (
		level    float64
		trend    float64
		seasonal []float64
		start    int
	)

	if spec.Seasonal {
		level, trend, seasonal = initSeasonal(values, spec.Period)
	} else {
		level = values[0]
		if spec.Trend {
			trend = values[1] - values[0]
		}
		start = 1
	}

	residuals := make([]float64, 0, n-start)
	sse := 0.0

	for t := start; t < n; t++ {
		season := 0.0
		if spec.Seasonal {
			season = seasonal[t%spec.Period]
		}

		y := values[t]
		residual := y - (level + trend + season)
		residuals = append(residuals, residual)
		sse += residual * residual

		previous := level
		level = params.Alpha*(y-season) + (1-params.Alpha)*(previous+trend)
		if spec.Trend {
			trend = params.Beta*(level-previous) + (1-params.Beta)*trend
		}
		if spec.Seasonal {
			seasonal[t%spec.Period] = params.Gamma*(y-level) + (1-params.Gamma)*season
		}

		if !isFinite(level) || !isFinite(trend) {
			return nil, 0, &ModelFitError{Model: spec.Model, Reason: "divergência numérica nas recorrências"}
		}
	}

	if !isFinite(sse) {
		return nil, 0, &ModelFitError{Model: spec.Model, Reason: "soma dos quadrados não finita"}
	}

	return &holtWintersFit{
		spec:      spec,
		params:    params,
		level:     level,
		trend:     trend,
		seasonal:  seasonal,
		lastIndex: n - 1,
		residuals: residuals,
	}, sse, nil
}

// initSeasonal estima nível, tendência e índices sazonais iniciais a partir do primeiro ciclo.
// A tendência usa os pares (y[p+i], y[i]) disponíveis; sem pares ela começa em zero.
// O nível devolvido corresponde ao instante anterior ao primeiro bucket.
func initSeasonal(values []float64, period int) (float64, float64, []float64) {
	firstCycle := values[:period]
	mean := meanOf(firstCycle)

	pairs := len(values) - period
	if pairs > period {
		pairs = period
	}

	trend := 0.0
	if pairs > 0 {
		for i := 0; i < pairs; i++ {
			trend += (values[period+i] - values[i]) / float64(period)
		}
		trend /= float64(pairs)
	}

	level := mean - trend*float64(period+1)/2

	seasonal := make([]float64, period)
	for i, y := range firstCycle {
		seasonal[i] = y - (level + float64(i+1)*trend)
	}

	return level, trend, seasonal
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// IsModelFitError indica se err representa uma falha de ajuste recuperável
func IsModelFitError(err error) bool {
	return errors.Is(err, ErrModelFit)
}
