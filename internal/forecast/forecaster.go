package forecast

import (
	"errors"
	"fmt"
	"time"

	"github.com/vfg2006/sales-forecast-api/pkg/utils"
)

// Status distingue uma previsão completa dos estados "sem dados" e "histórico insuficiente"
type Status string

const (
	StatusOK                  Status = "ok"
	StatusNoData              Status = "no_data"
	StatusInsufficientHistory Status = "insufficient_history"
)

// PointType discrimina pontos históricos de pontos previstos
type PointType string

const (
	PointHistory  PointType = "history"
	PointForecast PointType = "forecast"
)

// fallbackWindow é o tamanho da janela final usada quando o ajuste falha
const fallbackWindow = 4

// Point é um registro da série de saída. Pontos históricos carregam apenas Value;
// pontos previstos carregam Central, Lower e Upper. Todos arredondados em 2 casas.
type Point struct {
	Date    string    `json:"date"`
	Type    PointType `json:"type"`
	Value   *float64  `json:"value,omitempty"`
	Central *float64  `json:"forecast_central,omitempty"`
	Lower   *float64  `json:"forecast_lower,omitempty"`
	Upper   *float64  `json:"forecast_upper,omitempty"`
}

// Result é a saída do Forecaster
type Result struct {
	Status         Status      `json:"status"`
	Granularity    Granularity `json:"granularity"`
	Horizon        int         `json:"horizon"`
	Buckets        int         `json:"buckets"`
	SelectedModel  Model       `json:"selected_model,omitempty"`
	Model          Model       `json:"model,omitempty"`
	SeasonalPeriod int         `json:"seasonal_period,omitempty"`
	Params         *Params     `json:"params,omitempty"`
	Fallback       bool        `json:"fallback"`
	FallbackReason string      `json:"fallback_reason,omitempty"`
	Sigma          float64     `json:"sigma,omitempty"`
	Points         []Point     `json:"points"`
}

// FallbackEvent descreve o uso da média móvel no lugar do modelo selecionado
type FallbackEvent struct {
	Granularity Granularity
	Model       Model
	Buckets     int
	Err         error
}

// Forecaster orquestra construção da série, seleção, ajuste, incerteza e formatação.
// Não guarda estado entre chamadas e pode ser usado concorrentemente.
type Forecaster struct {
	policy     Policy
	fitter     Fitter
	onFallback func(FallbackEvent)
}

type Option func(*Forecaster)

// WithPolicy substitui os cortes do seletor de modelos
func WithPolicy(policy Policy) Option {
	return func(f *Forecaster) {
		f.policy = policy
	}
}

// WithFitter substitui o ajustador de modelos
func WithFitter(fitter Fitter) Option {
	return func(f *Forecaster) {
		f.fitter = fitter
	}
}

// WithFallbackHook registra uma função chamada sempre que o fallback for usado
func WithFallbackHook(hook func(FallbackEvent)) Option {
	return func(f *Forecaster) {
		f.onFallback = hook
	}
}

// New cria um Forecaster com a política padrão e o ajustador Holt-Winters
func New(opts ...Option) *Forecaster {
	f := &Forecaster{
		policy: DefaultPolicy(),
		fitter: NewHoltWinters(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Policy retorna a política em uso
func (f *Forecaster) Policy() Policy {
	return f.policy
}

// Generate produz o histórico seguido de horizon pontos previstos.
// Apenas erros de contrato (granularidade ou horizonte inválidos) são retornados como erro;
// falta de dados e histórico insuficiente são informados em Result.Status.
func (f *Forecaster) Generate(observations []Observation, granularity Granularity, horizon int) (*Result, error) {
	if err := granularity.Validate(); err != nil {
		return nil, err
	}
	if horizon < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidHorizon, horizon)
	}

	result := &Result{
		Granularity: granularity,
		Horizon:     horizon,
		Points:      []Point{},
	}

	series, err := BuildSeries(observations, granularity)
	if errors.Is(err, ErrNoData) {
		result.Status = StatusNoData
		return result, nil
	}
	if err != nil {
		return nil, err
	}

	values := series.Values()
	result.Buckets = len(values)

	spec, err := f.policy.Select(len(values), granularity)
	if errors.Is(err, ErrInsufficientHistory) {
		result.Status = StatusInsufficientHistory
		return result, nil
	}
	if err != nil {
		return nil, err
	}

	result.Status = StatusOK
	result.SelectedModel = spec.Model
	result.Model = spec.Model
	result.SeasonalPeriod = spec.Period

	centrals, sigma, params, err := f.fitAndProject(values, spec, horizon)
	if err != nil {
		centrals, sigma = trailingAverage(values, horizon)
		params = nil

		result.Model = ModelFallback
		result.Fallback = true
		result.FallbackReason = err.Error()

		if f.onFallback != nil {
			f.onFallback(FallbackEvent{
				Granularity: granularity,
				Model:       spec.Model,
				Buckets:     len(values),
				Err:         err,
			})
		}
	}

	result.Params = params
	result.Sigma = utils.RoundWithTwoDecimalPlace(sigma)
	result.Points = assemblePoints(series, centrals, sigma)

	return result, nil
}

// fitAndProject ajusta o modelo e projeta o horizonte. Pânicos do ajustador e
// projeções não finitas são convertidos em ModelFitError.
func (f *Forecaster) fitAndProject(values []float64, spec Spec, horizon int) (centrals []float64, sigma float64, params *Params, err error) {
	defer func() {
		if r := recover(); r != nil {
			centrals, sigma, params = nil, 0, nil
			err = &ModelFitError{Model: spec.Model, Reason: fmt.Sprintf("pânico no ajuste: %v", r)}
		}
	}()

	fitted, err := f.fitter.Fit(values, spec)
	if err != nil {
		if !IsModelFitError(err) {
			err = &ModelFitError{Model: spec.Model, Reason: err.Error()}
		}
		return nil, 0, nil, err
	}

	centrals = fitted.Forecast(horizon)
	if len(centrals) != horizon {
		return nil, 0, nil, &ModelFitError{Model: spec.Model, Reason: "projeção com tamanho inesperado"}
	}
	for _, c := range centrals {
		if !isFinite(c) {
			return nil, 0, nil, &ModelFitError{Model: spec.Model, Reason: "projeção não finita"}
		}
	}

	p := fitted.Params()
	return centrals, Sigma(fitted.Residuals(), values), &p, nil
}

// trailingAverage usa a média dos últimos buckets como estimativa central e o
// desvio padrão da mesma janela como sigma, com o mesmo piso da estimativa normal
func trailingAverage(values []float64, horizon int) ([]float64, float64) {
	window := values
	if len(window) > fallbackWindow {
		window = window[len(window)-fallbackWindow:]
	}

	central := meanOf(window)
	sigma := Sigma(window, values)

	centrals := make([]float64, horizon)
	for i := range centrals {
		centrals[i] = central
	}

	return centrals, sigma
}

func assemblePoints(series Series, centrals []float64, sigma float64) []Point {
	points := make([]Point, 0, series.Len()+len(centrals))

	for _, b := range series.Buckets {
		value := utils.RoundWithTwoDecimalPlace(b.Revenue)
		points = append(points, Point{
			Date:  formatDate(b.Start),
			Type:  PointHistory,
			Value: &value,
		})
	}

	last := series.Last()
	for i, c := range centrals {
		step := i + 1
		central, lower, upper := Bounds(c, sigma, step)

		central = utils.RoundWithTwoDecimalPlace(central)
		lower = utils.RoundWithTwoDecimalPlace(lower)
		upper = utils.RoundWithTwoDecimalPlace(upper)

		points = append(points, Point{
			Date:    formatDate(series.Granularity.Advance(last, step)),
			Type:    PointForecast,
			Central: &central,
			Lower:   &lower,
			Upper:   &upper,
		})
	}

	return points
}

func formatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}
