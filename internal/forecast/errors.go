package forecast

import (
	"errors"
	"fmt"
)

var (
	// Erros de contrato do chamador
	ErrInvalidGranularity = errors.New("forecast: granularidade inválida")
	ErrInvalidHorizon     = errors.New("forecast: horizonte deve ser positivo")

	// Condições de dados, nunca propagadas como erro pelo Forecaster
	ErrNoData              = errors.New("forecast: nenhuma observação")
	ErrInsufficientHistory = errors.New("forecast: histórico insuficiente")

	// ErrModelFit indica falha numérica no ajuste do modelo
	ErrModelFit = errors.New("forecast: falha no ajuste do modelo")
)

// ModelFitError carrega o modelo que falhou e a causa numérica
type ModelFitError struct {
	Model  Model
	Reason string
}

func (e *ModelFitError) Error() string {
	return fmt.Sprintf("%s (%s): %s", ErrModelFit.Error(), e.Model, e.Reason)
}

func (e *ModelFitError) Unwrap() error {
	return ErrModelFit
}
