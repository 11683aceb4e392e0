package forecast

import "math"

const (
	// z95 é o quantil bicaudal de 95% da normal
	z95 = 1.96

	// sigmaFloorRatio é a fração da média usada quando o desvio padrão é zero
	sigmaFloorRatio = 0.05

	// sigmaEpsilon trata como zero o ruído de ponto flutuante de um ajuste perfeito
	sigmaEpsilon = 1e-9
)

// Sigma retorna o desvio padrão amostral dos resíduos, aplicando o piso
// max(média(série), 1) * 0.05 quando o resultado é zero ou não finito.
func Sigma(residuals []float64, series []float64) float64 {
	sigma := stdDev(residuals)
	floor := sigmaFloor(series)
	if !isFinite(sigma) || sigma <= floor*sigmaEpsilon {
		return floor
	}
	return sigma
}

// Margin é a meia largura do intervalo de 95% no passo step (1..h)
func Margin(sigma float64, step int) float64 {
	if step < 1 {
		step = 1
	}
	return z95 * sigma * math.Sqrt(float64(step))
}

// Bounds limita a estimativa central a >= 0 e devolve (central, inferior, superior).
// O limite superior não é truncado.
func Bounds(central, sigma float64, step int) (float64, float64, float64) {
	if central < 0 || !isFinite(central) {
		central = 0
	}

	margin := Margin(sigma, step)
	lower := math.Max(0, central-margin)
	upper := central + margin

	return central, lower, upper
}

func sigmaFloor(series []float64) float64 {
	return math.Max(meanOf(series), 1) * sigmaFloorRatio
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdDev usa n-1 no denominador; menos de dois valores resultam em zero
func stdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}

	mean := meanOf(values)
	sum := 0.0
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}
