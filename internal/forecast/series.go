package forecast

import (
	"math"
	"sort"
	"time"
)

// Observation é um par (instante, receita) vindo dos registros de vendas harmonizados
type Observation struct {
	Time    time.Time `json:"time"`
	Revenue float64   `json:"revenue"`
}

// Bucket é uma entrada da série regular
type Bucket struct {
	Start   time.Time `json:"start"`
	Revenue float64   `json:"revenue"`
}

// Series é uma série regular: buckets contíguos, estritamente crescentes e sem lacunas
type Series struct {
	Granularity Granularity
	Buckets     []Bucket
}

// Len retorna o número de buckets
func (s Series) Len() int {
	return len(s.Buckets)
}

// Values retorna as receitas na ordem dos buckets
func (s Series) Values() []float64 {
	values := make([]float64, len(s.Buckets))
	for i, b := range s.Buckets {
		values[i] = b.Revenue
	}
	return values
}

// Last retorna o início do último bucket
func (s Series) Last() time.Time {
	if len(s.Buckets) == 0 {
		return time.Time{}
	}
	return s.Buckets[len(s.Buckets)-1].Start
}

// BuildSeries agrega as observações em buckets da granularidade informada,
// preenche lacunas com zero e descarta os buckets zerados anteriores à primeira venda.
// Retorna ErrNoData quando não há nenhuma observação com receita positiva.
func BuildSeries(observations []Observation, granularity Granularity) (Series, error) {
	if err := granularity.Validate(); err != nil {
		return Series{}, err
	}

	valid := make([]Observation, 0, len(observations))
	for _, obs := range observations {
		if obs.Revenue <= 0 || math.IsNaN(obs.Revenue) || math.IsInf(obs.Revenue, 0) {
			continue
		}
		valid = append(valid, obs)
	}

	if len(valid) == 0 {
		return Series{Granularity: granularity}, ErrNoData
	}

	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].Time.Before(valid[j].Time)
	})

	totals := make(map[time.Time]float64)
	for _, obs := range valid {
		totals[granularity.BucketStart(obs.Time)] += obs.Revenue
	}

	first := granularity.BucketStart(valid[0].Time)
	last := granularity.BucketStart(valid[len(valid)-1].Time)

	buckets := make([]Bucket, 0)
	for i, current := 0, first; !current.After(last); i++ {
		buckets = append(buckets, Bucket{Start: current, Revenue: totals[current]})
		current = granularity.Advance(first, i+1)
	}

	return Series{Granularity: granularity, Buckets: trimLeadingZeros(buckets)}, nil
}

// trimLeadingZeros remove o período pré-operacional; zeros internos são mantidos.
// Uma série inteiramente zerada é devolvida sem corte.
func trimLeadingZeros(buckets []Bucket) []Bucket {
	for i, b := range buckets {
		if b.Revenue > 0 {
			return buckets[i:]
		}
	}
	return buckets
}
