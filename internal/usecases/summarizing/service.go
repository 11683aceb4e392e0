package summarizing

import (
	"context"
	"errors"
	"sort"

	pkgerrors "github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vfg2006/sales-forecast-api/infrastructure/repository"
	"github.com/vfg2006/sales-forecast-api/internal/domain"
	"github.com/vfg2006/sales-forecast-api/internal/forecast"
)

// ErrNoRevenue indica que o período filtrado não tem receita positiva em nenhum marketplace
var ErrNoRevenue = errors.New("nenhuma receita positiva no período filtrado")

const periodLayout = "02/01"

var hundred = decimal.NewFromInt(100)

// ObservationSource entrega as observações diárias de receita de um tenant
type ObservationSource interface {
	Observations(ctx context.Context, tenant string) ([]forecast.Observation, error)
}

type Summarizer interface {
	Summary(ctx context.Context, tenant string, filter domain.SalesFilter) (*domain.SummaryReport, error)
	MarketplaceBreakdown(ctx context.Context, tenant string, filter domain.SalesFilter) ([]*domain.MarketplaceRevenue, error)
	ConcentrationRisk(ctx context.Context, tenant string, filter domain.SalesFilter) (*domain.ConcentrationRisk, error)
	Trend(ctx context.Context, tenant string, granularity forecast.Granularity) (forecast.Series, error)
}

type Service struct {
	tenants      []string
	salesRepo    repository.SalesRecordRepository
	observations ObservationSource
}

func NewService(tenants []string, salesRepo repository.SalesRecordRepository, observations ObservationSource) *Service {
	return &Service{
		tenants:      tenants,
		salesRepo:    salesRepo,
		observations: observations,
	}
}

// Summary calcula os totais do período e, quando início e fim foram informados,
// compara com o período anterior de mesma duração
func (s *Service) Summary(ctx context.Context, tenant string, filter domain.SalesFilter) (*domain.SummaryReport, error) {
	tenant, err := domain.ResolveTenant(s.tenants, tenant)
	if err != nil {
		return nil, err
	}

	current, err := s.summarize(ctx, tenant, filter)
	if err != nil {
		return nil, err
	}

	report := &domain.SummaryReport{
		Tenant:  tenant,
		Current: current,
	}

	previousFilter, ok := filter.PreviousPeriod()
	if !ok {
		return report, nil
	}

	previous, err := s.summarize(ctx, tenant, previousFilter)
	if err != nil {
		return nil, err
	}

	report.Previous = &previous
	report.Comparison = &domain.SummaryComparison{
		RevenuePct:     percentChange(current.Revenue, previous.Revenue),
		NetProfitPct:   percentChange(current.NetProfit, previous.NetProfit),
		OrdersPct:      percentChange(decimal.NewFromInt(current.Orders), decimal.NewFromInt(previous.Orders)),
		TicketPct:      percentChange(current.AverageTicket, previous.AverageTicket),
		PreviousPeriod: previousFilter.StartDate.Format(periodLayout) + " a " + previousFilter.EndDate.Format(periodLayout),
	}

	return report, nil
}

// MarketplaceBreakdown retorna receita, lucro e pedidos por marketplace, da maior para a menor receita
func (s *Service) MarketplaceBreakdown(ctx context.Context, tenant string, filter domain.SalesFilter) ([]*domain.MarketplaceRevenue, error) {
	tenant, err := domain.ResolveTenant(s.tenants, tenant)
	if err != nil {
		return nil, err
	}

	totals, err := s.totals(ctx, tenant, filter)
	if err != nil {
		return nil, err
	}

	breakdown := make([]*domain.MarketplaceRevenue, 0, len(totals))
	for _, t := range totals {
		breakdown = append(breakdown, &domain.MarketplaceRevenue{
			Marketplace: t.Marketplace,
			Revenue:     t.Revenue.Round(2),
			NetProfit:   t.NetProfit.Round(2),
			Orders:      t.Orders,
		})
	}

	sort.SliceStable(breakdown, func(i, j int) bool {
		if !breakdown[i].Revenue.Equal(breakdown[j].Revenue) {
			return breakdown[i].Revenue.GreaterThan(breakdown[j].Revenue)
		}
		return breakdown[i].Marketplace < breakdown[j].Marketplace
	})

	return breakdown, nil
}

// ConcentrationRisk calcula o índice Herfindahl-Hirschman sobre a participação de cada
// marketplace na receita positiva do período
func (s *Service) ConcentrationRisk(ctx context.Context, tenant string, filter domain.SalesFilter) (*domain.ConcentrationRisk, error) {
	tenant, err := domain.ResolveTenant(s.tenants, tenant)
	if err != nil {
		return nil, err
	}

	totals, err := s.totals(ctx, tenant, filter)
	if err != nil {
		return nil, err
	}

	positive := make([]*domain.MarketplaceTotals, 0, len(totals))
	total := decimal.Zero
	for _, t := range totals {
		if !t.Revenue.IsPositive() {
			continue
		}
		positive = append(positive, t)
		total = total.Add(t.Revenue)
	}

	if len(positive) == 0 {
		return nil, pkgerrors.Wrapf(ErrNoRevenue, "tenant %s", tenant)
	}

	sort.SliceStable(positive, func(i, j int) bool {
		if !positive[i].Revenue.Equal(positive[j].Revenue) {
			return positive[i].Revenue.GreaterThan(positive[j].Revenue)
		}
		return positive[i].Marketplace < positive[j].Marketplace
	})

	hhi := decimal.Zero
	distribution := make([]domain.MarketplaceShare, 0, len(positive))
	for _, t := range positive {
		share := t.Revenue.Div(total).Mul(hundred)
		hhi = hhi.Add(share.Mul(share))

		distribution = append(distribution, domain.MarketplaceShare{
			Marketplace: t.Marketplace,
			Revenue:     t.Revenue.Round(2),
			SharePct:    share.Round(2).InexactFloat64(),
		})
	}

	score := hhi.Round(0).InexactFloat64()
	dominant := positive[0]

	return &domain.ConcentrationRisk{
		Tenant:           tenant,
		HHI:              score,
		Level:            domain.ClassifyHHI(score),
		TotalRevenue:     total.Round(2),
		Dominant:         dominant.Marketplace,
		DominantSharePct: distribution[0].SharePct,
		RevenueAtRisk:    dominant.Revenue.Round(2),
		Distribution:     distribution,
	}, nil
}

// Trend devolve a série regular de receita usada como entrada das previsões
func (s *Service) Trend(ctx context.Context, tenant string, granularity forecast.Granularity) (forecast.Series, error) {
	if err := granularity.Validate(); err != nil {
		return forecast.Series{}, err
	}

	observations, err := s.observations.Observations(ctx, tenant)
	if err != nil {
		return forecast.Series{}, err
	}

	series, err := forecast.BuildSeries(observations, granularity)
	if errors.Is(err, forecast.ErrNoData) {
		return forecast.Series{Granularity: granularity, Buckets: []forecast.Bucket{}}, nil
	}

	return series, err
}

func (s *Service) totals(ctx context.Context, tenant string, filter domain.SalesFilter) ([]*domain.MarketplaceTotals, error) {
	totals, err := s.salesRepo.TotalsByMarketplace(ctx, tenant, filter)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "erro ao buscar totais por marketplace do tenant %s", tenant)
	}
	return totals, nil
}

func (s *Service) summarize(ctx context.Context, tenant string, filter domain.SalesFilter) (domain.SalesSummary, error) {
	totals, err := s.totals(ctx, tenant, filter)
	if err != nil {
		return domain.SalesSummary{}, err
	}

	return aggregate(totals), nil
}

// aggregate soma os totais dos marketplaces. Frete e comissões chegam negativos da
// tabela harmonizada e são expostos em valor absoluto; o ticket médio é a receita média por linha.
func aggregate(totals []*domain.MarketplaceTotals) domain.SalesSummary {
	revenue, netProfit, freight, commission := decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
	var orders, rows int64

	for _, t := range totals {
		revenue = revenue.Add(t.Revenue)
		netProfit = netProfit.Add(t.NetProfit)
		freight = freight.Add(t.Freight)
		commission = commission.Add(t.Commission)
		orders += t.Orders
		rows += t.Rows
	}

	ticket := decimal.Zero
	if rows > 0 {
		ticket = revenue.Div(decimal.NewFromInt(rows))
	}

	return domain.SalesSummary{
		Revenue:       revenue.Round(2),
		NetProfit:     netProfit.Round(2),
		Freight:       freight.Abs().Round(2),
		Commissions:   commission.Abs().Round(2),
		Orders:        orders,
		AverageTicket: ticket.Round(2),
		Cost:          revenue.Sub(netProfit).Round(2),
	}
}

// percentChange segue a regra do painel: sem base anterior, 0 se nada mudou e 100 caso contrário
func percentChange(current, previous decimal.Decimal) float64 {
	if previous.IsZero() {
		if current.IsZero() {
			return 0
		}
		return 100
	}

	return current.Sub(previous).Div(previous).Mul(hundred).Round(2).InexactFloat64()
}
