package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/sales-forecast-api/internal/domain"
	"github.com/vfg2006/sales-forecast-api/internal/forecast"
	"github.com/vfg2006/sales-forecast-api/internal/usecases/summarizing"
	"github.com/vfg2006/sales-forecast-api/pkg/utils"
)

func runSummary(args []string) error {
	fs := newFlagSet("summary")
	tenant := fs.StringP("tenant", "t", "", "tenant a resumir")
	start := fs.String("start", "", "início do período (YYYY-MM-DD)")
	end := fs.String("end", "", "fim do período (YYYY-MM-DD)")
	source := fs.String("source", "", "fonte dos dados")
	marketplace := fs.String("marketplace", "", "marketplace")
	granularity := fs.StringP("granularity", "g", "", "inclui a evolução da receita: weekly ou monthly")
	fs.Parse(args)

	filter := domain.SalesFilter{Source: *source, Marketplace: *marketplace}

	startDate, err := utils.ParseDate(*start)
	if err != nil {
		return fmt.Errorf("data inicial inválida: %w", err)
	}
	endDate, err := utils.ParseDate(*end)
	if err != nil {
		return fmt.Errorf("data final inválida: %w", err)
	}
	filter.StartDate, filter.EndDate = startDate, endDate

	cfg, err := loadConfig(fs, map[string]string{})
	if err != nil {
		return err
	}

	ctx := context.Background()
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	output, err := collectSummary(ctx, a.summarizing, *tenant, filter, *granularity)
	if err != nil {
		return err
	}

	fmt.Println(utils.PrettyJson(output))
	return nil
}

// collectSummary monta a saída do comando summary. Com granularity vazia a evolução é omitida.
func collectSummary(ctx context.Context, s summarizing.Summarizer, tenant string, filter domain.SalesFilter, granularity string) (map[string]any, error) {
	var g forecast.Granularity
	if granularity != "" {
		parsed, err := forecast.ParseGranularity(granularity)
		if err != nil {
			return nil, err
		}
		g = parsed
	}

	report, err := s.Summary(ctx, tenant, filter)
	if err != nil {
		return nil, err
	}

	breakdown, err := s.MarketplaceBreakdown(ctx, tenant, filter)
	if err != nil {
		return nil, err
	}

	output := map[string]any{
		"summary":      report,
		"marketplaces": breakdown,
	}

	risk, err := s.ConcentrationRisk(ctx, tenant, filter)
	switch {
	case errors.Is(err, summarizing.ErrNoRevenue):
		logrus.WithField("tenant", tenant).Warn("Risco de concentração indisponível: período sem receita")
	case err != nil:
		return nil, err
	default:
		output["concentration_risk"] = risk
	}

	if g != "" {
		series, err := s.Trend(ctx, tenant, g)
		if err != nil {
			return nil, err
		}
		output["trend"] = map[string]any{
			"granularity": series.Granularity,
			"buckets":     series.Buckets,
		}
	}

	return output, nil
}
