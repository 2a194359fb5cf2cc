package services

import (
	"math"
	"testing"

	"portfolioadvisor/types"
)

func detailWithBeta(price, industry, beta string) *types.StockDetail {
	detail := detailWith(price, price, industry)
	detail.KeyMetrics = &types.KeyMetrics{
		PriceAndVolume: []types.KeyMetricItem{
			{DisplayName: "Beta", Key: "beta", Value: beta},
		},
	}
	return detail
}

func TestCalculateRiskMetricsWeightedBeta(t *testing.T) {
	svc := NewRiskService(NewMetricsService())
	holdings := []types.Holding{
		{Symbol: "A", Shares: 6, AvgCost: 100}, // 600 of 1000 -> 60%
		{Symbol: "B", Shares: 4, AvgCost: 100}, // 400 of 1000 -> 40%
	}
	details := map[string]*types.StockDetail{
		"A": detailWithBeta("100", "IT", "1.5"),
		"B": detailWithBeta("100", "Banking", "0.5"),
	}

	stocks, portfolio := svc.CalculateRiskMetrics(holdings, details)

	if len(stocks) != 2 {
		t.Fatalf("expected 2 stock risk entries, got %d", len(stocks))
	}
	// 0.6*1.5 + 0.4*0.5 = 1.1
	if math.Abs(portfolio.Beta-1.1) > 1e-9 {
		t.Errorf("portfolio beta: got %v, want 1.1", portfolio.Beta)
	}
}

func TestCalculateRiskMetricsBetaDefaultsToZero(t *testing.T) {
	svc := NewRiskService(NewMetricsService())
	holdings := []types.Holding{{Symbol: "A", Shares: 1, AvgCost: 100}}
	details := map[string]*types.StockDetail{
		"A": detailWithBeta("100", "IT", "n/a"),
	}

	stocks, portfolio := svc.CalculateRiskMetrics(holdings, details)

	if stocks[0].Beta != 0 {
		t.Errorf("garbled beta: got %v, want 0", stocks[0].Beta)
	}
	if portfolio.Beta != 0 {
		t.Errorf("portfolio beta with garbled input: got %v, want 0", portfolio.Beta)
	}
}

func TestCalculateRiskMetricsHerfindahlEqualWeights(t *testing.T) {
	svc := NewRiskService(NewMetricsService())
	holdings := []types.Holding{
		{Symbol: "A", Shares: 1, AvgCost: 100},
		{Symbol: "B", Shares: 1, AvgCost: 100},
		{Symbol: "C", Shares: 1, AvgCost: 100},
		{Symbol: "D", Shares: 1, AvgCost: 100},
	}
	details := map[string]*types.StockDetail{
		"A": detailWithBeta("100", "IT", "1"),
		"B": detailWithBeta("100", "Banking", "1"),
		"C": detailWithBeta("100", "Pharma", "1"),
		"D": detailWithBeta("100", "Auto", "1"),
	}

	_, portfolio := svc.CalculateRiskMetrics(holdings, details)

	// Four equal weights: H = 4 * 0.25^2 = 0.25
	if math.Abs(portfolio.HerfindahlIndex-0.25) > 1e-9 {
		t.Errorf("herfindahl: got %v, want 0.25", portfolio.HerfindahlIndex)
	}
	// Top 3 of four equal holdings
	if math.Abs(portfolio.Top3HoldingsWeight-75) > 1e-9 {
		t.Errorf("top3 weight: got %v, want 75", portfolio.Top3HoldingsWeight)
	}
}

func TestCalculateRiskMetricsSectorConcentration(t *testing.T) {
	svc := NewRiskService(NewMetricsService())
	holdings := []types.Holding{
		{Symbol: "A", Shares: 1, AvgCost: 100},
		{Symbol: "B", Shares: 1, AvgCost: 100},
	}
	details := map[string]*types.StockDetail{
		"A": detailWithBeta("100", "IT", "1"),
		"B": detailWithBeta("100", "IT", "1"),
	}

	_, portfolio := svc.CalculateRiskMetrics(holdings, details)

	if math.Abs(portfolio.SectorConcentration-100) > 1e-9 {
		t.Errorf("single-sector concentration: got %v, want 100", portfolio.SectorConcentration)
	}
}

func TestCalculateRiskMetricsStandardDeviationIsZero(t *testing.T) {
	svc := NewRiskService(NewMetricsService())
	holdings := []types.Holding{{Symbol: "A", Shares: 1, AvgCost: 100}}
	details := map[string]*types.StockDetail{
		"A": detailWithBeta("100", "IT", "2.0"),
	}

	_, portfolio := svc.CalculateRiskMetrics(holdings, details)

	if portfolio.StandardDeviation != 0 {
		t.Errorf("portfolio stddev: got %v, want 0", portfolio.StandardDeviation)
	}
}

func TestCalculateRiskMetricsEmptyPortfolio(t *testing.T) {
	svc := NewRiskService(NewMetricsService())

	stocks, portfolio := svc.CalculateRiskMetrics(nil, nil)

	if stocks == nil || len(stocks) != 0 {
		t.Errorf("expected empty non-nil stock list, got %v", stocks)
	}
	if portfolio.Beta != 0 || portfolio.HerfindahlIndex != 0 {
		t.Errorf("expected zeroed portfolio risk, got %+v", portfolio)
	}
}
