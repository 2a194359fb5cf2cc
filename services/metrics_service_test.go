package services

import (
	"math"
	"testing"

	"portfolioadvisor/types"
)

func detailWith(price, prevClose, industry string) *types.StockDetail {
	return &types.StockDetail{
		Industry:     industry,
		CurrentPrice: types.CurrentPrice{NSE: price},
		ReusableData: types.ReusableData{Close: prevClose},
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCalculateValueAndPnLSingleHolding(t *testing.T) {
	svc := NewMetricsService()
	holdings := []types.Holding{
		{Symbol: "INFY", Name: "Infosys", Shares: 10, AvgCost: 100},
	}
	details := map[string]*types.StockDetail{
		"INFY": detailWith("120", "115", "IT"),
	}

	metrics, summary := svc.CalculateValueAndPnL(holdings, details)

	if len(metrics) != 1 {
		t.Fatalf("expected 1 metric, got %d", len(metrics))
	}
	m := metrics[0]
	if !almostEqual(m.CostBasis, 1000) {
		t.Errorf("cost basis: got %v, want 1000", m.CostBasis)
	}
	if !almostEqual(m.CurrentValue, 1200) {
		t.Errorf("current value: got %v, want 1200", m.CurrentValue)
	}
	if !almostEqual(m.UnrealizedPnl, 200) {
		t.Errorf("unrealized pnl: got %v, want 200", m.UnrealizedPnl)
	}
	if !almostEqual(m.UnrealizedPnlPct, 20) {
		t.Errorf("unrealized pnl pct: got %v, want 20", m.UnrealizedPnlPct)
	}
	if !almostEqual(m.DaysPnl, 50) {
		t.Errorf("days pnl: got %v, want 50", m.DaysPnl)
	}
	if !almostEqual(m.Weightage, 100) {
		t.Errorf("weightage: got %v, want 100", m.Weightage)
	}
	if m.Industry != "IT" {
		t.Errorf("industry: got %q, want IT", m.Industry)
	}
	if !almostEqual(summary.TotalPnl, 200) {
		t.Errorf("total pnl: got %v, want 200", summary.TotalPnl)
	}
	if !almostEqual(summary.TotalReturnPct, 20) {
		t.Errorf("total return pct: got %v, want 20", summary.TotalReturnPct)
	}
}

func TestCalculateValueAndPnLEmptyPortfolio(t *testing.T) {
	svc := NewMetricsService()

	metrics, summary := svc.CalculateValueAndPnL(nil, nil)

	if metrics == nil || len(metrics) != 0 {
		t.Errorf("expected empty non-nil metrics, got %v", metrics)
	}
	if summary.TotalInvested != 0 || summary.TotalCurrentValue != 0 || summary.TotalPnl != 0 || summary.TotalReturnPct != 0 {
		t.Errorf("expected zeroed summary, got %+v", summary)
	}
	if summary.SectorAllocations == nil || len(summary.SectorAllocations) != 0 {
		t.Errorf("expected empty non-nil sector allocations, got %v", summary.SectorAllocations)
	}
}

func TestCalculateValueAndPnLExcludesUnresolvedSymbols(t *testing.T) {
	svc := NewMetricsService()
	holdings := []types.Holding{
		{Symbol: "INFY", Shares: 10, AvgCost: 100},
		{Symbol: "MISSING", Shares: 5, AvgCost: 50},
	}
	details := map[string]*types.StockDetail{
		"INFY": detailWith("120", "115", "IT"),
	}

	metrics, summary := svc.CalculateValueAndPnL(holdings, details)

	if len(metrics) != 1 {
		t.Fatalf("expected 1 metric, got %d", len(metrics))
	}
	if metrics[0].Symbol != "INFY" {
		t.Errorf("expected INFY only, got %q", metrics[0].Symbol)
	}
	if !almostEqual(summary.TotalInvested, 1000) {
		t.Errorf("unresolved symbol leaked into totals: %v", summary.TotalInvested)
	}
}

func TestCalculateValueAndPnLWeightagesSumToHundred(t *testing.T) {
	svc := NewMetricsService()
	holdings := []types.Holding{
		{Symbol: "A", Shares: 3, AvgCost: 10},
		{Symbol: "B", Shares: 7, AvgCost: 20},
		{Symbol: "C", Shares: 11, AvgCost: 30},
	}
	details := map[string]*types.StockDetail{
		"A": detailWith("15", "14", "IT"),
		"B": detailWith("25", "24", "Banking"),
		"C": detailWith("35", "34", "Banking"),
	}

	metrics, _ := svc.CalculateValueAndPnL(holdings, details)

	total := 0.0
	for _, m := range metrics {
		total += m.Weightage
	}
	if math.Abs(total-100) > 1e-6 {
		t.Errorf("weightages sum to %v, want 100", total)
	}
}

func TestCalculateValueAndPnLSectorAllocation(t *testing.T) {
	svc := NewMetricsService()
	holdings := []types.Holding{
		{Symbol: "HDFCBANK", Shares: 7, AvgCost: 90},
		{Symbol: "INFY", Shares: 3, AvgCost: 90},
	}
	// INFY 3*100=300, HDFCBANK 7*100=700
	details := map[string]*types.StockDetail{
		"INFY":     detailWith("100", "100", "IT"),
		"HDFCBANK": detailWith("100", "100", "Banking"),
	}

	_, summary := svc.CalculateValueAndPnL(holdings, details)

	if len(summary.SectorAllocations) != 2 {
		t.Fatalf("expected 2 sectors, got %d", len(summary.SectorAllocations))
	}
	byName := map[string]types.SectorAllocation{}
	for _, sector := range summary.SectorAllocations {
		byName[sector.Sector] = sector
	}
	if !almostEqual(byName["Banking"].Weight, 70) {
		t.Errorf("Banking weight: got %v, want 70", byName["Banking"].Weight)
	}
	if !almostEqual(byName["IT"].Weight, 30) {
		t.Errorf("IT weight: got %v, want 30", byName["IT"].Weight)
	}
	if len(byName["Banking"].Holdings) != 1 || byName["Banking"].Holdings[0] != "HDFCBANK" {
		t.Errorf("Banking holdings: got %v", byName["Banking"].Holdings)
	}
}

func TestCalculateValueAndPnLDefaultsIndustryToUnknown(t *testing.T) {
	svc := NewMetricsService()
	holdings := []types.Holding{{Symbol: "XYZ", Shares: 1, AvgCost: 10}}
	details := map[string]*types.StockDetail{
		"XYZ": detailWith("12", "11", ""),
	}

	metrics, summary := svc.CalculateValueAndPnL(holdings, details)

	if metrics[0].Industry != "Unknown" {
		t.Errorf("industry: got %q, want Unknown", metrics[0].Industry)
	}
	if summary.SectorAllocations[0].Sector != "Unknown" {
		t.Errorf("sector: got %q, want Unknown", summary.SectorAllocations[0].Sector)
	}
}

func TestCalculateValueAndPnLIsDeterministic(t *testing.T) {
	svc := NewMetricsService()
	holdings := []types.Holding{
		{Symbol: "B", Shares: 2, AvgCost: 10},
		{Symbol: "A", Shares: 4, AvgCost: 20},
	}
	details := map[string]*types.StockDetail{
		"A": detailWith("22", "21", "IT"),
		"B": detailWith("12", "11", "Banking"),
	}

	first, _ := svc.CalculateValueAndPnL(holdings, details)
	second, _ := svc.CalculateValueAndPnL(holdings, details)

	if len(first) != len(second) {
		t.Fatalf("result length changed between runs")
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("run mismatch at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
	if first[0].Symbol != "A" {
		t.Errorf("expected symbol-sorted output, got %q first", first[0].Symbol)
	}
}
