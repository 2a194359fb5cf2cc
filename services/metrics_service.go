package services

import (
	"sort"

	"portfolioadvisor/types"

	"github.com/shopspring/decimal"
)

type MetricsServiceI interface {
	// CalculateValueAndPnL derives per-holding valuation metrics and the
	// portfolio summary. Holdings without a record in details are excluded
	// from every aggregate.
	CalculateValueAndPnL(holdings []types.Holding, details map[string]*types.StockDetail) ([]types.HoldingMetrics, types.PortfolioSummary)
}

type metricsService struct{}

func NewMetricsService() MetricsServiceI {
	return &metricsService{}
}

var oneHundred = decimal.NewFromInt(100)

func (m *metricsService) CalculateValueAndPnL(holdings []types.Holding, details map[string]*types.StockDetail) ([]types.HoldingMetrics, types.PortfolioSummary) {
	metricsList := []types.HoldingMetrics{}
	summary := types.PortfolioSummary{SectorAllocations: []types.SectorAllocation{}}
	if len(holdings) == 0 {
		return metricsList, summary
	}

	// Iterate in symbol order so sector allocation order is deterministic
	sorted := make([]types.Holding, len(holdings))
	copy(sorted, holdings)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Symbol < sorted[j].Symbol })

	// Money totals accumulate as decimals; repeated float64 summation drifts
	totalInvested := decimal.Zero
	totalCurrentValue := decimal.Zero
	sectorValues := make(map[string]decimal.Decimal)
	sectorHoldings := make(map[string][]string)
	var sectorOrder []string

	for _, holding := range sorted {
		detail := details[holding.Symbol]
		if detail == nil {
			continue
		}

		currentPrice := detail.PriceValue()
		prevClose := detail.PreviousClose()
		industry := detail.IndustryName()

		shares := decimal.NewFromInt(holding.Shares)
		costBasis := shares.Mul(decimal.NewFromFloat(holding.AvgCost))
		currentValue := shares.Mul(decimal.NewFromFloat(currentPrice))
		unrealizedPnl := currentValue.Sub(costBasis)

		unrealizedPnlPct := 0.0
		if holding.AvgCost > 0 {
			avgCost := decimal.NewFromFloat(holding.AvgCost)
			unrealizedPnlPct = decimal.NewFromFloat(currentPrice).Sub(avgCost).Div(avgCost).Mul(oneHundred).InexactFloat64()
		}
		daysPnl := float64(holding.Shares) * (currentPrice - prevClose)

		if _, seen := sectorValues[industry]; !seen {
			sectorOrder = append(sectorOrder, industry)
		}
		sectorValues[industry] = sectorValues[industry].Add(currentValue)
		sectorHoldings[industry] = append(sectorHoldings[industry], holding.Symbol)

		metricsList = append(metricsList, types.HoldingMetrics{
			Symbol:           holding.Symbol,
			Name:             holding.Name,
			Shares:           holding.Shares,
			AvgCost:          holding.AvgCost,
			CurrentPrice:     currentPrice,
			CostBasis:        costBasis.InexactFloat64(),
			CurrentValue:     currentValue.InexactFloat64(),
			UnrealizedPnl:    unrealizedPnl.InexactFloat64(),
			UnrealizedPnlPct: unrealizedPnlPct,
			DaysPnl:          daysPnl,
			Industry:         industry,
		})

		totalInvested = totalInvested.Add(costBasis)
		totalCurrentValue = totalCurrentValue.Add(currentValue)
	}

	totalPnl := totalCurrentValue.Sub(totalInvested)
	totalReturnPct := 0.0
	if totalInvested.IsPositive() {
		totalReturnPct = totalPnl.Div(totalInvested).Mul(oneHundred).InexactFloat64()
	}

	for _, industry := range sectorOrder {
		value := sectorValues[industry]
		sectorWeight := 0.0
		if totalCurrentValue.IsPositive() {
			sectorWeight = value.Div(totalCurrentValue).Mul(oneHundred).InexactFloat64()
		}
		summary.SectorAllocations = append(summary.SectorAllocations, types.SectorAllocation{
			Sector:       industry,
			CurrentValue: value.InexactFloat64(),
			Weight:       sectorWeight,
			Holdings:     sectorHoldings[industry],
		})
	}

	// Weightage is relative to the whole portfolio, so it needs a second
	// pass once the total is known.
	for i := range metricsList {
		if totalCurrentValue.IsPositive() {
			metricsList[i].Weightage = decimal.NewFromFloat(metricsList[i].CurrentValue).Div(totalCurrentValue).Mul(oneHundred).InexactFloat64()
		}
	}

	summary.TotalInvested = totalInvested.InexactFloat64()
	summary.TotalCurrentValue = totalCurrentValue.InexactFloat64()
	summary.TotalPnl = totalPnl.InexactFloat64()
	summary.TotalReturnPct = totalReturnPct

	return metricsList, summary
}
