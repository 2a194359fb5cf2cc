package services

import (
	"sort"

	"portfolioadvisor/types"

	"github.com/shopspring/decimal"
)

type RiskServiceI interface {
	// CalculateRiskMetrics derives per-stock risk attributes and the
	// portfolio-level beta and concentration view.
	CalculateRiskMetrics(holdings []types.Holding, details map[string]*types.StockDetail) ([]types.StockRiskMetrics, types.PortfolioRiskMetrics)
}

type riskService struct {
	metrics MetricsServiceI
}

func NewRiskService(metrics MetricsServiceI) RiskServiceI {
	return &riskService{metrics: metrics}
}

func (r *riskService) CalculateRiskMetrics(holdings []types.Holding, details map[string]*types.StockDetail) ([]types.StockRiskMetrics, types.PortfolioRiskMetrics) {
	stockRiskList := []types.StockRiskMetrics{}
	portfolioRisk := types.PortfolioRiskMetrics{SectorAllocations: []types.SectorAllocation{}}
	if len(holdings) == 0 {
		return stockRiskList, portfolioRisk
	}

	holdingMetrics, summary := r.metrics.CalculateValueAndPnL(holdings, details)

	portfolioBeta := decimal.Zero
	for _, hm := range holdingMetrics {
		detail := details[hm.Symbol]
		if detail == nil {
			continue
		}

		beta := detail.Beta()
		weight := decimal.NewFromFloat(hm.Weightage).Div(oneHundred)
		portfolioBeta = portfolioBeta.Add(weight.Mul(decimal.NewFromFloat(beta)))

		stockRiskList = append(stockRiskList, types.StockRiskMetrics{
			Symbol:            hm.Symbol,
			Beta:              beta,
			Weightage:         hm.Weightage,
			UnrealizedPnl:     hm.UnrealizedPnl,
			RiskMeter:         detail.RiskCategory(),
			StandardDeviation: detail.RiskStdDev(),
		})
	}

	top3, herfindahl, sectorConcentration := concentrationMetrics(holdingMetrics)

	portfolioRisk.Beta = portfolioBeta.InexactFloat64()
	portfolioRisk.TotalPnl = summary.TotalPnl
	portfolioRisk.SectorAllocations = summary.SectorAllocations
	// Cross-holding covariance is not computed; reported as 0 until a
	// variance model exists.
	portfolioRisk.StandardDeviation = 0.0
	portfolioRisk.Top3HoldingsWeight = top3
	portfolioRisk.HerfindahlIndex = herfindahl
	portfolioRisk.SectorConcentration = sectorConcentration

	return stockRiskList, portfolioRisk
}

// concentrationMetrics folds the weightage distribution into the three
// concentration measures: top-3 holdings weight, Herfindahl index and the
// heaviest single sector.
func concentrationMetrics(holdingMetrics []types.HoldingMetrics) (float64, float64, float64) {
	weightages := make([]float64, 0, len(holdingMetrics))
	for _, hm := range holdingMetrics {
		weightages = append(weightages, hm.Weightage)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(weightages)))

	top3 := 0.0
	for i, w := range weightages {
		if i >= 3 {
			break
		}
		top3 += w
	}

	herfindahl := 0.0
	for _, w := range weightages {
		herfindahl += (w / 100) * (w / 100)
	}

	sectorWeights := make(map[string]float64)
	for _, hm := range holdingMetrics {
		sectorWeights[hm.Industry] += hm.Weightage
	}
	sectorConcentration := 0.0
	for _, w := range sectorWeights {
		if w > sectorConcentration {
			sectorConcentration = w
		}
	}

	return top3, herfindahl, sectorConcentration
}
