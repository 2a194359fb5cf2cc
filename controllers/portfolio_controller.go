package controllers

import (
	"portfolioadvisor/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PortfolioControllerI interface {
	GetMetrics(ctx *gin.Context)
	GetRisk(ctx *gin.Context)
	GetBriefing(ctx *gin.Context)
	GetRiskAnalysis(ctx *gin.Context)
	GetAdvisory(ctx *gin.Context)
}

type portfolioController struct {
	holdings services.HoldingServiceI
	fetcher  services.FetchServiceI
	metrics  services.MetricsServiceI
	risk     services.RiskServiceI
	advisory services.AdvisoryServiceI
}

func NewPortfolioController(holdings services.HoldingServiceI, fetcher services.FetchServiceI, metrics services.MetricsServiceI, risk services.RiskServiceI, advisory services.AdvisoryServiceI) PortfolioControllerI {
	return &portfolioController{
		holdings: holdings,
		fetcher:  fetcher,
		metrics:  metrics,
		risk:     risk,
		advisory: advisory,
	}
}

func (p *portfolioController) GetMetrics(ctx *gin.Context) {
	holdings, err := p.holdings.ListHoldings(ctx, userID(ctx))
	if err != nil {
		zap.L().Error("Error listing holdings", zap.Error(err))
		ctx.JSON(500, gin.H{"error": "Error while fetching holdings"})
		return
	}

	symbols := make([]string, 0, len(holdings))
	for _, holding := range holdings {
		symbols = append(symbols, holding.Symbol)
	}
	details := p.fetcher.FetchStockDetails(ctx, symbols)
	holdingMetrics, summary := p.metrics.CalculateValueAndPnL(holdings, details)

	ctx.JSON(200, gin.H{"holdings": holdingMetrics, "summary": summary})
}

func (p *portfolioController) GetRisk(ctx *gin.Context) {
	holdings, err := p.holdings.ListHoldings(ctx, userID(ctx))
	if err != nil {
		zap.L().Error("Error listing holdings", zap.Error(err))
		ctx.JSON(500, gin.H{"error": "Error while fetching holdings"})
		return
	}

	symbols := make([]string, 0, len(holdings))
	for _, holding := range holdings {
		symbols = append(symbols, holding.Symbol)
	}
	details := p.fetcher.FetchStockDetails(ctx, symbols)
	stockRisk, portfolioRisk := p.risk.CalculateRiskMetrics(holdings, details)

	ctx.JSON(200, gin.H{"stocks": stockRisk, "portfolio": portfolioRisk})
}

func (p *portfolioController) GetBriefing(ctx *gin.Context) {
	holdings, err := p.holdings.ListHoldings(ctx, userID(ctx))
	if err != nil {
		zap.L().Error("Error listing holdings", zap.Error(err))
		ctx.JSON(500, gin.H{"error": "Error while fetching holdings"})
		return
	}

	briefing, err := p.advisory.MorningBriefing(ctx, userID(ctx), holdings)
	if err != nil {
		zap.L().Error("Error generating briefing", zap.Error(err))
		ctx.JSON(502, gin.H{"error": "Error while generating briefing"})
		return
	}
	ctx.JSON(200, gin.H{"briefing": briefing})
}

func (p *portfolioController) GetRiskAnalysis(ctx *gin.Context) {
	holdings, err := p.holdings.ListHoldings(ctx, userID(ctx))
	if err != nil {
		zap.L().Error("Error listing holdings", zap.Error(err))
		ctx.JSON(500, gin.H{"error": "Error while fetching holdings"})
		return
	}

	analysis, err := p.advisory.RiskAnalysis(ctx, userID(ctx), holdings)
	if err != nil {
		zap.L().Error("Error generating risk analysis", zap.Error(err))
		ctx.JSON(502, gin.H{"error": "Error while generating risk analysis"})
		return
	}
	ctx.JSON(200, gin.H{"riskAnalysis": analysis})
}

func (p *portfolioController) GetAdvisory(ctx *gin.Context) {
	holdings, err := p.holdings.ListHoldings(ctx, userID(ctx))
	if err != nil {
		zap.L().Error("Error listing holdings", zap.Error(err))
		ctx.JSON(500, gin.H{"error": "Error while fetching holdings"})
		return
	}

	advisory, err := p.advisory.ComprehensiveAdvisory(ctx, userID(ctx), holdings)
	if err != nil {
		zap.L().Error("Error generating advisory", zap.Error(err))
		ctx.JSON(502, gin.H{"error": "Error while generating advisory"})
		return
	}
	ctx.JSON(200, gin.H{"advisory": advisory})
}
