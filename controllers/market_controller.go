package controllers

import (
	"portfolioadvisor/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type MarketControllerI interface {
	GetNews(ctx *gin.Context)
	GetStockNews(ctx *gin.Context)
	GetTrending(ctx *gin.Context)
}

type marketController struct {
	market services.MarketServiceI
}

func NewMarketController(market services.MarketServiceI) MarketControllerI {
	return &marketController{market: market}
}

func (m *marketController) GetNews(ctx *gin.Context) {
	articles, err := m.market.GetNewsArticles(ctx)
	if err != nil {
		zap.L().Error("Error fetching market news", zap.Error(err))
		ctx.JSON(502, gin.H{"error": "Error while fetching market news"})
		return
	}
	ctx.JSON(200, gin.H{"articles": articles})
}

func (m *marketController) GetStockNews(ctx *gin.Context) {
	symbol := ctx.Param("symbol")
	if symbol == "" {
		ctx.JSON(400, gin.H{"error": "Symbol is required"})
		return
	}

	news, err := m.market.GetStockNews(ctx, symbol)
	if err != nil {
		zap.L().Error("Error fetching stock news", zap.String("symbol", symbol), zap.Error(err))
		ctx.JSON(502, gin.H{"error": "Error while fetching stock news"})
		return
	}
	ctx.JSON(200, gin.H{"symbol": symbol, "news": news})
}

func (m *marketController) GetTrending(ctx *gin.Context) {
	trending, err := m.market.GetTrendingStocks(ctx)
	if err != nil {
		zap.L().Error("Error fetching trending stocks", zap.Error(err))
		ctx.JSON(502, gin.H{"error": "Error while fetching trending stocks"})
		return
	}
	ctx.JSON(200, trending)
}
