package routes

import (
	"portfolioadvisor/controllers"
	"portfolioadvisor/middleware"

	"github.com/gin-gonic/gin"
)

// Handlers groups the wired controllers so main stays the single place where
// services are constructed.
type Handlers struct {
	Holding    controllers.HoldingControllerI
	Portfolio  controllers.PortfolioControllerI
	Market     controllers.MarketControllerI
	Preference controllers.PreferenceControllerI
}

func Routes(r *gin.Engine, h Handlers) {

	api := r.Group("/api")
	{
		api.GET("/keepServerRunning", controllers.HealthController.IsRunning)
	}

	v1 := r.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware())
	{
		v1.GET("/holdings", h.Holding.GetHoldings)
		v1.POST("/holdings", h.Holding.AddHolding)
		v1.PUT("/holdings/:id", h.Holding.UpdateHolding)
		v1.DELETE("/holdings/:id", h.Holding.DeleteHolding)
		v1.POST("/holdings/import", h.Holding.ImportHoldings)

		v1.GET("/portfolio/metrics", h.Portfolio.GetMetrics)
		v1.GET("/portfolio/risk", h.Portfolio.GetRisk)
		v1.GET("/portfolio/briefing", h.Portfolio.GetBriefing)
		v1.GET("/portfolio/riskAnalysis", h.Portfolio.GetRiskAnalysis)
		v1.GET("/portfolio/advisory", h.Portfolio.GetAdvisory)

		v1.GET("/market/news", h.Market.GetNews)
		v1.GET("/market/news/:symbol", h.Market.GetStockNews)
		v1.GET("/market/trending", h.Market.GetTrending)

		v1.GET("/preferences", h.Preference.GetPreference)
		v1.PUT("/preferences", h.Preference.PutPreference)
	}
}
