package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"portfolioadvisor/clients/cache"
	"portfolioadvisor/clients/gemini"
	"portfolioadvisor/clients/ismapi"
	"portfolioadvisor/controllers"
	"portfolioadvisor/middleware"
	"portfolioadvisor/routes"
	"portfolioadvisor/services"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}

// GracefulShutdown handles graceful shutdown of the server and the keep-alive ticker
func GracefulShutdown(server *http.Server, ticker *time.Ticker) {
	stopper := make(chan os.Signal, 1)
	signal.Notify(stopper, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-stopper
		zap.L().Info("Shutting down gracefully...")

		ticker.Stop()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			zap.L().Error("Server shutdown failed", zap.Error(err))
			return
		}
		zap.L().Info("Server exited gracefully")
	}()
}

func setupSentry() {
	tracesSampleRate, err := strconv.ParseFloat(os.Getenv("SENTRY_SAMPLE_RATE"), 64)
	if err != nil {
		tracesSampleRate = 1.0
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              os.Getenv("SENTRY_DSN"),
		Environment:      os.Getenv("ENVIRONMENT"),
		EnableTracing:    true,
		TracesSampleRate: tracesSampleRate, // 1.0 by default if ENV SENTRY_SAMPLE_RATE not set
	}); err != nil {
		zap.L().Error("Sentry initialization failed: ", zap.Any("error", err.Error()))
	}
}

func main() {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	logger, _ := config.Build()
	zap.ReplaceGlobals(logger)

	setupSentry()

	// Clients
	store := cache.NewRedisStore()
	marketClient := ismapi.NewClient()
	geminiURL := os.Getenv("GEMINI_API_URL")
	if geminiURL == "" {
		geminiURL = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent"
	}
	genaiClient := gemini.NewClient(geminiURL, os.Getenv("GEMINI_API_KEY"))

	// Services
	fetchService := services.NewFetchService(marketClient, store)
	metricsService := services.NewMetricsService()
	riskService := services.NewRiskService(metricsService)
	marketService := services.NewMarketService(marketClient, store)
	holdingService := services.NewHoldingService()
	preferenceService := services.NewPreferenceService()
	importService := services.NewImportService(holdingService)
	advisoryService := services.NewAdvisoryService(fetchService, metricsService, riskService, marketService, preferenceService, genaiClient, store)

	router := gin.New()
	router.Use(middleware.RecoveryMiddleware())
	router.Use(sentrygin.New(sentrygin.Options{}))
	router.Use(CORSMiddleware())
	router.Use(middleware.RequestIDMiddleware())

	routes.Routes(router, routes.Handlers{
		Holding:    controllers.NewHoldingController(holdingService, importService),
		Portfolio:  controllers.NewPortfolioController(holdingService, fetchService, metricsService, riskService, advisoryService),
		Market:     controllers.NewMarketController(marketService),
		Preference: controllers.NewPreferenceController(preferenceService),
	})

	ticker := startKeepAlive()

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}

	server := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	GracefulShutdown(server, ticker)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Error starting server: %v", err)
	}
}

// startKeepAlive pings the health endpoint so free-tier hosting does not idle
// the instance out. Disabled unless KEEP_ALIVE_URL is set.
func startKeepAlive() *time.Ticker {
	ticker := time.NewTicker(48 * time.Second)
	target := os.Getenv("KEEP_ALIVE_URL")
	if target == "" {
		ticker.Stop()
		return ticker
	}

	go func() {
		client := &http.Client{Timeout: 10 * time.Second}
		for t := range ticker.C {
			resp, err := client.Get(target)
			if err != nil {
				zap.L().Error("Keep-alive ping failed", zap.Error(err))
				continue
			}
			resp.Body.Close()
			zap.L().Info("Keep-alive ping", zap.String("time", t.String()), zap.Int("status", resp.StatusCode))
		}
	}()

	return ticker
}
