package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"portfolioadvisor/clients/cache"
	"portfolioadvisor/clients/gemini"
	"portfolioadvisor/types"
	"portfolioadvisor/utils/helpers"

	"go.uber.org/zap"
)

const noHoldingsMessage = "No holdings to analyze."

type AdvisoryServiceI interface {
	MorningBriefing(ctx context.Context, userID string, holdings []types.Holding) (string, error)
	RiskAnalysis(ctx context.Context, userID string, holdings []types.Holding) (string, error)
	ComprehensiveAdvisory(ctx context.Context, userID string, holdings []types.Holding) (string, error)
}

type advisoryService struct {
	fetcher FetchServiceI
	metrics MetricsServiceI
	risk    RiskServiceI
	market  MarketServiceI
	prefs   PreferenceServiceI
	genai   gemini.ClientI
	cache   cache.Store
}

// NewAdvisoryService wires the assembler. The text-generation client is an
// injected handle so tests can substitute it.
func NewAdvisoryService(fetcher FetchServiceI, metrics MetricsServiceI, risk RiskServiceI, market MarketServiceI, prefs PreferenceServiceI, genai gemini.ClientI, store cache.Store) AdvisoryServiceI {
	return &advisoryService{
		fetcher: fetcher,
		metrics: metrics,
		risk:    risk,
		market:  market,
		prefs:   prefs,
		genai:   genai,
		cache:   store,
	}
}

func (a *advisoryService) MorningBriefing(ctx context.Context, userID string, holdings []types.Holding) (string, error) {
	if len(holdings) == 0 {
		return noHoldingsMessage, nil
	}

	cacheKey := fmt.Sprintf("portfolio_briefing_genai:%s", userID)
	var cached string
	if a.cache.Get(ctx, cacheKey, &cached) {
		return cached, nil
	}

	details := a.fetcher.FetchStockDetails(ctx, symbolsOf(holdings))
	holdingMetrics, summary := a.metrics.CalculateValueAndPnL(holdings, details)

	prompt := fmt.Sprintf(`You are a professional portfolio analyst for Indian stock markets.
Analyze this portfolio data and generate a concise morning briefing (150 words max).

Focus on:
1. Overall portfolio health (one sentence)
2. Top 2-3 notable movers and WHY (sector trends, stock-specific)
3. One actionable insight or alert
4. Tone: Professional but conversational, data-driven

Portfolio holdings: %s
Portfolio summary: %s

pnl is profit and loss
pct is percentage

Return in markdown format.`, toPromptJSON(holdingMetrics), toPromptJSON(summary))

	briefing, err := a.genai.GenerateText(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("generating portfolio briefing: %w", err)
	}

	a.cache.Set(ctx, cacheKey, briefing, cache.BriefingTTL)
	return briefing, nil
}

func (a *advisoryService) RiskAnalysis(ctx context.Context, userID string, holdings []types.Holding) (string, error) {
	if len(holdings) == 0 {
		return noHoldingsMessage, nil
	}

	cacheKey := fmt.Sprintf("portfolio_risk_analysis_genai:%s", userID)
	var cached string
	if a.cache.Get(ctx, cacheKey, &cached) {
		return cached, nil
	}

	details := a.fetcher.FetchStockDetails(ctx, symbolsOf(holdings))
	stockRisk, portfolioRisk := a.risk.CalculateRiskMetrics(holdings, details)

	prompt := fmt.Sprintf(`As a risk management advisor, analyze this portfolio's risk profile for a retail
investor in India with moderate-aggressive risk tolerance. Generate a risk report
(200 words) covering:

1. Overall risk level assessment
2. Specific risk concerns (concentration, volatility, sector)
3. Age-appropriate recommendation
4. One specific action to reduce risk if needed

Stock risk metrics: %s
Portfolio risk metrics: %s

pnl is profit and loss
pct is percentage

Return in markdown format.`, toPromptJSON(stockRisk), toPromptJSON(portfolioRisk))

	analysis, err := a.genai.GenerateText(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("generating risk analysis: %w", err)
	}

	a.cache.Set(ctx, cacheKey, analysis, cache.BriefingTTL)
	return analysis, nil
}

func (a *advisoryService) ComprehensiveAdvisory(ctx context.Context, userID string, holdings []types.Holding) (string, error) {
	if len(holdings) == 0 {
		return noHoldingsMessage, nil
	}

	cacheKey := fmt.Sprintf("comprehensive_advisory_genai:%s", userID)
	var cached string
	if a.cache.Get(ctx, cacheKey, &cached) {
		return cached, nil
	}

	details := a.fetcher.FetchStockDetails(ctx, symbolsOf(holdings))
	holdingMetrics, summary := a.metrics.CalculateValueAndPnL(holdings, details)

	// Auxiliary snapshots are best-effort: a missing feed thins the prompt,
	// it does not fail the advisory.
	marketNews := a.marketNewsSummaries(ctx)
	stockNews := a.stockNewsSummaries(ctx, holdings)
	topGainers, topLosers := a.trendingSummaries(ctx)
	preferenceText := a.preferenceText(ctx, userID)

	prompt := fmt.Sprintf(`You are an expert portfolio analyst specializing in Indian equity markets.

PORTFOLIO HOLDINGS:
%s

PORTFOLIO SUMMARY:
%s

LATEST MARKET NEWS:
%s

LATEST STOCK-SPECIFIC NEWS:
%s

TRENDING STOCKS:
Top Gainers:
%s
Top Losers:
%s

USER INVESTMENT PREFERENCES:
%s

Using the above data, provide a detailed investment advisory with the following sections:

1. PORTFOLIO HEALTH CHECK
2. SPECIFIC HOLDINGS RECOMMENDATIONS - for each holding a clear HOLD / SELL / BUY MORE decision with price targets, quantities and stop-loss levels.
3. TOP 3 BUY OPPORTUNITIES FROM THE MARKET - entry price ranges, targets, stop-loss levels, capital allocation.
4. PORTFOLIO REBALANCING ADVICE - sector-level exposure adjustments with target percentages.
5. ACTION ITEMS - prioritized as urgent (this week), important (next 2 weeks) and monitor (longer term).

Tailor all recommendations assuming the user is a retail investor with the given investment preferences.
Avoid vague phrases; be specific, data-driven, and actionable.
Ensure all numerical values are numbers, not strings.

Provide the response as a single JSON object with keys portfolio_health_check,
holdings_recommendations, buy_opportunities, portfolio_rebalancing and
action_items. Don't include any explanations outside the JSON structure. ONLY RETURN THE JSON.`,
		toPromptJSON(holdingMetrics),
		toPromptJSON(summary),
		toPromptJSON(marketNews),
		toPromptJSON(stockNews),
		toPromptJSON(topGainers),
		toPromptJSON(topLosers),
		preferenceText)

	advisory, err := a.genai.GenerateText(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("generating comprehensive advisory: %w", err)
	}

	// Best-effort parse: the output is treated as opaque text when the
	// model did not return valid JSON.
	var parsed interface{}
	if err := json.Unmarshal([]byte(advisory), &parsed); err == nil {
		if pretty, err := json.MarshalIndent(parsed, "", "  "); err == nil {
			advisory = string(pretty)
		}
	} else {
		zap.L().Warn("Advisory output is not valid JSON, returning raw text", zap.String("userId", userID))
	}

	a.cache.Set(ctx, cacheKey, advisory, cache.AdvisoryTTL)
	return advisory, nil
}

func (a *advisoryService) marketNewsSummaries(ctx context.Context) []map[string]string {
	articles, err := a.market.GetNewsArticles(ctx)
	if err != nil {
		zap.L().Warn("Market news unavailable for advisory", zap.Error(err))
		return nil
	}
	summaries := make([]map[string]string, 0, len(articles))
	for _, article := range articles {
		summaries = append(summaries, map[string]string{
			"title":    article.Title,
			"summary":  article.Summary,
			"pub_date": article.PubDate,
		})
	}
	return summaries
}

func (a *advisoryService) stockNewsSummaries(ctx context.Context, holdings []types.Holding) map[string][]map[string]string {
	summaries := make(map[string][]map[string]string, len(holdings))
	for _, holding := range holdings {
		news, err := a.market.GetStockNews(ctx, holding.Symbol)
		if err != nil {
			zap.L().Warn("Stock news unavailable for advisory", zap.String("symbol", holding.Symbol), zap.Error(err))
			summaries[holding.Symbol] = []map[string]string{}
			continue
		}
		items := make([]map[string]string, 0, len(news))
		for _, item := range news {
			entry := map[string]string{
				"headline": item.Headline,
				"intro":    item.Intro,
				"date":     item.Date,
			}
			if item.Body != "" {
				entry["excerpt"] = helpers.Truncate(helpers.CleanHTMLText(item.Body), 300)
			}
			items = append(items, entry)
		}
		summaries[holding.Symbol] = items
	}
	return summaries
}

func (a *advisoryService) trendingSummaries(ctx context.Context) ([]types.TrendingStock, []types.TrendingStock) {
	trending, err := a.market.GetTrendingStocks(ctx)
	if err != nil {
		zap.L().Warn("Trending stocks unavailable for advisory", zap.Error(err))
		return nil, nil
	}
	return trending.Trending.TopGainers, trending.Trending.TopLosers
}

func (a *advisoryService) preferenceText(ctx context.Context, userID string) string {
	pref, err := a.prefs.GetPreference(ctx, userID)
	if err != nil {
		zap.L().Warn("Preferences unavailable for advisory", zap.String("userId", userID), zap.Error(err))
	}
	if pref == nil {
		return "No specific investment preferences set."
	}
	return fmt.Sprintf(`Risk Tolerance: %s
Investment Horizon: %s
Target Annual Return: %s
Monthly Investment Range: %s
Preferred Sectors: %s
Avoid Sectors: %s
Max Position Size: %.1f%%
Dividend Focus: %t
ESG Focus: %t`,
		pref.RiskTolerance,
		pref.InvestmentHorizon,
		pref.TargetAnnualReturn,
		pref.MonthlyInvestmentRange,
		strings.Join(pref.PreferredSectors, ", "),
		strings.Join(pref.AvoidSectors, ", "),
		pref.MaxPositionSize,
		pref.DividendFocus,
		pref.ESGFocus)
}

func symbolsOf(holdings []types.Holding) []string {
	seen := make(map[string]bool, len(holdings))
	symbols := make([]string, 0, len(holdings))
	for _, holding := range holdings {
		if seen[holding.Symbol] {
			continue
		}
		seen[holding.Symbol] = true
		symbols = append(symbols, holding.Symbol)
	}
	return symbols
}

func toPromptJSON(v interface{}) string {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(raw)
}
