package services

import (
	"context"
	"testing"
	"time"

	"portfolioadvisor/types"
)

func TestMorningBriefingWithNoHoldings(t *testing.T) {
	svc := NewAdvisoryService(nil, nil, nil, nil, nil, nil, newMemoryStore())

	briefing, err := svc.MorningBriefing(context.Background(), "user-1", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if briefing != noHoldingsMessage {
		t.Errorf("got %q, want %q", briefing, noHoldingsMessage)
	}
}

func TestMorningBriefingServedFromCache(t *testing.T) {
	store := newMemoryStore()
	store.Set(context.Background(), "portfolio_briefing_genai:user-1", "cached briefing", time.Minute)

	// All generation dependencies are nil: a cache hit must short-circuit
	// before any of them is touched.
	svc := NewAdvisoryService(nil, nil, nil, nil, nil, nil, store)

	holdings := []types.Holding{{Symbol: "INFY", Shares: 1, AvgCost: 100}}
	briefing, err := svc.MorningBriefing(context.Background(), "user-1", holdings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if briefing != "cached briefing" {
		t.Errorf("got %q, want cached briefing", briefing)
	}
}

func TestRiskAnalysisServedFromCache(t *testing.T) {
	store := newMemoryStore()
	store.Set(context.Background(), "portfolio_risk_analysis_genai:user-1", "cached analysis", time.Minute)

	svc := NewAdvisoryService(nil, nil, nil, nil, nil, nil, store)

	holdings := []types.Holding{{Symbol: "INFY", Shares: 1, AvgCost: 100}}
	analysis, err := svc.RiskAnalysis(context.Background(), "user-1", holdings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if analysis != "cached analysis" {
		t.Errorf("got %q, want cached analysis", analysis)
	}
}

func TestSymbolsOfDeduplicates(t *testing.T) {
	holdings := []types.Holding{
		{Symbol: "INFY"},
		{Symbol: "TCS"},
		{Symbol: "INFY"},
	}

	symbols := symbolsOf(holdings)

	if len(symbols) != 2 {
		t.Fatalf("expected 2 symbols, got %v", symbols)
	}
	if symbols[0] != "INFY" || symbols[1] != "TCS" {
		t.Errorf("expected order-preserving dedupe, got %v", symbols)
	}
}
