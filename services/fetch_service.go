package services

import (
	"context"
	"fmt"
	"time"

	"portfolioadvisor/clients/cache"
	"portfolioadvisor/clients/ismapi"
	"portfolioadvisor/types"

	"go.uber.org/zap"
)

// Per-symbol resolution state. A symbol moves Pending -> InFlight ->
// Resolved on success, back to Retryable on a failed round, and to Dropped
// once the retry budget is gone.
type fetchState int

const (
	statePending fetchState = iota
	stateInFlight
	stateResolved
	stateRetryable
	stateDropped
)

type FetchServiceI interface {
	// FetchStockDetails resolves symbols to their upstream detail records.
	// Symbols that cannot be resolved within the retry budget are simply
	// absent from the returned map.
	FetchStockDetails(ctx context.Context, symbols []string) map[string]*types.StockDetail
}

type fetchService struct {
	market        ismapi.ClientI
	cache         cache.Store
	maxConcurrent int
	retryAttempts int
	backoffUnit   time.Duration
}

func NewFetchService(market ismapi.ClientI, store cache.Store) FetchServiceI {
	return &fetchService{
		market:        market,
		cache:         store,
		maxConcurrent: 5, // upstream is rate limited; cap in-flight requests
		retryAttempts: 3,
		backoffUnit:   time.Second,
	}
}

func (s *fetchService) FetchStockDetails(ctx context.Context, symbols []string) map[string]*types.StockDetail {
	details := make(map[string]*types.StockDetail, len(symbols))
	states := make(map[string]fetchState, len(symbols))

	// Cache-first pass: hits resolve immediately, misses form the work set.
	var pending []string
	for _, symbol := range symbols {
		if _, seen := states[symbol]; seen {
			continue
		}
		var cached types.StockDetail
		if s.cache.Get(ctx, fmt.Sprintf("stock_details:%s", symbol), &cached) {
			states[symbol] = stateResolved
			details[symbol] = &cached
			continue
		}
		states[symbol] = statePending
		pending = append(pending, symbol)
	}

	for attempt := 1; attempt <= s.retryAttempts && len(pending) > 0; attempt++ {
		type fetchResult struct {
			symbol string
			detail *types.StockDetail
			err    error
		}
		resultChan := make(chan fetchResult, len(pending))

		// Concurrent fetch semaphore (max s.maxConcurrent in-flight requests)
		semaphore := make(chan struct{}, s.maxConcurrent)

		for _, symbol := range pending {
			states[symbol] = stateInFlight
			go func(sym string) {
				semaphore <- struct{}{}        // Acquire
				defer func() { <-semaphore }() // Release

				detail, err := s.market.GetStockDetails(ctx, sym)
				resultChan <- fetchResult{symbol: sym, detail: detail, err: err}
			}(symbol)
		}

		var retryable []string
		for range pending {
			result := <-resultChan
			if result.err != nil {
				states[result.symbol] = stateRetryable
				retryable = append(retryable, result.symbol)
				zap.L().Warn("Stock fetch failed",
					zap.String("symbol", result.symbol),
					zap.Int("attempt", attempt),
					zap.Error(result.err))
				continue
			}
			states[result.symbol] = stateResolved
			details[result.symbol] = result.detail

			// Write through so the next request within the TTL skips upstream
			s.cache.Set(ctx, fmt.Sprintf("stock_details:%s", result.symbol), result.detail, cache.StockDetailsTTL)
			if len(result.detail.RecentNews) > 0 {
				s.cache.Set(ctx, fmt.Sprintf("stock_news:%s", result.symbol), result.detail.RecentNews, cache.StockNewsTTL)
			}
		}
		close(resultChan)

		pending = retryable
		if len(pending) > 0 && attempt < s.retryAttempts {
			// Backoff grows linearly with the round; the semaphore stays the
			// only concurrency lever.
			time.Sleep(time.Duration(attempt) * s.backoffUnit)
		}
	}

	for _, symbol := range pending {
		states[symbol] = stateDropped
	}
	if len(pending) > 0 {
		zap.L().Warn("Dropping symbols after retry exhaustion", zap.Strings("symbols", pending))
	}

	resolved, dropped := 0, 0
	for _, state := range states {
		switch state {
		case stateResolved:
			resolved++
		case stateDropped:
			dropped++
		}
	}
	zap.L().Debug("Stock detail resolution finished",
		zap.Int("requested", len(states)),
		zap.Int("resolved", resolved),
		zap.Int("dropped", dropped))

	return details
}
