package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"portfolioadvisor/types"
)

// memoryStore is an in-process cache.Store used across the service tests.
type memoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string][]byte)}
}

func (m *memoryStore) Get(ctx context.Context, key string, dest interface{}) bool {
	m.mu.Lock()
	raw, ok := m.data[key]
	m.mu.Unlock()
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func (m *memoryStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) bool {
	raw, err := json.Marshal(value)
	if err != nil {
		return false
	}
	m.mu.Lock()
	m.data[key] = raw
	m.mu.Unlock()
	return true
}

func (m *memoryStore) Delete(ctx context.Context, key string) bool {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return true
}

// fakeMarket counts calls per symbol and tracks the in-flight high-water mark.
// failures[symbol] > 0 fails that many calls before succeeding; -1 fails forever.
type fakeMarket struct {
	mu          sync.Mutex
	calls       map[string]int
	failures    map[string]int
	inFlight    int
	maxInFlight int
	delay       time.Duration
	details     map[string]*types.StockDetail
}

func newFakeMarket() *fakeMarket {
	return &fakeMarket{
		calls:    make(map[string]int),
		failures: make(map[string]int),
		details:  make(map[string]*types.StockDetail),
	}
}

func (f *fakeMarket) GetStockDetails(ctx context.Context, symbol string) (*types.StockDetail, error) {
	f.mu.Lock()
	f.calls[symbol]++
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	remaining := f.failures[symbol]
	if remaining > 0 {
		f.failures[symbol]--
	}
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()

	if remaining != 0 {
		return nil, errors.New("upstream unavailable")
	}
	if detail, ok := f.details[symbol]; ok {
		return detail, nil
	}
	return &types.StockDetail{CompanyName: symbol}, nil
}

func (f *fakeMarket) GetNews(ctx context.Context) ([]types.NewsArticle, error) {
	return nil, errors.New("not supported")
}

func (f *fakeMarket) GetTrendingStocks(ctx context.Context) (*types.TrendingStocks, error) {
	return nil, errors.New("not supported")
}

func (f *fakeMarket) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

func newTestFetchService(market *fakeMarket, store *memoryStore) *fetchService {
	return &fetchService{
		market:        market,
		cache:         store,
		maxConcurrent: 5,
		retryAttempts: 3,
		backoffUnit:   time.Millisecond,
	}
}

func TestFetchServesEntirelyFromCache(t *testing.T) {
	market := newFakeMarket()
	store := newMemoryStore()
	store.Set(context.Background(), "stock_details:INFY", &types.StockDetail{CompanyName: "Infosys"}, time.Minute)
	store.Set(context.Background(), "stock_details:TCS", &types.StockDetail{CompanyName: "TCS"}, time.Minute)

	svc := newTestFetchService(market, store)
	details := svc.FetchStockDetails(context.Background(), []string{"INFY", "TCS"})

	if len(details) != 2 {
		t.Fatalf("expected 2 details, got %d", len(details))
	}
	if details["INFY"].CompanyName != "Infosys" {
		t.Errorf("expected cached detail, got %q", details["INFY"].CompanyName)
	}
	if market.totalCalls() != 0 {
		t.Errorf("expected no upstream calls on full cache hit, got %d", market.totalCalls())
	}
}

func TestFetchCapsInFlightRequests(t *testing.T) {
	market := newFakeMarket()
	market.delay = 20 * time.Millisecond
	svc := newTestFetchService(market, newMemoryStore())

	symbols := []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L"}
	details := svc.FetchStockDetails(context.Background(), symbols)

	if len(details) != len(symbols) {
		t.Fatalf("expected %d details, got %d", len(symbols), len(details))
	}
	if market.maxInFlight > 5 {
		t.Errorf("in-flight requests exceeded cap: %d", market.maxInFlight)
	}
}

func TestFetchRetriesTransientFailures(t *testing.T) {
	market := newFakeMarket()
	market.failures["INFY"] = 2 // fails twice, succeeds on the third round
	svc := newTestFetchService(market, newMemoryStore())

	details := svc.FetchStockDetails(context.Background(), []string{"INFY"})

	if details["INFY"] == nil {
		t.Fatal("expected INFY to resolve after retries")
	}
	if got := market.calls["INFY"]; got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
}

func TestFetchDropsSymbolAfterRetryExhaustion(t *testing.T) {
	market := newFakeMarket()
	market.failures["BROKEN"] = -1
	svc := newTestFetchService(market, newMemoryStore())

	details := svc.FetchStockDetails(context.Background(), []string{"BROKEN", "TCS"})

	if _, ok := details["BROKEN"]; ok {
		t.Error("expected BROKEN to be absent from results")
	}
	if details["TCS"] == nil {
		t.Error("expected TCS to resolve despite BROKEN failing")
	}
	if got := market.calls["BROKEN"]; got != 3 {
		t.Errorf("expected exactly 3 attempts for BROKEN, got %d", got)
	}
}

func TestFetchDeduplicatesSymbols(t *testing.T) {
	market := newFakeMarket()
	svc := newTestFetchService(market, newMemoryStore())

	details := svc.FetchStockDetails(context.Background(), []string{"INFY", "INFY", "INFY"})

	if len(details) != 1 {
		t.Fatalf("expected 1 detail, got %d", len(details))
	}
	if got := market.calls["INFY"]; got != 1 {
		t.Errorf("expected 1 upstream call for duplicated symbol, got %d", got)
	}
}

func TestFetchWritesThroughToCache(t *testing.T) {
	market := newFakeMarket()
	market.details["INFY"] = &types.StockDetail{
		CompanyName: "Infosys",
		RecentNews:  []types.RecentNews{{Headline: "Results out"}},
	}
	store := newMemoryStore()
	svc := newTestFetchService(market, store)

	svc.FetchStockDetails(context.Background(), []string{"INFY"})

	var cachedDetail types.StockDetail
	if !store.Get(context.Background(), "stock_details:INFY", &cachedDetail) {
		t.Fatal("expected stock_details:INFY to be cached")
	}
	if cachedDetail.CompanyName != "Infosys" {
		t.Errorf("cached detail mismatch: %q", cachedDetail.CompanyName)
	}
	var cachedNews []types.RecentNews
	if !store.Get(context.Background(), "stock_news:INFY", &cachedNews) {
		t.Fatal("expected stock_news:INFY to be cached")
	}

	// A second fetch must not go upstream again.
	svc.FetchStockDetails(context.Background(), []string{"INFY"})
	if got := market.calls["INFY"]; got != 1 {
		t.Errorf("expected cache to absorb the second fetch, got %d calls", got)
	}
}
