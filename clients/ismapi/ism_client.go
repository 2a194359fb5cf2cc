package ismapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"portfolioadvisor/types"
)

const defaultBaseURL = "https://stock.indianapi.in"

// ClientI is the upstream market-data capability. Calls fail with an error
// on timeout, non-2xx status or a malformed payload; the caller decides how
// to retry.
type ClientI interface {
	GetStockDetails(ctx context.Context, symbol string) (*types.StockDetail, error)
	GetNews(ctx context.Context) ([]types.NewsArticle, error)
	GetTrendingStocks(ctx context.Context) (*types.TrendingStocks, error)
}

type client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient builds a client for the Indian stock market API using
// ISM_API_BASE_URL and ISM_API_KEY from the environment.
func NewClient() ClientI {
	baseURL := os.Getenv("ISM_API_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &client{
		baseURL: baseURL,
		apiKey:  os.Getenv("ISM_API_KEY"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *client) GetStockDetails(ctx context.Context, symbol string) (*types.StockDetail, error) {
	params := url.Values{}
	params.Add("name", symbol)

	var detail types.StockDetail
	if err := c.getJSON(ctx, "/stock?"+params.Encode(), &detail); err != nil {
		return nil, fmt.Errorf("fetching stock details for %s: %w", symbol, err)
	}
	return &detail, nil
}

func (c *client) GetNews(ctx context.Context) ([]types.NewsArticle, error) {
	var articles []types.NewsArticle
	if err := c.getJSON(ctx, "/news", &articles); err != nil {
		return nil, fmt.Errorf("fetching market news: %w", err)
	}
	return articles, nil
}

func (c *client) GetTrendingStocks(ctx context.Context) (*types.TrendingStocks, error) {
	var trending types.TrendingStocks
	if err := c.getJSON(ctx, "/trending", &trending); err != nil {
		return nil, fmt.Errorf("fetching trending stocks: %w", err)
	}
	return &trending, nil
}

func (c *client) getJSON(ctx context.Context, path string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("upstream returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decoding upstream payload: %w", err)
	}
	return nil
}
