package services

import (
	"context"
	"fmt"

	"portfolioadvisor/clients/cache"
	"portfolioadvisor/clients/ismapi"
	"portfolioadvisor/types"
)

type MarketServiceI interface {
	GetNewsArticles(ctx context.Context) ([]types.NewsArticle, error)
	GetStockNews(ctx context.Context, symbol string) ([]types.RecentNews, error)
	GetTrendingStocks(ctx context.Context) (*types.TrendingStocks, error)
}

type marketService struct {
	market ismapi.ClientI
	cache  cache.Store
}

func NewMarketService(market ismapi.ClientI, store cache.Store) MarketServiceI {
	return &marketService{market: market, cache: store}
}

func (m *marketService) GetNewsArticles(ctx context.Context) ([]types.NewsArticle, error) {
	var cached []types.NewsArticle
	if m.cache.Get(ctx, "news_articles", &cached) {
		return cached, nil
	}

	articles, err := m.market.GetNews(ctx)
	if err != nil {
		return nil, err
	}
	m.cache.Set(ctx, "news_articles", articles, cache.NewsArticlesTTL)
	return articles, nil
}

// GetStockNews prefers the dedicated news key, then the cached detail
// record, and only then goes upstream.
func (m *marketService) GetStockNews(ctx context.Context, symbol string) ([]types.RecentNews, error) {
	newsKey := fmt.Sprintf("stock_news:%s", symbol)
	var cached []types.RecentNews
	if m.cache.Get(ctx, newsKey, &cached) {
		return cached, nil
	}

	var detail types.StockDetail
	if m.cache.Get(ctx, fmt.Sprintf("stock_details:%s", symbol), &detail) {
		if len(detail.RecentNews) > 0 {
			m.cache.Set(ctx, newsKey, detail.RecentNews, cache.StockNewsTTL)
		}
		return detail.RecentNews, nil
	}

	fetched, err := m.market.GetStockDetails(ctx, symbol)
	if err != nil {
		return nil, err
	}
	m.cache.Set(ctx, fmt.Sprintf("stock_details:%s", symbol), fetched, cache.StockDetailsTTL)
	if len(fetched.RecentNews) > 0 {
		m.cache.Set(ctx, newsKey, fetched.RecentNews, cache.StockNewsTTL)
	}
	return fetched.RecentNews, nil
}

func (m *marketService) GetTrendingStocks(ctx context.Context) (*types.TrendingStocks, error) {
	var cached types.TrendingStocks
	if m.cache.Get(ctx, "trending_stocks", &cached) {
		return &cached, nil
	}

	trending, err := m.market.GetTrendingStocks(ctx)
	if err != nil {
		return nil, err
	}
	m.cache.Set(ctx, "trending_stocks", trending, cache.TrendingTTL)
	return trending, nil
}
