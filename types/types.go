package types

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Holding is one position in a user's portfolio, as stored in Mongo.
type Holding struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID       string             `bson:"userId" json:"-"`
	Symbol       string             `bson:"symbol" json:"symbol"`
	Name         string             `bson:"name" json:"name"`
	ISIN         string             `bson:"isin,omitempty" json:"isin,omitempty"`
	Exchange     string             `bson:"exchange,omitempty" json:"exchange,omitempty"`
	Shares       int64              `bson:"shares" json:"shares"`
	AvgCost      float64            `bson:"avgCost" json:"avgCost"`
	HoldingSince time.Time          `bson:"holdingSince,omitempty" json:"holdingSince,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
}

// HoldingMetrics is the per-holding valuation view, derived fresh on every
// request and never persisted.
type HoldingMetrics struct {
	Symbol           string  `json:"symbol"`
	Name             string  `json:"name"`
	Shares           int64   `json:"shares"`
	AvgCost          float64 `json:"avgCost"`
	CurrentPrice     float64 `json:"currentPrice"`
	CostBasis        float64 `json:"costBasis"`
	CurrentValue     float64 `json:"currentValue"`
	UnrealizedPnl    float64 `json:"unrealizedPnl"`
	UnrealizedPnlPct float64 `json:"unrealizedPnlPct"`
	DaysPnl          float64 `json:"daysPnl"`
	Weightage        float64 `json:"weightage"`
	Industry         string  `json:"industry"`
}

type SectorAllocation struct {
	Sector       string   `json:"sector"`
	CurrentValue float64  `json:"currentValue"`
	Weight       float64  `json:"weight"`
	Holdings     []string `json:"holdings"`
}

type PortfolioSummary struct {
	TotalInvested     float64            `json:"totalInvested"`
	TotalCurrentValue float64            `json:"totalCurrentValue"`
	TotalPnl          float64            `json:"totalPnl"`
	TotalReturnPct    float64            `json:"totalReturnPct"`
	SectorAllocations []SectorAllocation `json:"sectorAllocations"`
}

type StockRiskMetrics struct {
	Symbol            string  `json:"symbol"`
	Beta              float64 `json:"beta"`
	Weightage         float64 `json:"weightage"`
	UnrealizedPnl     float64 `json:"unrealizedPnl"`
	RiskMeter         string  `json:"riskMeter"`
	StandardDeviation float64 `json:"standardDeviation"`
}

type PortfolioRiskMetrics struct {
	Beta                float64            `json:"beta"`
	TotalPnl            float64            `json:"totalPnl"`
	SectorAllocations   []SectorAllocation `json:"sectorAllocations"`
	StandardDeviation   float64            `json:"standardDeviation"`
	Top3HoldingsWeight  float64            `json:"top3HoldingsWeightage"`
	HerfindahlIndex     float64            `json:"herfindahlIndex"`
	SectorConcentration float64            `json:"sectorConcentration"`
}

// NewsArticle is one market-wide news item from the upstream feed.
type NewsArticle struct {
	Title    string   `json:"title"`
	Summary  string   `json:"summary"`
	URL      string   `json:"url"`
	ImageURL string   `json:"image_url"`
	PubDate  string   `json:"pub_date"`
	Source   string   `json:"source"`
	Topics   []string `json:"topics"`
}

type TrendingStock struct {
	TickerID      string `json:"ticker_id"`
	CompanyName   string `json:"company_name"`
	Price         string `json:"price"`
	PercentChange string `json:"percent_change"`
	Date          string `json:"date"`
}

type TrendingLists struct {
	TopGainers []TrendingStock `json:"top_gainers"`
	TopLosers  []TrendingStock `json:"top_losers"`
}

type TrendingStocks struct {
	Trending TrendingLists `json:"trending_stocks"`
}

// InvestmentPreference captures what the advisory prompt is tailored with.
type InvestmentPreference struct {
	UserID                 string    `bson:"userId" json:"-"`
	RiskTolerance          string    `bson:"riskTolerance" json:"riskTolerance"`
	InvestmentHorizon      string    `bson:"investmentHorizon" json:"investmentHorizon"`
	TargetAnnualReturn     string    `bson:"targetAnnualReturn" json:"targetAnnualReturn"`
	MonthlyInvestmentRange string    `bson:"monthlyInvestmentRange" json:"monthlyInvestmentRange"`
	PreferredSectors       []string  `bson:"preferredSectors" json:"preferredSectors"`
	AvoidSectors           []string  `bson:"avoidSectors" json:"avoidSectors"`
	MaxPositionSize        float64   `bson:"maxPositionSize" json:"maxPositionSize"`
	DividendFocus          bool      `bson:"dividendFocus" json:"dividendFocus"`
	ESGFocus               bool      `bson:"esgFocus" json:"esgFocus"`
	UpdatedAt              time.Time `bson:"updatedAt" json:"updatedAt"`
}

// PortfolioEvent is published to Kafka/RabbitMQ on notable portfolio changes.
type PortfolioEvent struct {
	Event     string    `json:"event"`
	UserID    string    `json:"userId"`
	Symbols   []string  `json:"symbols,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
