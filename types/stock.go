package types

import (
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// CurrentPrice carries the exchange quotes as the upstream sends them:
// decimal strings, either of which may be empty.
type CurrentPrice struct {
	BSE string `json:"BSE"`
	NSE string `json:"NSE"`
}

type KeyMetricItem struct {
	DisplayName string `json:"displayName"`
	Key         string `json:"key"`
	Value       string `json:"value"`
}

type KeyMetrics struct {
	PriceAndVolume []KeyMetricItem `json:"priceandVolume"`
	Valuation      []KeyMetricItem `json:"valuation"`
	Margins        []KeyMetricItem `json:"margins"`
	Growth         []KeyMetricItem `json:"growth"`
}

type RiskMeter struct {
	CategoryName string  `json:"categoryName"`
	StdDev       float64 `json:"stdDev"`
}

// ReusableData is the slice of stockDetailsReusableData we actually read.
type ReusableData struct {
	Close         string `json:"close"`
	Price         string `json:"price"`
	PercentChange string `json:"percentChange"`
	MarketCap     string `json:"marketCap"`
	YHigh         string `json:"yhigh"`
	YLow          string `json:"ylow"`
}

type RecentNews struct {
	ID       string `json:"id"`
	Headline string `json:"headline"`
	Intro    string `json:"intro"`
	Date     string `json:"date"`
	Section  string `json:"section"`
	URL      string `json:"url"`
	Body     string `json:"body"`
}

// StockDetail is one symbol's full upstream record. Every analytic field is
// optional on the wire; absence must never fail decoding, so the zero value
// of each field is a valid "unknown".
type StockDetail struct {
	CompanyName   string       `json:"companyName"`
	Industry      string       `json:"industry"`
	CurrentPrice  CurrentPrice `json:"currentPrice"`
	PercentChange string       `json:"percentChange"`
	YearHigh      string       `json:"yearHigh"`
	YearLow       string       `json:"yearLow"`
	KeyMetrics    *KeyMetrics  `json:"keyMetrics"`
	RiskMeter     *RiskMeter   `json:"riskMeter"`
	ReusableData  ReusableData `json:"stockDetailsReusableData"`
	RecentNews    []RecentNews `json:"recentNews"`
}

// PriceValue returns the live price, preferring NSE over BSE, 0 when neither
// exchange reported a quote.
func (s *StockDetail) PriceValue() float64 {
	if v := parseQuote(s.CurrentPrice.NSE); v != 0 {
		return v
	}
	return parseQuote(s.CurrentPrice.BSE)
}

// PreviousClose returns the prior session close, 0 when absent.
func (s *StockDetail) PreviousClose() float64 {
	return parseQuote(s.ReusableData.Close)
}

// IndustryName returns the reported industry or "Unknown".
func (s *StockDetail) IndustryName() string {
	if s.Industry == "" {
		return "Unknown"
	}
	return s.Industry
}

// Beta scans the price-and-volume metric list for the entry keyed "beta".
// Absence or a garbled value yields 0, never an error.
func (s *StockDetail) Beta() float64 {
	if s.KeyMetrics == nil {
		return 0
	}
	for _, metric := range s.KeyMetrics.PriceAndVolume {
		if metric.Key != "beta" || metric.Value == "" {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(metric.Value), 64)
		if err != nil {
			zap.L().Warn("Unparseable beta value", zap.String("company", s.CompanyName), zap.String("value", metric.Value))
			return 0
		}
		return v
	}
	return 0
}

// RiskCategory returns the upstream risk-meter bucket or "Unknown".
func (s *StockDetail) RiskCategory() string {
	if s.RiskMeter == nil || s.RiskMeter.CategoryName == "" {
		return "Unknown"
	}
	return s.RiskMeter.CategoryName
}

// RiskStdDev returns the upstream per-stock standard deviation, 0 when absent.
func (s *StockDetail) RiskStdDev() float64 {
	if s.RiskMeter == nil {
		return 0
	}
	return s.RiskMeter.StdDev
}

func parseQuote(raw string) float64 {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if cleaned == "" {
		return 0
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return v
}
