package helpers

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// Helper function to match header titles
func MatchHeader(cellValue string, patterns []string) bool {
	normalizedValue := NormalizeString(cellValue)
	for _, pattern := range patterns {
		matched, _ := regexp.MatchString(pattern, normalizedValue)
		if matched {
			return true
		}
	}
	return false
}

// Helper function to normalize strings
func NormalizeString(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func ToFloat(value string) float64 {
	// Remove commas from the string
	cleanStr := strings.ReplaceAll(strings.TrimSpace(value), ",", "")

	if cleanStr == "" {
		return 0.0
	}

	// Percentages become their decimal equivalent
	if strings.Contains(cleanStr, "%") {
		cleanStr = strings.ReplaceAll(cleanStr, "%", "")
		f, err := strconv.ParseFloat(cleanStr, 64)
		if err != nil {
			zap.L().Error("Error converting percentage to float64", zap.Error(err))
			return 0.0
		}
		return f / 100.0
	}

	f, err := strconv.ParseFloat(cleanStr, 64)
	if err != nil {
		zap.L().Error("Error converting to float64", zap.Error(err))
		return 0.0
	}
	return f
}

// ToShares parses a quantity cell. Fractional quantities round down.
func ToShares(value string) int64 {
	return int64(ToFloat(value))
}

var whitespacePattern = regexp.MustCompile(`\s+`)

// CleanHTMLText reduces an HTML fragment to its readable text.
func CleanHTMLText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.TrimSpace(html)
	}
	text := doc.Text()
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
}

// Truncate cuts s to at most n runes, appending an ellipsis when it does.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
