package query

import (
	"math"

	"github.com/mamadbah2/cellar/internal/domain/models"
)

// Stats are the cellar-wide aggregates. They are always computed over the
// full collection, never over a filtered view.
type Stats struct {
	TotalValue int64 `json:"total_value"`
	Bottles    int   `json:"bottles"`
	Labels     int   `json:"labels"`
}

// FormattedValue renders TotalValue for display.
func (s Stats) FormattedValue() string {
	return models.FormatAmount(s.TotalValue)
}

// Summarize computes the acquisition value, bottle count and label count.
// The value saturates at math.MaxInt64 instead of overflowing.
func Summarize(wines []models.Wine) Stats {
	stats := Stats{Labels: len(wines)}
	for _, w := range wines {
		stats.TotalValue = addSaturated(stats.TotalValue, lineValue(models.ParseDigits(w.AcquisitionPrice), w.Stock))
		stats.Bottles += w.Stock
	}
	return stats
}

func lineValue(price int64, stock int) int64 {
	if price <= 0 || stock <= 0 {
		return 0
	}
	if price > math.MaxInt64/int64(stock) {
		return math.MaxInt64
	}
	return price * int64(stock)
}

func addSaturated(a, b int64) int64 {
	if b > math.MaxInt64-a {
		return math.MaxInt64
	}
	return a + b
}
