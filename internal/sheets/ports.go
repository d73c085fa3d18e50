package sheets

import (
	"context"
	"time"

	"askcents/internal/core"
)

// Exporter writes an insights report to an outbound store.
type Exporter interface {
	// ExportCategories appends one row per category and returns a reference
	// to the written range.
	ExportCategories(ctx context.Context, vm core.InsightsViewModel) (rowRef string, err error)
}

// CategoryRows renders vm as report rows dated at. Columns are date,
// category, total, percent and transaction count.
func CategoryRows(vm core.InsightsViewModel, at time.Time) [][]any {
	date := at.Format("2006-01-02")
	rows := make([][]any, 0, len(vm.Categories))
	for _, c := range vm.Categories {
		rows = append(rows, []any{
			date,
			c.DisplayName,
			core.RoundCents(c.TotalAmount),
			c.PercentageOfTotal,
			c.TransactionCount,
		})
	}
	return rows
}
