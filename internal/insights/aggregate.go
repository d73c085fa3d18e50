package insights

import (
	"math"
	"sort"

	"askcents/internal/core"
)

// Aggregation is the result of one aggregation pass.
type Aggregation struct {
	Categories []core.CategorySummary `json:"categories"`
	// TotalSpent covers every outflow, including categories cut by top-N.
	TotalSpent  float64 `json:"total_spent"`
	TotalIncome float64 `json:"total_income"`
	// OutflowCount is the number of transactions that counted as spend.
	OutflowCount int `json:"outflow_count"`
}

type bucket struct {
	key   string
	total float64
	count int
}

// Aggregate groups outflows by category key and ranks the groups by total
// spend. topN <= 0 keeps every category; truncation happens after sorting.
func Aggregate(txs []core.Transaction, topN int) Aggregation {
	out := Aggregation{Categories: []core.CategorySummary{}}
	if len(txs) == 0 {
		return out
	}

	groups := make(map[string]*bucket)
	for _, t := range txs {
		amount := finite(t.Amount)
		key := CategoryKey(t)
		if !t.IsOutflow() || key == "TRANSFER_IN" {
			out.TotalIncome += math.Abs(amount)
			continue
		}
		b, ok := groups[key]
		if !ok {
			b = &bucket{key: key}
			groups[key] = b
		}
		b.total += amount
		b.count++
		out.OutflowCount++
	}

	buckets := make([]*bucket, 0, len(groups))
	for _, b := range groups {
		buckets = append(buckets, b)
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].total != buckets[j].total {
			return buckets[i].total > buckets[j].total
		}
		return buckets[i].key < buckets[j].key
	})

	// Summing in ranked order keeps TotalSpent equal to the sum of the
	// untruncated category totals.
	for _, b := range buckets {
		out.TotalSpent += b.total
	}

	for _, b := range buckets {
		info := Classify(b.key)
		out.Categories = append(out.Categories, core.CategorySummary{
			CategoryKey:       b.key,
			DisplayName:       info.DisplayName,
			ColorTag:          info.ColorTag,
			IconTag:           info.IconTag,
			TotalAmount:       b.total,
			PercentageOfTotal: percentOf(b.total, out.TotalSpent),
			TransactionCount:  b.count,
		})
	}

	if topN > 0 && len(out.Categories) > topN {
		out.Categories = out.Categories[:topN]
	}
	return out
}

// percentOf returns part/total*100 rounded to one decimal, or 0 when total
// is zero.
func percentOf(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(part/total*1000) / 10
}

// finite maps NaN and infinities to 0.
func finite(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return x
}
