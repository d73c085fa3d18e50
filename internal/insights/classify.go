// Package insights turns raw transaction and account lists into categorized
// spending summaries, a financial-health score and compound-growth
// projections.
//
// Everything in this package except Service and Latest is a pure function of
// its arguments: no I/O, no logging, no shared mutable state, and no errors.
// Degenerate input (empty lists, zero totals, malformed numbers) maps to a
// defined default instead.
package insights

import (
	"sort"
	"strings"

	"askcents/internal/core"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	CategoryOther = "OTHER"

	defaultColorTag = "gray"
	defaultIconTag  = "dollar-sign"
)

// CategoryInfo is the display triple for a category key.
type CategoryInfo struct {
	Key         string `json:"key"`
	DisplayName string `json:"display_name"`
	ColorTag    string `json:"color_tag"`
	IconTag     string `json:"icon_tag"`
}

// categoryTable is the single source of truth for category display data.
var categoryTable = map[string]CategoryInfo{
	"FOOD_AND_DRINK":      {DisplayName: "Food & Dining", ColorTag: "mint", IconTag: "coffee"},
	"GENERAL_MERCHANDISE": {DisplayName: "Shopping", ColorTag: "navy", IconTag: "shopping-bag"},
	"TRANSPORTATION":      {DisplayName: "Transportation", ColorTag: "gray", IconTag: "car"},
	"RENT_AND_UTILITIES":  {DisplayName: "Rent & Housing", ColorTag: "navy", IconTag: "home"},
	"ENTERTAINMENT":       {DisplayName: "Entertainment", ColorTag: "beige", IconTag: "film"},
	"TRAVEL":              {DisplayName: "Travel", ColorTag: "mint", IconTag: "plane"},
	"HEALTHCARE":          {DisplayName: "Healthcare", ColorTag: "mint", IconTag: "heart"},
	"MEDICAL":             {DisplayName: "Healthcare", ColorTag: "mint", IconTag: "heart"},
	"BANK_FEES":           {DisplayName: "Bank Fees", ColorTag: "beige", IconTag: "credit-card"},
	"PERSONAL_CARE":       {DisplayName: "Personal Care", ColorTag: "beige", IconTag: "smile"},
	"TRANSFER_IN":         {DisplayName: "Transfers In", ColorTag: "mint", IconTag: "arrow-down"},
	"TRANSFER_OUT":        {DisplayName: "Transfers Out", ColorTag: "gray", IconTag: "arrow-up"},
	"LOAN_PAYMENTS":       {DisplayName: "Loan Payments", ColorTag: "navy", IconTag: "credit-card"},
	"INCOME":              {DisplayName: "Income", ColorTag: "mint", IconTag: "trending-up"},
	CategoryOther:         {DisplayName: "Other", ColorTag: defaultColorTag, IconTag: defaultIconTag},
}

// NormalizeKey upper-cases a raw label and joins words with underscores, so
// "Food and Drink", "food-and-drink" and "FOOD_AND_DRINK" share one key.
// Empty input maps to OTHER.
func NormalizeKey(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return CategoryOther
	}
	fields := strings.FieldsFunc(strings.ToUpper(raw), func(r rune) bool {
		return r == ' ' || r == '_' || r == '-' || r == '\t'
	})
	if len(fields) == 0 {
		return CategoryOther
	}
	return strings.Join(fields, "_")
}

// Classify maps a raw category label to its display triple. It is total and
// idempotent: every string, including the empty string, has an answer.
// A Caser is stateful, so one is built per call.
func Classify(raw string) CategoryInfo {
	key := NormalizeKey(raw)
	if info, ok := categoryTable[key]; ok {
		info.Key = key
		return info
	}
	return CategoryInfo{
		Key:         key,
		DisplayName: cases.Title(language.English).String(strings.ToLower(strings.ReplaceAll(key, "_", " "))),
		ColorTag:    defaultColorTag,
		IconTag:     defaultIconTag,
	}
}

// CategoryKey resolves the category key of a transaction: the structured
// primary category first, then the first non-empty raw label, then OTHER.
func CategoryKey(t core.Transaction) string {
	if t.PersonalFinanceCategory != nil && strings.TrimSpace(t.PersonalFinanceCategory.Primary) != "" {
		return NormalizeKey(t.PersonalFinanceCategory.Primary)
	}
	for _, c := range t.RawCategory {
		if strings.TrimSpace(c) != "" {
			return NormalizeKey(c)
		}
	}
	return CategoryOther
}

// KnownCategories returns the keys of the fixed table, sorted.
func KnownCategories() []string {
	keys := make([]string, 0, len(categoryTable))
	for k := range categoryTable {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
