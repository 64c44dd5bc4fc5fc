package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// filterColumns maps the public filter keys to row columns.
var filterColumns = map[string]string{
	"date":     ColDate,
	"category": ColCategory,
	"name":     ColName,
}

// Filters bundles the optional list filters. Blank values are not applied;
// application order is category, date, name.
type Filters struct {
	Category string
	Date     string
	Name     string
}

// IsZero reports whether no filter is set.
func (f Filters) IsZero() bool {
	return f == Filters{}
}

// Filter returns the rows whose column for key equals value, compared
// case-insensitively. The key is case-insensitive and resolves through the
// date/category/name mapping; an unrecognized key is taken as a literal
// column name. Rows missing the column never match.
func Filter(rows []Row, key, value string) []Row {
	col, ok := filterColumns[strings.ToLower(key)]
	if !ok {
		col = key
	}
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		v, ok := r[col]
		if !ok {
			continue
		}
		if strings.EqualFold(v, value) {
			out = append(out, r)
		}
	}
	return out
}

// ApplyFilters runs the non-blank filters in order; sequential application
// composes as a logical AND.
func ApplyFilters(rows []Row, f Filters) []Row {
	if f.Category != "" {
		rows = Filter(rows, "category", f.Category)
	}
	if f.Date != "" {
		rows = Filter(rows, "date", f.Date)
	}
	if f.Name != "" {
		rows = Filter(rows, "name", f.Name)
	}
	return rows
}

// Statistics is the aggregate view of a transaction collection.
type Statistics struct {
	CategoryTotals   map[string]decimal.Decimal
	TotalAmount      decimal.Decimal
	TransactionCount int
}

// Aggregate sums a collection. Every row must carry a parsable amount; a
// single bad amount fails the whole aggregation instead of silently skewing
// the totals. Rows without a category bucket under the empty string.
func Aggregate(rows []Row) (Statistics, error) {
	stats := Statistics{
		CategoryTotals: make(map[string]decimal.Decimal),
	}
	for _, r := range rows {
		amount, err := ParseAmount(r[ColAmount])
		if err != nil {
			return Statistics{}, fmt.Errorf("aggregate transaction %q: %w", r[ColID], err)
		}
		cat := r[ColCategory]
		stats.CategoryTotals[cat] = stats.CategoryTotals[cat].Add(amount)
		stats.TotalAmount = stats.TotalAmount.Add(amount)
	}
	stats.TransactionCount = len(rows)
	return stats, nil
}

// PercentOfTotal returns part/total*100, or zero when the total is zero.
func PercentOfTotal(part, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return part.Div(total).Mul(decimal.NewFromInt(100))
}
