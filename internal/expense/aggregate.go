// Package expense holds the pure query helpers the listing view is
// built on: month/category/text filters, date-descending ordering, and
// date-grouped totals. Everything here is deterministic and free of
// I/O; the store hands these functions a user's records and the
// handlers apply them.
package expense

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"kharcha/internal/model"
)

// FilterMonth keeps records falling in the given calendar month.
func FilterMonth(xs []model.Expense, year int, month time.Month) []model.Expense {
	var out []model.Expense
	for _, e := range xs {
		if e.Date.Year() == year && e.Date.Month() == month {
			out = append(out, e)
		}
	}
	return out
}

// FilterCategory keeps records with an exact category match.
func FilterCategory(xs []model.Expense, category string) []model.Expense {
	var out []model.Expense
	for _, e := range xs {
		if e.Category == category {
			out = append(out, e)
		}
	}
	return out
}

// Search keeps records whose description or category contains q,
// case-insensitively.
func Search(xs []model.Expense, q string) []model.Expense {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return xs
	}
	var out []model.Expense
	for _, e := range xs {
		if strings.Contains(strings.ToLower(e.Description), q) ||
			strings.Contains(strings.ToLower(e.Category), q) {
			out = append(out, e)
		}
	}
	return out
}

// SortByDateDesc orders records newest date first, in place. The sort
// is stable so same-day records keep their incoming order.
func SortByDateDesc(xs []model.Expense) {
	sort.SliceStable(xs, func(i, j int) bool {
		return xs[i].Date.After(xs[j].Date)
	})
}

// DateGroup is one calendar date's worth of records.
type DateGroup struct {
	Date     time.Time
	Expenses []model.Expense
}

// Total sums the group's amounts.
func (g DateGroup) Total() decimal.Decimal {
	return Total(g.Expenses)
}

// GroupByDate buckets records by calendar date, groups ordered newest
// first. Total is invariant under this grouping: the per-group totals
// sum to Total of the input.
func GroupByDate(xs []model.Expense) []DateGroup {
	byDate := make(map[string][]model.Expense)
	for _, e := range xs {
		key := e.Date.Format(model.DateOnly)
		byDate[key] = append(byDate[key], e)
	}

	keys := make([]string, 0, len(byDate))
	for k := range byDate {
		keys = append(keys, k)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	groups := make([]DateGroup, 0, len(keys))
	for _, k := range keys {
		d, _ := time.Parse(model.DateOnly, k)
		groups = append(groups, DateGroup{Date: d, Expenses: byDate[k]})
	}
	return groups
}

// Total sums all amounts in the sequence. Amounts are validated at the
// storage boundary, so summation here is total and exact.
func Total(xs []model.Expense) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range xs {
		sum = sum.Add(e.Amount)
	}
	return sum
}

// FormatAmount renders an amount with two decimal places ("250.00").
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
