package expense

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kharcha/internal/model"
)

func mk(t *testing.T, date, amount, category, description string) model.Expense {
	t.Helper()
	d, err := time.Parse(model.DateOnly, date)
	require.NoError(t, err)
	amt, err := decimal.NewFromString(amount)
	require.NoError(t, err)
	return model.Expense{
		Date:            d,
		Amount:          amt,
		Category:        category,
		Description:     description,
		ExpenseType:     model.ExpenseTypeExpense,
		TransactionType: model.TransactionDebit,
	}
}

func TestFilterMonth(t *testing.T) {
	xs := []model.Expense{
		mk(t, "2024-03-01", "250.00", "Groceries", ""),
		mk(t, "2024-03-31", "10.00", "Transport", ""),
		mk(t, "2024-04-01", "99.00", "Rent", ""),
		mk(t, "2023-03-15", "5.00", "Others", ""),
	}

	got := FilterMonth(xs, 2024, time.March)
	require.Len(t, got, 2)
	assert.Equal(t, "Groceries", got[0].Category)
	assert.Equal(t, "Transport", got[1].Category)
}

func TestFilterCategoryExactMatch(t *testing.T) {
	xs := []model.Expense{
		mk(t, "2024-03-01", "1.00", "Groceries", ""),
		mk(t, "2024-03-02", "2.00", "groceries", ""),
		mk(t, "2024-03-03", "3.00", "Groceries", ""),
	}

	got := FilterCategory(xs, "Groceries")
	require.Len(t, got, 2)
}

func TestSearch(t *testing.T) {
	xs := []model.Expense{
		mk(t, "2024-03-01", "1.00", "Groceries", "weekly veggies"),
		mk(t, "2024-03-02", "2.00", "Transport", "metro card"),
		mk(t, "2024-03-03", "3.00", "Food & Dining", "dinner out"),
	}

	assert.Len(t, Search(xs, "VEGGIES"), 1)
	assert.Len(t, Search(xs, "transport"), 1)
	assert.Len(t, Search(xs, ""), 3)
	assert.Len(t, Search(xs, "nomatch"), 0)
}

func TestSortByDateDescStable(t *testing.T) {
	xs := []model.Expense{
		mk(t, "2024-03-01", "1.00", "A", "first"),
		mk(t, "2024-03-15", "2.00", "B", ""),
		mk(t, "2024-03-01", "3.00", "C", "second"),
	}

	SortByDateDesc(xs)
	assert.Equal(t, "B", xs[0].Category)
	// Same-day records keep their incoming order.
	assert.Equal(t, "A", xs[1].Category)
	assert.Equal(t, "C", xs[2].Category)
}

func TestGroupByDateOrderAndMembership(t *testing.T) {
	xs := []model.Expense{
		mk(t, "2024-03-01", "250.00", "Groceries", ""),
		mk(t, "2024-03-15", "40.00", "Transport", ""),
		mk(t, "2024-03-01", "60.00", "Food & Dining", ""),
	}

	groups := GroupByDate(xs)
	require.Len(t, groups, 2)
	assert.Equal(t, "2024-03-15", groups[0].Date.Format(model.DateOnly))
	assert.Equal(t, "2024-03-01", groups[1].Date.Format(model.DateOnly))
	assert.Len(t, groups[1].Expenses, 2)
	assert.Equal(t, "310.00", FormatAmount(groups[1].Total()))
}

func TestGroupingPreservesTotal(t *testing.T) {
	xs := []model.Expense{
		mk(t, "2024-03-01", "250.00", "Groceries", ""),
		mk(t, "2024-03-01", "0.01", "Others", ""),
		mk(t, "2024-03-15", "40.50", "Transport", ""),
		mk(t, "2024-04-02", "99.99", "Rent", ""),
	}

	grouped := decimal.Zero
	for _, g := range GroupByDate(xs) {
		grouped = grouped.Add(g.Total())
	}
	assert.True(t, grouped.Equal(Total(xs)),
		"sum of group totals (%s) must equal ungrouped total (%s)", grouped, Total(xs))
}

func TestTotalEmpty(t *testing.T) {
	assert.Equal(t, "0.00", FormatAmount(Total(nil)))
}

func TestFormatAmountTwoDecimals(t *testing.T) {
	for in, want := range map[string]string{
		"250":    "250.00",
		"250.5":  "250.50",
		"250.00": "250.00",
		"0":      "0.00",
	} {
		d, err := decimal.NewFromString(in)
		require.NoError(t, err)
		assert.Equal(t, want, FormatAmount(d))
	}
}
