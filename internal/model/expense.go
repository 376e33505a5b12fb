package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type ExpenseType string

const (
	ExpenseTypeExpense ExpenseType = "expense"
	ExpenseTypeReturn  ExpenseType = "return"
)

func (t ExpenseType) Valid() bool {
	return t == ExpenseTypeExpense || t == ExpenseTypeReturn
}

type TransactionType string

const (
	TransactionCredit TransactionType = "credit"
	TransactionDebit  TransactionType = "debit"
)

func (t TransactionType) Valid() bool {
	return t == TransactionCredit || t == TransactionDebit
}

// Categories is the fixed expense category catalog. Anything outside
// it is folded to "Others" on write.
var Categories = []string{
	"Groceries",
	"Food & Dining",
	"Transport",
	"Shopping",
	"Utilities",
	"Rent",
	"Health",
	"Entertainment",
	"Travel",
	"Education",
	"Others",
}

// NormalizeCategory maps unknown category values to "Others".
func NormalizeCategory(c string) string {
	for _, known := range Categories {
		if c == known {
			return c
		}
	}
	return "Others"
}

// Expense is one dated ledger entry owned by a single phone number.
// Date carries no time component; Amount is non-negative and rendered
// with two decimals.
type Expense struct {
	ID              int64           `json:"id"`
	Phone           string          `json:"userId"`
	Date            time.Time       `json:"date"`
	Amount          decimal.Decimal `json:"amount"`
	ExpenseType     ExpenseType     `json:"expenseType"`
	Category        string          `json:"category"`
	Description     string          `json:"description"`
	TransactionType TransactionType `json:"transactionType"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// DateOnly is the calendar-date wire and storage format.
const DateOnly = "2006-01-02"

// Validate checks field constraints shared by create and update.
func (e *Expense) Validate() error {
	if e.Date.IsZero() {
		return fmt.Errorf("date is required")
	}
	if e.Amount.IsNegative() {
		return fmt.Errorf("amount must not be negative")
	}
	if !e.ExpenseType.Valid() {
		return fmt.Errorf("invalid expense type %q", e.ExpenseType)
	}
	if !e.TransactionType.Valid() {
		return fmt.Errorf("invalid transaction type %q", e.TransactionType)
	}
	return nil
}

// ParseAmount parses a decimal amount string, rejecting malformed or
// negative values instead of letting them reach storage.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("amount %q must not be negative", s)
	}
	return d, nil
}
