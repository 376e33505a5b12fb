package store

import (
	"database/sql"
	"fmt"
	"time"

	"kharcha/internal/model"
)

// ExpenseStore persists ledger entries in the table partition chosen by
// config (expenses_dev or expenses_prod), mirroring the deployment-tag
// partitioning of the data it replaces.
type ExpenseStore struct {
	db    *sql.DB
	table string
}

func NewExpenseStore(db *sql.DB, table string) *ExpenseStore {
	return &ExpenseStore{db: db, table: table}
}

const expenseCols = `id, phone, date, amount, expense_type, category, description, transaction_type, created_at, updated_at`

// scanExpense validates the row at the storage boundary: a malformed
// date or amount is an error, not a zero value that skews totals.
func scanExpense(scanner interface{ Scan(...any) error }) (*model.Expense, error) {
	var e model.Expense
	var date, amount string

	err := scanner.Scan(
		&e.ID, &e.Phone, &date, &amount, &e.ExpenseType,
		&e.Category, &e.Description, &e.TransactionType,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	e.Date, err = time.Parse(model.DateOnly, date)
	if err != nil {
		return nil, fmt.Errorf("malformed expense date %q: %w", date, err)
	}
	e.Amount, err = model.ParseAmount(amount)
	if err != nil {
		return nil, fmt.Errorf("malformed expense amount: %w", err)
	}
	return &e, nil
}

// Create persists a new record owned by phone and returns it with its
// assigned identifier.
func (s *ExpenseStore) Create(phone string, e model.Expense) (*model.Expense, error) {
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("validate expense: %w", err)
	}
	result, err := s.db.Exec(
		`INSERT INTO `+s.table+` (phone, date, amount, expense_type, category, description, transaction_type)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		phone, e.Date.Format(model.DateOnly), e.Amount.StringFixed(2),
		string(e.ExpenseType), model.NormalizeCategory(e.Category), e.Description, string(e.TransactionType),
	)
	if err != nil {
		return nil, fmt.Errorf("insert expense: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

// GetByID returns the record at id, or nil if it does not exist.
func (s *ExpenseStore) GetByID(id int64) (*model.Expense, error) {
	row := s.db.QueryRow(`SELECT `+expenseCols+` FROM `+s.table+` WHERE id = ?`, id)
	e, err := scanExpense(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

// ListByPhone returns every record owned by phone, newest date first.
func (s *ExpenseStore) ListByPhone(phone string) ([]model.Expense, error) {
	rows, err := s.db.Query(
		`SELECT `+expenseCols+` FROM `+s.table+` WHERE phone = ? ORDER BY date DESC, id DESC`,
		phone,
	)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []model.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, *e)
	}
	return expenses, rows.Err()
}

// Update overwrites all mutable fields of the record at id.
func (s *ExpenseStore) Update(id int64, e model.Expense) (*model.Expense, error) {
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("validate expense: %w", err)
	}
	_, err := s.db.Exec(
		`UPDATE `+s.table+` SET date = ?, amount = ?, expense_type = ?, category = ?, description = ?, transaction_type = ?, updated_at = datetime('now')
		 WHERE id = ?`,
		e.Date.Format(model.DateOnly), e.Amount.StringFixed(2),
		string(e.ExpenseType), model.NormalizeCategory(e.Category), e.Description, string(e.TransactionType), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update expense: %w", err)
	}
	return s.GetByID(id)
}

func (s *ExpenseStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM `+s.table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return nil
}
