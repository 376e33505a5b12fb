package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"kharcha/internal/auth"
	"kharcha/internal/expense"
	"kharcha/internal/model"
	"kharcha/internal/store"
)

type ExpenseHandler struct {
	expenses *store.ExpenseStore
	logger   *slog.Logger
}

func NewExpenseHandler(es *store.ExpenseStore, logger *slog.Logger) *ExpenseHandler {
	return &ExpenseHandler{expenses: es, logger: logger}
}

type expenseRequest struct {
	Date            string `json:"date"`
	Amount          string `json:"amount"`
	ExpenseType     string `json:"expenseType"`
	Category        string `json:"category"`
	Description     string `json:"description"`
	TransactionType string `json:"transactionType"`
}

// toModel parses the wire form. Date and amount arrive as strings and
// are rejected here, before the store sees them.
func (req *expenseRequest) toModel() (model.Expense, string) {
	date, err := time.Parse(model.DateOnly, strings.TrimSpace(req.Date))
	if err != nil {
		return model.Expense{}, "Invalid date, expected YYYY-MM-DD"
	}
	amount, err := model.ParseAmount(strings.TrimSpace(req.Amount))
	if err != nil {
		return model.Expense{}, "Invalid amount"
	}
	e := model.Expense{
		Date:            date,
		Amount:          amount,
		ExpenseType:     model.ExpenseType(req.ExpenseType),
		Category:        strings.TrimSpace(req.Category),
		Description:     strings.TrimSpace(req.Description),
		TransactionType: model.TransactionType(req.TransactionType),
	}
	if err := e.Validate(); err != nil {
		return model.Expense{}, err.Error()
	}
	return e, ""
}

type expenseResponse struct {
	ID              int64  `json:"id"`
	UserID          string `json:"userId"`
	Date            string `json:"date"`
	Amount          string `json:"amount"`
	ExpenseType     string `json:"expenseType"`
	Category        string `json:"category"`
	Description     string `json:"description"`
	TransactionType string `json:"transactionType"`
}

func toResponse(e model.Expense) expenseResponse {
	return expenseResponse{
		ID:              e.ID,
		UserID:          e.Phone,
		Date:            e.Date.Format(model.DateOnly),
		Amount:          expense.FormatAmount(e.Amount),
		ExpenseType:     string(e.ExpenseType),
		Category:        e.Category,
		Description:     e.Description,
		TransactionType: string(e.TransactionType),
	}
}

func toResponses(list []model.Expense) []expenseResponse {
	out := make([]expenseResponse, 0, len(list))
	for _, e := range list {
		out = append(out, toResponse(e))
	}
	return out
}

// parseMonthParam reads an optional ?month=YYYY-MM query parameter.
func parseMonthParam(r *http.Request) (time.Time, bool, string) {
	month := r.URL.Query().Get("month")
	if month == "" {
		return time.Time{}, false, ""
	}
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}, false, "Invalid month, expected YYYY-MM"
	}
	return t, true, ""
}

func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid JSON"})
		return
	}

	e, msg := req.toModel()
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": msg})
		return
	}

	created, err := h.expenses.Create(auth.Phone(r.Context()), e)
	if err != nil {
		h.logger.Error("create expense", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Failed to add expense"})
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(*created))
}

// List returns the caller's expenses newest first. Supports
// ?month=YYYY-MM, ?category= and ?q= filters, applied in that order.
func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.expenses.ListByPhone(auth.Phone(r.Context()))
	if err != nil {
		h.logger.Error("list expenses", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Failed to fetch expenses"})
		return
	}

	if m, ok, msg := parseMonthParam(r); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": msg})
		return
	} else if ok {
		list = expense.FilterMonth(list, m.Year(), m.Month())
	}
	if category := r.URL.Query().Get("category"); category != "" {
		list = expense.FilterCategory(list, category)
	}
	if q := r.URL.Query().Get("q"); q != "" {
		list = expense.Search(list, q)
	}

	writeJSON(w, http.StatusOK, toResponses(list))
}

type summaryGroup struct {
	Date     string            `json:"date"`
	Total    string            `json:"total"`
	Expenses []expenseResponse `json:"expenses"`
}

type summaryResponse struct {
	Total  string         `json:"total"`
	Groups []summaryGroup `json:"groups"`
}

// Summary groups the caller's expenses by date, newest date first, with
// per-day and overall totals.
func (h *ExpenseHandler) Summary(w http.ResponseWriter, r *http.Request) {
	list, err := h.expenses.ListByPhone(auth.Phone(r.Context()))
	if err != nil {
		h.logger.Error("summarize expenses", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Failed to fetch expenses"})
		return
	}

	if m, ok, msg := parseMonthParam(r); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": msg})
		return
	} else if ok {
		list = expense.FilterMonth(list, m.Year(), m.Month())
	}

	groups := expense.GroupByDate(list)
	resp := summaryResponse{
		Total:  expense.FormatAmount(expense.Total(list)),
		Groups: make([]summaryGroup, 0, len(groups)),
	}
	for _, g := range groups {
		resp.Groups = append(resp.Groups, summaryGroup{
			Date:     g.Date.Format(model.DateOnly),
			Total:    expense.FormatAmount(g.Total()),
			Expenses: toResponses(g.Expenses),
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *ExpenseHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid expense ID"})
		return
	}
	phone := auth.Phone(r.Context())

	existing, err := h.expenses.GetByID(id)
	if err != nil {
		h.logger.Error("update expense lookup", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Failed to update expense"})
		return
	}
	// Records belonging to other users look exactly like missing ones.
	if existing == nil || existing.Phone != phone {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Expense not found"})
		return
	}

	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid JSON"})
		return
	}

	e, msg := req.toModel()
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": msg})
		return
	}

	updated, err := h.expenses.Update(id, e)
	if err != nil {
		h.logger.Error("update expense", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Failed to update expense"})
		return
	}

	writeJSON(w, http.StatusOK, toResponse(*updated))
}

func (h *ExpenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid expense ID"})
		return
	}
	phone := auth.Phone(r.Context())

	existing, err := h.expenses.GetByID(id)
	if err != nil {
		h.logger.Error("delete expense lookup", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Failed to delete expense"})
		return
	}
	if existing == nil || existing.Phone != phone {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Expense not found"})
		return
	}

	if err := h.expenses.Delete(id); err != nil {
		h.logger.Error("delete expense", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Failed to delete expense"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Expense deleted"})
}

func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
