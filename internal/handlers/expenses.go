package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"pocketledger/internal/ledger"
	"pocketledger/internal/models"
)

// ListViewModel is the data passed to the list view template.
type ListViewModel struct {
	Currency models.Currency
	Total    decimal.Decimal
	Expenses []models.Expense
}

// FormViewModel is the data passed to the create/edit form template.
type FormViewModel struct {
	IsEdit     bool
	Action     string
	Currency   models.Currency
	Categories []models.Category
	Input      ledger.ExpenseInput
}

// ListExpenses renders the account's expenses and their total.
func (h *Handlers) ListExpenses(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r)
	expenses, err := h.svc.ListExpenses(r.Context(), account)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "list.html", pageData{
		Title: "Expenses",
		View: ListViewModel{
			Currency: account.Currency,
			Total:    ledger.Sum(expenses),
			Expenses: expenses,
		},
	})
}

// NewExpenseForm renders the form to create a new expense.
func (h *Handlers) NewExpenseForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, nil, FormViewModel{
		Action: "/expenses",
		Input:  ledger.ExpenseInput{Date: time.Now().Format(models.DateLayout)},
	})
}

// EditExpenseForm renders the form to edit an existing expense.
func (h *Handlers) EditExpenseForm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "Expense not found", http.StatusNotFound)
		return
	}
	expense, err := h.svc.GetExpense(r.Context(), GetAccountFromContext(r), id)
	if err != nil {
		h.fail(w, r, err, "Expense")
		return
	}
	h.renderForm(w, r, http.StatusOK, nil, FormViewModel{
		IsEdit: true,
		Action: "/expenses/" + strconv.FormatInt(id, 10),
		Input: ledger.ExpenseInput{
			Amount:      expense.Amount.StringFixed(2),
			CategoryID:  strconv.FormatInt(expense.CategoryID, 10),
			Description: expense.Description,
			Date:        expense.Date.Format(models.DateLayout),
		},
	})
}

// CreateExpense handles the creation of a new expense.
func (h *Handlers) CreateExpense(w http.ResponseWriter, r *http.Request) {
	in, ok := parseExpenseForm(w, r)
	if !ok {
		return
	}
	_, err := h.svc.CreateExpense(r.Context(), GetAccountFromContext(r), in)
	if err != nil {
		if models.IsValidation(err) {
			h.renderForm(w, r, http.StatusBadRequest,
				&Flash{Kind: FlashDanger, Message: "Error adding expense: " + err.Error()},
				FormViewModel{Action: "/expenses", Input: in})
			return
		}
		h.serverError(w, r, err)
		return
	}
	h.redirectWithFlash(w, r, FlashSuccess, "Expense added successfully!", "/expenses")
}

// UpdateExpense handles the update of an existing expense.
func (h *Handlers) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "Expense not found", http.StatusNotFound)
		return
	}
	in, ok := parseExpenseForm(w, r)
	if !ok {
		return
	}
	_, err := h.svc.UpdateExpense(r.Context(), GetAccountFromContext(r), id, in)
	if err != nil {
		if models.IsValidation(err) {
			h.renderForm(w, r, http.StatusBadRequest,
				&Flash{Kind: FlashDanger, Message: "Error updating expense: " + err.Error()},
				FormViewModel{IsEdit: true, Action: "/expenses/" + strconv.FormatInt(id, 10), Input: in})
			return
		}
		h.fail(w, r, err, "Expense")
		return
	}
	h.redirectWithFlash(w, r, FlashSuccess, "Expense updated successfully!", "/expenses")
}

// DeleteExpense removes an expense.
func (h *Handlers) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "Expense not found", http.StatusNotFound)
		return
	}
	if err := h.svc.DeleteExpense(r.Context(), GetAccountFromContext(r), id); err != nil {
		h.fail(w, r, err, "Expense")
		return
	}
	h.redirectWithFlash(w, r, FlashSuccess, "Expense deleted successfully!", "/expenses")
}

func parseExpenseForm(w http.ResponseWriter, r *http.Request) (ledger.ExpenseInput, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return ledger.ExpenseInput{}, false
	}
	return ledger.ExpenseInput{
		Amount:      r.FormValue("amount"),
		CategoryID:  r.FormValue("category"),
		Description: r.FormValue("description"),
		Date:        r.FormValue("date"),
	}, true
}

func (h *Handlers) renderForm(w http.ResponseWriter, r *http.Request, status int, flash *Flash, view FormViewModel) {
	account := GetAccountFromContext(r)
	categories, err := h.svc.ListCategories(r.Context(), account)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	view.Categories = categories
	view.Currency = account.Currency

	title := "Add expense"
	if view.IsEdit {
		title = "Edit expense"
	}
	h.render(w, r, status, "expense_form.html", pageData{Title: title, Flash: flash, View: view})
}
