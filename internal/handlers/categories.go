package handlers

import (
	"errors"
	"net/http"

	"pocketledger/internal/models"
)

// CategoriesViewModel is the data passed to the categories template.
type CategoriesViewModel struct {
	Categories []models.Category
}

// ListCategories renders the account's categories with the add form.
func (h *Handlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.ListCategories(r.Context(), GetAccountFromContext(r))
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "categories.html", pageData{
		Title: "Categories",
		View:  CategoriesViewModel{Categories: categories},
	})
}

// CreateCategory adds a category to the account.
func (h *Handlers) CreateCategory(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	_, err := h.svc.CreateCategory(r.Context(), GetAccountFromContext(r), r.FormValue("name"))
	switch {
	case err == nil:
		h.redirectWithFlash(w, r, FlashSuccess, "Category added successfully!", "/categories")
	case errors.Is(err, models.ErrDuplicateCategory):
		h.redirectWithFlash(w, r, FlashDanger, "Category already exists!", "/categories")
	case models.IsValidation(err):
		h.redirectWithFlash(w, r, FlashDanger, capitalize(err.Error()), "/categories")
	default:
		h.serverError(w, r, err)
	}
}

// DeleteCategory removes a category that has no expenses.
func (h *Handlers) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "Category not found", http.StatusNotFound)
		return
	}
	err := h.svc.DeleteCategory(r.Context(), GetAccountFromContext(r), id)
	switch {
	case err == nil:
		h.redirectWithFlash(w, r, FlashSuccess, "Category deleted successfully!", "/categories")
	case errors.Is(err, models.ErrCategoryInUse):
		h.redirectWithFlash(w, r, FlashDanger, "Cannot delete category with associated expenses!", "/categories")
	default:
		h.fail(w, r, err, "Category")
	}
}
