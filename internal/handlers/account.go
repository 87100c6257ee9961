package handlers

import (
	"mime"
	"net/http"
	"strconv"

	"pocketledger/internal/models"
	"pocketledger/internal/report"
)

// ProfileViewModel is the data passed to the profile template.
type ProfileViewModel struct {
	Currencies []models.Currency
}

// Profile renders the account settings page.
func (h *Handlers) Profile(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "profile.html", pageData{
		Title: "Profile",
		View:  ProfileViewModel{Currencies: models.Currencies},
	})
}

// UpdateProfile changes the account's display currency.
func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	_, err := h.svc.UpdateCurrency(r.Context(), GetAccountFromContext(r), r.FormValue("currency"))
	switch {
	case err == nil:
		h.redirectWithFlash(w, r, FlashSuccess, "Profile updated successfully!", "/profile")
	case models.IsValidation(err):
		h.redirectWithFlash(w, r, FlashDanger, capitalize(err.Error()), "/profile")
	default:
		h.serverError(w, r, err)
	}
}

// Export streams the account's expense report as a PDF download.
func (h *Handlers) Export(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r)
	pdf, err := h.exporter.Export(r.Context(), account)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": report.Filename(account)}))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(pdf)
}
