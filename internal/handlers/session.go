package handlers

import (
	"errors"
	"net/http"

	"pocketledger/internal/models"
)

// RegisterViewModel holds data for the registration page.
type RegisterViewModel struct {
	Username   string
	Currencies []models.Currency
	Selected   models.Currency
}

// LoginForm renders the login page. Opening it ends any current session.
func (h *Handlers) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.endSession(w, r)
	h.render(w, r, http.StatusOK, "login.html", pageData{Title: "Log in"})
}

// Login handles the login form submission.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	session, err := h.svc.Authenticate(r.Context(), sessionToken(r), r.FormValue("username"), r.FormValue("password"))
	if err != nil {
		// The previous session is gone either way.
		h.clearSessionCookie(w)
		if errors.Is(err, models.ErrInvalidCredentials) {
			h.render(w, r, http.StatusUnauthorized, "login.html", pageData{
				Title: "Log in",
				Flash: &Flash{Kind: FlashDanger, Message: "Invalid username or password"},
			})
			return
		}
		h.serverError(w, r, err)
		return
	}

	h.setSessionCookie(w, session)
	http.Redirect(w, r, "/expenses", http.StatusSeeOther)
}

// Logout ends the current session.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.svc.EndSession(r.Context(), sessionToken(r))
	h.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// RegisterForm renders the registration page. Like the login page, it
// ends any current session.
func (h *Handlers) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.endSession(w, r)
	h.render(w, r, http.StatusOK, "register.html", pageData{
		Title: "Register",
		View:  RegisterViewModel{Currencies: models.Currencies, Selected: h.svc.DefaultCurrency()},
	})
}

// Register handles the registration form submission.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	h.endSession(w, r)

	username := r.FormValue("username")
	currency := r.FormValue("currency")
	_, err := h.svc.Register(r.Context(), username, r.FormValue("password"), currency)
	switch {
	case err == nil:
		h.redirectWithFlash(w, r, FlashSuccess, "Registration successful! Please log in to continue.", "/login")
	case errors.Is(err, models.ErrDuplicateUsername):
		h.redirectWithFlash(w, r, FlashDanger, "Username already exists!", "/register")
	case models.IsValidation(err):
		selected := models.Currency(currency)
		if selected == "" {
			selected = h.svc.DefaultCurrency()
		}
		h.render(w, r, http.StatusBadRequest, "register.html", pageData{
			Title: "Register",
			Flash: &Flash{Kind: FlashDanger, Message: capitalize(err.Error())},
			View:  RegisterViewModel{Username: username, Currencies: models.Currencies, Selected: selected},
		})
	default:
		h.serverError(w, r, err)
	}
}

func (h *Handlers) endSession(w http.ResponseWriter, r *http.Request) {
	if token := sessionToken(r); token != "" {
		h.svc.EndSession(r.Context(), token)
		h.clearSessionCookie(w)
	}
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
