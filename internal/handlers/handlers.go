package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"pocketledger/internal/ledger"
	"pocketledger/internal/log"
	"pocketledger/internal/middleware"
	"pocketledger/internal/models"
	"pocketledger/internal/report"
	"pocketledger/web"
)

// Context key type to avoid collisions.
type contextKey string

const (
	// AccountContextKey is the context key for the authenticated account.
	AccountContextKey contextKey = "account"
	// SessionCookieName is the name of the session cookie.
	SessionCookieName = "session"
	flashCookieName   = "flash"

	staticMaxAge = 24 * 60 * 60
)

// Flash kinds, also used as CSS modifiers.
const (
	FlashSuccess = "success"
	FlashDanger  = "danger"
	FlashInfo    = "info"
)

var pages = []string{
	"login.html",
	"register.html",
	"list.html",
	"expense_form.html",
	"categories.html",
	"profile.html",
	"stats.html",
}

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	svc          *ledger.Service
	exporter     *report.Exporter
	templates    map[string]*template.Template
	secureCookie bool
}

// NewHandlers creates a new Handlers instance, parsing every page template
// up front.
func NewHandlers(svc *ledger.Service, exporter *report.Exporter, secureCookie bool) (*Handlers, error) {
	templates, err := parseTemplates(web.TemplatesFS)
	if err != nil {
		return nil, err
	}
	return &Handlers{
		svc:          svc,
		exporter:     exporter,
		templates:    templates,
		secureCookie: secureCookie,
	}, nil
}

var templateFuncs = template.FuncMap{
	"money": func(c models.Currency, d decimal.Decimal) string { return report.FormatAmount(c, d) },
	"date":  func(t time.Time) string { return t.Format(models.DateLayout) },
}

func parseTemplates(fsys fs.FS) (map[string]*template.Template, error) {
	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		tmpl, err := template.New(page).Funcs(templateFuncs).
			ParseFS(fsys, "templates/base.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		templates[page] = tmpl
	}
	return templates, nil
}

// Routes registers every route on a new mux.
func (h *Handlers) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("GET /static/", middleware.StaticCache(staticMaxAge)(http.FileServerFS(web.StaticFS)))
	mux.HandleFunc("GET /healthz", h.Health)

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/expenses", http.StatusFound)
	})
	mux.HandleFunc("GET /login", h.LoginForm)
	mux.HandleFunc("POST /login", h.Login)
	mux.HandleFunc("GET /register", h.RegisterForm)
	mux.HandleFunc("POST /register", h.Register)
	mux.HandleFunc("POST /logout", h.Logout)

	protected := func(f http.HandlerFunc) http.Handler { return h.AuthMiddleware(f) }
	mux.Handle("GET /expenses", protected(h.ListExpenses))
	mux.Handle("GET /expenses/new", protected(h.NewExpenseForm))
	mux.Handle("POST /expenses", protected(h.CreateExpense))
	mux.Handle("GET /expenses/{id}/edit", protected(h.EditExpenseForm))
	mux.Handle("POST /expenses/{id}", protected(h.UpdateExpense))
	mux.Handle("POST /expenses/{id}/delete", protected(h.DeleteExpense))
	mux.Handle("GET /categories", protected(h.ListCategories))
	mux.Handle("POST /categories", protected(h.CreateCategory))
	mux.Handle("POST /categories/{id}/delete", protected(h.DeleteCategory))
	mux.Handle("GET /stats", protected(h.Statistics))
	mux.Handle("GET /export", protected(h.Export))
	mux.Handle("GET /profile", protected(h.Profile))
	mux.Handle("POST /profile", protected(h.UpdateProfile))

	return mux
}

// GetAccountFromContext retrieves the authenticated account from request context.
func GetAccountFromContext(r *http.Request) *models.Account {
	if account, ok := r.Context().Value(AccountContextKey).(*models.Account); ok {
		return account
	}
	return nil
}

// AuthMiddleware wraps handlers to require authentication. Sessions that
// are renewed get their cookie lifetime extended as well.
func (h *Handlers) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := h.svc.Resolve(r.Context(), sessionToken(r))
		if err != nil {
			if !errors.Is(err, models.ErrUnauthenticated) {
				log.FromContext(r.Context()).ErrorContext(r.Context(), "session lookup failed", log.FieldError, err)
			}
			h.clearSessionCookie(w)
			h.setFlash(w, FlashInfo, "Please log in to access this page.")
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		h.setSessionCookie(w, session)
		ctx := context.WithValue(r.Context(), AccountContextKey, session.Account)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionToken(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

func (h *Handlers) setSessionCookie(w http.ResponseWriter, session *models.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		MaxAge:   int(time.Until(session.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handlers) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// Flash is a one-time message shown on the next rendered page.
type Flash struct {
	Kind    string
	Message string
}

func (h *Handlers) setFlash(w http.ResponseWriter, kind, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    url.Values{"k": {kind}, "m": {message}}.Encode(),
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash reads the pending flash, if any, and clears it.
func (h *Handlers) popFlash(w http.ResponseWriter, r *http.Request) *Flash {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	values, err := url.ParseQuery(cookie.Value)
	if err != nil || values.Get("m") == "" {
		return nil
	}
	return &Flash{Kind: values.Get("k"), Message: values.Get("m")}
}

// pageData is passed to every template.
type pageData struct {
	Title   string
	Account *models.Account
	Flash   *Flash
	View    any
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, status int, page string, data pageData) {
	tmpl, ok := h.templates[page]
	if !ok {
		h.serverError(w, r, fmt.Errorf("unknown template %s", page))
		return
	}
	if data.Account == nil {
		data.Account = GetAccountFromContext(r)
	}
	if data.Flash == nil {
		data.Flash = h.popFlash(w, r)
	}

	target := "base.html"
	if r.Header.Get("HX-Request") == "true" {
		target = "content"
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, target, data); err != nil {
		h.serverError(w, r, fmt.Errorf("execute template %s: %w", page, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (h *Handlers) redirectWithFlash(w http.ResponseWriter, r *http.Request, kind, message, location string) {
	h.setFlash(w, kind, message)
	http.Redirect(w, r, location, http.StatusSeeOther)
}

func (h *Handlers) serverError(w http.ResponseWriter, r *http.Request, err error) {
	log.FromContext(r.Context()).ErrorContext(r.Context(), "request failed",
		"path", r.URL.Path, log.FieldError, err)
	middleware.InternalError(w, r)
}

// fail maps ledger errors that have no dedicated message to a response.
func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error, what string) {
	if errors.Is(err, models.ErrNotFound) {
		http.Error(w, what+" not found", http.StatusNotFound)
		return
	}
	h.serverError(w, r, err)
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

// Health reports whether the database is reachable.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	if err := h.svc.Ping(r.Context()); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "health check failed", log.FieldError, err)
		status, code = "unavailable", http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
}
