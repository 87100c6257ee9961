package handlers

import (
	"net/http"
	"strconv"
	"time"

	"pocketledger/internal/ledger"
	"pocketledger/internal/models"
)

// StatsViewModel is the data passed to the statistics view template.
type StatsViewModel struct {
	*ledger.MonthSummary
	Currency       models.Currency
	MonthName      string
	PrevYear       int
	PrevMonth      int
	NextYear       int
	NextMonth      int
	IsCurrentMonth bool
}

// Statistics renders the per-category breakdown of one month.
func (h *Handlers) Statistics(w http.ResponseWriter, r *http.Request) {
	// Get year and month from query params, default to current month
	now := time.Now()
	year := now.Year()
	month := now.Month()

	if y, err := strconv.Atoi(r.URL.Query().Get("year")); err == nil && y > 0 && y < 10000 {
		year = y
	}
	if m, err := strconv.Atoi(r.URL.Query().Get("month")); err == nil && m >= 1 && m <= 12 {
		month = time.Month(m)
	}

	account := GetAccountFromContext(r)
	summary, err := h.svc.MonthSummary(r.Context(), account, year, month)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	prev, next := summary.Prev(), summary.Next()
	h.render(w, r, http.StatusOK, "stats.html", pageData{
		Title: "Statistics",
		View: StatsViewModel{
			MonthSummary:   summary,
			Currency:       account.Currency,
			MonthName:      month.String(),
			PrevYear:       prev.Year(),
			PrevMonth:      int(prev.Month()),
			NextYear:       next.Year(),
			NextMonth:      int(next.Month()),
			IsCurrentMonth: year == now.Year() && month == now.Month(),
		},
	})
}
