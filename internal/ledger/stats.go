package ledger

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"pocketledger/internal/models"
)

// CategoryTotal is one category's spending within a month.
type CategoryTotal struct {
	CategoryID int64
	Name       string
	Total      decimal.Decimal
	Count      int
	// Percentage of the month's total, rounded to one decimal place.
	Percentage decimal.Decimal
}

// MonthSummary breaks down an account's spending for one calendar month.
type MonthSummary struct {
	Year       int
	Month      time.Month
	Total      decimal.Decimal
	Categories []CategoryTotal
	Expenses   []models.Expense
}

// Prev returns the first day of the previous month.
func (m *MonthSummary) Prev() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
}

// Next returns the first day of the following month.
func (m *MonthSummary) Next() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
}

var hundred = decimal.NewFromInt(100)

// MonthSummary totals the account's expenses dated in the given month, per
// category, largest first.
func (s *Service) MonthSummary(ctx context.Context, account *models.Account, year int, month time.Month) (*MonthSummary, error) {
	all, err := s.db.ListExpenses(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	summary := &MonthSummary{Year: year, Month: month, Total: decimal.Zero}
	byCategory := make(map[int64]*CategoryTotal)
	for _, e := range all {
		if e.Date.Year() != year || e.Date.Month() != month {
			continue
		}
		summary.Expenses = append(summary.Expenses, e)
		summary.Total = summary.Total.Add(e.Amount)

		ct, ok := byCategory[e.CategoryID]
		if !ok {
			ct = &CategoryTotal{CategoryID: e.CategoryID, Name: e.CategoryName, Total: decimal.Zero}
			byCategory[e.CategoryID] = ct
		}
		ct.Total = ct.Total.Add(e.Amount)
		ct.Count++
	}

	for _, ct := range byCategory {
		ct.Percentage = decimal.Zero
		if summary.Total.IsPositive() {
			ct.Percentage = ct.Total.Div(summary.Total).Mul(hundred).Round(1)
		}
		summary.Categories = append(summary.Categories, *ct)
	}
	slices.SortFunc(summary.Categories, func(a, b CategoryTotal) int {
		if c := b.Total.Cmp(a.Total); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return summary, nil
}
