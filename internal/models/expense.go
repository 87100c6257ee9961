package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency is a display-currency code. It labels amounts; no conversion is ever applied.
type Currency string

// Supported display currencies.
const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	PKR Currency = "PKR"
)

// DefaultCurrency is used when an account does not pick one.
const DefaultCurrency = PKR

// Currencies lists the supported currencies in display order.
var Currencies = []Currency{USD, EUR, GBP, PKR}

// ParseCurrency resolves a currency code. An empty code yields def.
func ParseCurrency(code string, def Currency) (Currency, error) {
	if code == "" {
		return def, nil
	}
	for _, c := range Currencies {
		if string(c) == code {
			return c, nil
		}
	}
	return "", &ValidationError{Field: "currency"}
}

// Account represents a registered user.
type Account struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Currency     Currency  `json:"currency"`
	CreatedAt    time.Time `json:"created_at"`
}

// Category is a named grouping of expenses owned by one account.
type Category struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	AccountID int64  `json:"account_id"`
}

// Expense represents a financial expense record.
type Expense struct {
	ID           int64           `json:"id"`
	AccountID    int64           `json:"account_id"`
	CategoryID   int64           `json:"category_id"`
	CategoryName string          `json:"category_name"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description"`
	Date         time.Time       `json:"date"`
}

// Session represents an authenticated identity.
type Session struct {
	Token        string    `json:"token"`
	Account      *Account  `json:"account"`
	ExpiresAt    time.Time `json:"expires_at"`
	LastActivity time.Time `json:"last_activity"`
}

// DateLayout is the calendar-date format used on input and in reports.
const DateLayout = "2006-01-02"
