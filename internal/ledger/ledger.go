// Package ledger holds the account-scoped operations of the expense tracker:
// registration and sessions, categories, and expenses. Every operation takes
// the acting account explicitly and never touches another account's records.
package ledger

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"pocketledger/internal/log"
	"pocketledger/internal/models"
	"pocketledger/internal/storage"
)

// DefaultCategories are created for every new account, in this order.
var DefaultCategories = []string{"Food", "Transport", "Entertainment", "Bills", "Other"}

const (
	maxCategoryName = 50
	maxDescription  = 200

	// Amounts keep at most this many integer and fractional digits.
	maxAmountIntDigits = 15
	maxAmountScale     = 8
)

// Service implements the ledger operations on top of storage.
type Service struct {
	db              *storage.DB
	logger          *log.Logger
	sessionDuration time.Duration
	defaultCurrency models.Currency
	now             func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithSessionDuration sets how long new sessions stay valid.
func WithSessionDuration(d time.Duration) Option {
	return func(s *Service) { s.sessionDuration = d }
}

// WithDefaultCurrency sets the currency used when registration omits one.
func WithDefaultCurrency(c models.Currency) Option {
	return func(s *Service) { s.defaultCurrency = c }
}

// WithLogger sets the service logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) { s.logger = l.WithComponent(log.ComponentLedger) }
}

// NewService creates a ledger service backed by db.
func NewService(db *storage.DB, opts ...Option) *Service {
	s := &Service{
		db:              db,
		logger:          log.Discard(),
		sessionDuration: 30 * 24 * time.Hour,
		defaultCurrency: models.DefaultCurrency,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SessionDuration returns the lifetime of new sessions.
func (s *Service) SessionDuration() time.Duration {
	return s.sessionDuration
}

// DefaultCurrency returns the currency given to accounts registered without one.
func (s *Service) DefaultCurrency() models.Currency {
	return s.defaultCurrency
}

// Ping checks that storage is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// ExpenseInput carries the raw form fields of an expense.
type ExpenseInput struct {
	Amount      string
	CategoryID  string
	Description string
	Date        string
}

func (in ExpenseInput) parse(accountID int64) (*models.Expense, error) {
	amount, err := ParseAmount(in.Amount)
	if err != nil {
		return nil, err
	}
	categoryID, err := strconv.ParseInt(strings.TrimSpace(in.CategoryID), 10, 64)
	if err != nil {
		return nil, &models.ValidationError{Field: "category"}
	}
	date, err := ParseDate(in.Date)
	if err != nil {
		return nil, err
	}
	desc := strings.TrimSpace(in.Description)
	if len(desc) > maxDescription {
		return nil, &models.ValidationError{Field: "description", Reason: "description too long"}
	}
	return &models.Expense{
		AccountID:   accountID,
		CategoryID:  categoryID,
		Amount:      amount,
		Description: desc,
		Date:        date,
	}, nil
}

// ParseAmount parses a non-negative decimal amount with at most 15 integer
// digits and 8 decimal places.
func ParseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || amount.IsNegative() {
		return decimal.Decimal{}, &models.ValidationError{Field: "amount"}
	}
	// Check the exponent before anything expands the coefficient.
	exp := amount.Exponent()
	if exp < -maxAmountScale || int64(amount.NumDigits())+int64(exp) > maxAmountIntDigits {
		return decimal.Decimal{}, &models.ValidationError{Field: "amount"}
	}
	return amount, nil
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(models.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, &models.ValidationError{Field: "date"}
	}
	return d, nil
}
