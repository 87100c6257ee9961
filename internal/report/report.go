// Package report turns an account's expenses into a downloadable document.
package report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"pocketledger/internal/log"
	"pocketledger/internal/models"
)

// Header is the fixed first row of every report table.
var Header = []string{"Date", "Category", "Description", "Amount"}

// DescriptionPlaceholder stands in for an empty description.
const DescriptionPlaceholder = "N/A"

const timestampLayout = "2006-01-02 15:04:05"

// Report is the renderer-independent content of an export.
type Report struct {
	Title       string
	GeneratedAt time.Time
	Header      []string
	Rows        [][]string
}

// Subtitle is the generation line printed under the title.
func (r Report) Subtitle() string {
	return "Export Date: " + r.GeneratedAt.Format(timestampLayout)
}

// Title names the report of an account.
func Title(account *models.Account) string {
	return "Expense Report for " + account.Username
}

// Filename is the download name of an account's report.
func Filename(account *models.Account) string {
	return Title(account) + ".pdf"
}

// FormatAmount renders an amount with its currency label and two decimals.
func FormatAmount(currency models.Currency, amount decimal.Decimal) string {
	return string(currency) + " " + amount.StringFixed(2)
}

// Build lays out the rows of an account's report, newest date first.
func Build(account *models.Account, expenses []models.Expense, now time.Time) Report {
	sorted := slices.Clone(expenses)
	slices.SortStableFunc(sorted, func(a, b models.Expense) int {
		return b.Date.Compare(a.Date)
	})

	rows := make([][]string, 0, len(sorted))
	for _, e := range sorted {
		desc := e.Description
		if desc == "" {
			desc = DescriptionPlaceholder
		}
		rows = append(rows, []string{
			e.Date.Format(models.DateLayout),
			e.CategoryName,
			desc,
			FormatAmount(account.Currency, e.Amount),
		})
	}

	return Report{
		Title:       Title(account),
		GeneratedAt: now,
		Header:      slices.Clone(Header),
		Rows:        rows,
	}
}

// ExpenseSource lists an account's expenses with their category names.
type ExpenseSource interface {
	ListExpenses(ctx context.Context, account *models.Account) ([]models.Expense, error)
}

// Renderer writes a Report as a document.
type Renderer interface {
	Render(w io.Writer, r Report) error
}

// Exporter produces report documents. It only reads from its source.
type Exporter struct {
	source   ExpenseSource
	renderer Renderer
	logger   *log.Logger
	now      func() time.Time
}

// NewExporter creates an Exporter reading from source and rendering with renderer.
func NewExporter(source ExpenseSource, renderer Renderer, logger *log.Logger) *Exporter {
	if logger == nil {
		logger = log.Discard()
	}
	return &Exporter{
		source:   source,
		renderer: renderer,
		logger:   logger.WithComponent(log.ComponentReport),
		now:      time.Now,
	}
}

// Export renders the account's current expenses.
func (e *Exporter) Export(ctx context.Context, account *models.Account) ([]byte, error) {
	expenses, err := e.source.ListExpenses(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}

	rep := Build(account, expenses, e.now())
	var buf bytes.Buffer
	if err := e.renderer.Render(&buf, rep); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}

	e.logger.InfoContext(ctx, "report exported",
		log.FieldOperation, log.OpExport,
		log.FieldAccountID, account.ID,
		"rows", len(rep.Rows),
		"bytes", buf.Len())
	return buf.Bytes(), nil
}
