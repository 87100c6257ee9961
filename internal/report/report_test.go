package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pocketledger/internal/models"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(models.DateLayout, s)
	require.NoError(t, err)
	return d
}

func sampleExpenses(t *testing.T) []models.Expense {
	return []models.Expense{
		{ID: 1, CategoryName: "Food", Amount: decimal.RequireFromString("12.5"), Description: "lunch", Date: mustDate(t, "2024-01-01")},
		{ID: 2, CategoryName: "Transport", Amount: decimal.RequireFromString("5"), Date: mustDate(t, "2024-01-05")},
	}
}

func TestBuild(t *testing.T) {
	account := &models.Account{ID: 1, Username: "alice", Currency: models.USD}
	now := time.Date(2024, 2, 3, 14, 5, 6, 0, time.UTC)

	rep := Build(account, sampleExpenses(t), now)

	assert.Equal(t, "Expense Report for alice", rep.Title)
	assert.Equal(t, "Export Date: 2024-02-03 14:05:06", rep.Subtitle())
	assert.Equal(t, []string{"Date", "Category", "Description", "Amount"}, rep.Header)
	assert.Equal(t, [][]string{
		{"2024-01-05", "Transport", "N/A", "USD 5.00"},
		{"2024-01-01", "Food", "lunch", "USD 12.50"},
	}, rep.Rows)
}

func TestBuildEmpty(t *testing.T) {
	account := &models.Account{ID: 1, Username: "bob", Currency: models.PKR}

	rep := Build(account, nil, time.Now())

	assert.Equal(t, Header, rep.Header)
	assert.Empty(t, rep.Rows)
}

func TestBuildDoesNotReorderInput(t *testing.T) {
	account := &models.Account{ID: 1, Username: "alice", Currency: models.USD}
	expenses := sampleExpenses(t)

	Build(account, expenses, time.Now())

	assert.Equal(t, int64(1), expenses[0].ID)
	assert.Equal(t, int64(2), expenses[1].ID)
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		currency models.Currency
		amount   string
		want     string
	}{
		{models.USD, "0", "USD 0.00"},
		{models.EUR, "1234.5", "EUR 1234.50"},
		{models.GBP, "0.005", "GBP 0.01"},
		{models.PKR, "99.999", "PKR 100.00"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAmount(tt.currency, decimal.RequireFromString(tt.amount)))
		})
	}
}

func TestFilename(t *testing.T) {
	account := &models.Account{Username: "alice"}
	assert.Equal(t, "Expense Report for alice.pdf", Filename(account))
}

func uncompressedRenderer() *PDFRenderer {
	style := DefaultStyle()
	style.Compress = false
	return NewPDFRenderer(style)
}

func TestPDFRender(t *testing.T) {
	account := &models.Account{ID: 1, Username: "alice", Currency: models.USD}
	rep := Build(account, sampleExpenses(t), time.Now())

	var buf bytes.Buffer
	require.NoError(t, uncompressedRenderer().Render(&buf, rep))

	out := buf.Bytes()
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Contains(t, string(out), "Expense Report for alice")
	assert.Contains(t, string(out), "USD 12.50")
	assert.Contains(t, string(out), "Page 1")
	assert.NotContains(t, string(out), "Page 2")
}

func TestPDFRenderPaginates(t *testing.T) {
	account := &models.Account{ID: 1, Username: "alice", Currency: models.USD}
	var expenses []models.Expense
	day := mustDate(t, "2024-01-01")
	for i := 0; i < 120; i++ {
		expenses = append(expenses, models.Expense{
			ID:           int64(i + 1),
			CategoryName: "Food",
			Amount:       decimal.NewFromInt(int64(i)),
			Description:  fmt.Sprintf("item %d", i),
			Date:         day.AddDate(0, 0, i),
		})
	}

	var buf bytes.Buffer
	require.NoError(t, uncompressedRenderer().Render(&buf, Build(account, expenses, time.Now())))

	assert.Contains(t, buf.String(), "Page 2")
}

func TestPDFRenderWrapsLongCells(t *testing.T) {
	account := &models.Account{ID: 1, Username: "alice", Currency: models.USD}
	words := make([]string, 19)
	for i := range words {
		words[i] = fmt.Sprintf("entry%02d", i)
	}
	description := strings.Join(words, " ")
	require.Len(t, description, 151)
	category := "Household maintenance and repairs"

	expenses := []models.Expense{{
		ID:           1,
		CategoryName: category,
		Amount:       decimal.RequireFromString("12.50"),
		Description:  description,
		Date:         mustDate(t, "2024-03-01"),
	}}

	var buf bytes.Buffer
	require.NoError(t, uncompressedRenderer().Render(&buf, Build(account, expenses, time.Now())))

	out := buf.String()
	for _, w := range words {
		assert.Contains(t, out, w)
	}
	for _, w := range strings.Fields(category) {
		assert.Contains(t, out, w)
	}
}

func TestPDFRenderRejectsBadStyle(t *testing.T) {
	rep := Build(&models.Account{Username: "alice", Currency: models.USD}, nil, time.Now())

	style := DefaultStyle()
	style.HeaderFill = "blue"
	assert.Error(t, NewPDFRenderer(style).Render(io.Discard, rep))

	style = DefaultStyle()
	style.ColumnWidths = []float64{1, 2}
	assert.Error(t, NewPDFRenderer(style).Render(io.Discard, rep))
}

func TestParseHex(t *testing.T) {
	rgb, err := parseHex("#0077B6")
	require.NoError(t, err)
	assert.Equal(t, [3]int{0, 0x77, 0xB6}, rgb)

	_, err = parseHex("#12")
	assert.Error(t, err)
	_, err = parseHex("#zzzzzz")
	assert.Error(t, err)
}

type fakeSource struct {
	expenses []models.Expense
	err      error
	calls    int
}

func (f *fakeSource) ListExpenses(ctx context.Context, account *models.Account) ([]models.Expense, error) {
	f.calls++
	return f.expenses, f.err
}

type captureRenderer struct {
	got Report
}

func (c *captureRenderer) Render(w io.Writer, r Report) error {
	c.got = r
	_, err := io.WriteString(w, "rendered")
	return err
}

func TestExporterExport(t *testing.T) {
	account := &models.Account{ID: 1, Username: "alice", Currency: models.USD}
	src := &fakeSource{expenses: sampleExpenses(t)}
	rend := &captureRenderer{}
	exp := NewExporter(src, rend, nil)
	fixed := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	exp.now = func() time.Time { return fixed }

	out, err := exp.Export(context.Background(), account)
	require.NoError(t, err)

	assert.Equal(t, "rendered", string(out))
	assert.Equal(t, 1, src.calls)
	assert.Equal(t, fixed, rend.got.GeneratedAt)
	assert.Len(t, rend.got.Rows, 2)
}

func TestExporterSourceError(t *testing.T) {
	account := &models.Account{ID: 1, Username: "alice", Currency: models.USD}
	boom := errors.New("boom")
	exp := NewExporter(&fakeSource{err: boom}, &captureRenderer{}, nil)

	_, err := exp.Export(context.Background(), account)
	assert.ErrorIs(t, err, boom)
}

func TestExporterPDF(t *testing.T) {
	account := &models.Account{ID: 1, Username: "alice", Currency: models.USD}
	exp := NewExporter(&fakeSource{}, NewPDFRenderer(DefaultStyle()), nil)

	out, err := exp.Export(context.Background(), account)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}
