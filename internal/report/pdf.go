package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"
)

// PageNumberPlacement selects where the footer page number goes.
type PageNumberPlacement string

const (
	PageNumberRight  PageNumberPlacement = "right"
	PageNumberCenter PageNumberPlacement = "center"
)

// Style configures the PDF layout.
type Style struct {
	PageSize     string
	Font         string
	HeaderFill   string // hex, e.g. "#0077B6"
	HeaderText   string
	GridColor    string
	TitleSize    float64
	HeaderSize   float64
	BodySize     float64
	FooterSize   float64
	ColumnWidths []float64 // inches, one per column
	PageNumbers  PageNumberPlacement
	Compress     bool
}

// DefaultStyle returns the standard report look.
func DefaultStyle() Style {
	return Style{
		PageSize:     "Letter",
		Font:         "Helvetica",
		HeaderFill:   "#0077B6",
		HeaderText:   "#F5F5F5",
		GridColor:    "#808080",
		TitleSize:    18,
		HeaderSize:   12,
		BodySize:     10,
		FooterSize:   8,
		ColumnWidths: []float64{1.5, 1.5, 2.5, 1},
		PageNumbers:  PageNumberRight,
		Compress:     true,
	}
}

const (
	pointsPerInch = 72.0
	margin        = 72.0
	rowHeight     = 18.0
	cellPadding   = 4.0
	footerOffset  = 30.0
)

// PDFRenderer renders reports as paginated PDF tables.
type PDFRenderer struct {
	style Style
}

// NewPDFRenderer creates a renderer with the given style.
func NewPDFRenderer(style Style) *PDFRenderer {
	return &PDFRenderer{style: style}
}

// Render writes r to w as a PDF. Pages break automatically and repeat the
// table header; every page carries its number in the footer.
func (p *PDFRenderer) Render(w io.Writer, r Report) error {
	s := p.style
	headerFill, err := parseHex(s.HeaderFill)
	if err != nil {
		return fmt.Errorf("header fill: %w", err)
	}
	headerText, err := parseHex(s.HeaderText)
	if err != nil {
		return fmt.Errorf("header text: %w", err)
	}
	grid, err := parseHex(s.GridColor)
	if err != nil {
		return fmt.Errorf("grid color: %w", err)
	}
	if len(s.ColumnWidths) != len(r.Header) {
		return fmt.Errorf("style has %d column widths for %d columns", len(s.ColumnWidths), len(r.Header))
	}

	pdf := fpdf.New("P", "pt", s.PageSize, "")
	pdf.SetCompression(s.Compress)
	pdf.SetTitle(r.Title, true)
	pdf.SetCreator("pocketledger", true)
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, pageH := pdf.GetPageSize()
	pdf.SetFooterFunc(func() {
		pdf.SetFont(s.Font, "", s.FooterSize)
		pdf.SetTextColor(0, 0, 0)
		label := "Page " + strconv.Itoa(pdf.PageNo())
		if s.PageNumbers == PageNumberCenter {
			pdf.SetXY(0, pageH-footerOffset)
			pdf.CellFormat(pageW, s.FooterSize, label, "", 0, "C", false, 0, "")
			return
		}
		pdf.SetXY(0, pageH-footerOffset)
		pdf.CellFormat(pageW-50, s.FooterSize, label, "", 0, "R", false, 0, "")
	})

	widths := make([]float64, len(s.ColumnWidths))
	for i, in := range s.ColumnWidths {
		widths[i] = in * pointsPerInch
	}

	drawHeader := func() {
		pdf.SetFillColor(headerFill[0], headerFill[1], headerFill[2])
		pdf.SetTextColor(headerText[0], headerText[1], headerText[2])
		pdf.SetDrawColor(grid[0], grid[1], grid[2])
		pdf.SetLineWidth(0.5)
		pdf.SetFont(s.Font, "B", s.HeaderSize)
		for i, h := range r.Header {
			pdf.CellFormat(widths[i], rowHeight, tr(h), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont(s.Font, "", s.BodySize)
	}

	pdf.AddPage()
	pdf.SetFont(s.Font, "B", s.TitleSize)
	pdf.CellFormat(0, s.TitleSize+6, tr(r.Title), "", 1, "L", false, 0, "")
	pdf.SetFont(s.Font, "", s.BodySize)
	pdf.CellFormat(0, s.BodySize+4, r.Subtitle(), "", 1, "L", false, 0, "")
	pdf.Ln(20)

	drawHeader()
	lineHeight := s.BodySize + 4
	for _, row := range r.Rows {
		cells := make([][][]byte, len(row))
		height := rowHeight
		for i, cell := range row {
			cells[i] = pdf.SplitLines([]byte(tr(cell)), widths[i])
			if h := float64(len(cells[i]))*lineHeight + cellPadding; h > height {
				height = h
			}
		}
		if pdf.GetY()+height > pageH-margin {
			pdf.AddPage()
			drawHeader()
		}
		drawRow(pdf, widths, cells, height, lineHeight)
	}

	return pdf.Output(w)
}

// drawRow draws one table row of the given height. Each cell holds its
// wrapped lines centered in a bordered box.
func drawRow(pdf *fpdf.Fpdf, widths []float64, cells [][][]byte, height, lineHeight float64) {
	left, y := pdf.GetXY()
	x := left
	for i, lines := range cells {
		pdf.Rect(x, y, widths[i], height, "D")
		text := make([]string, len(lines))
		for j, l := range lines {
			text[j] = string(l)
		}
		pdf.SetXY(x, y+(height-float64(len(lines))*lineHeight)/2)
		pdf.MultiCell(widths[i], lineHeight, strings.Join(text, "\n"), "", "C", false)
		x += widths[i]
	}
	pdf.SetXY(left, y+height)
}

func parseHex(s string) ([3]int, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return [3]int{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return [3]int{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return [3]int{int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)}, nil
}
