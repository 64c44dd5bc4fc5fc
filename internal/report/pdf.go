// Package report renders a transaction collection into a printable document.
package report

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/go-pdf/fpdf"

	"spendlog/internal/core"
)

const (
	titleText       = "Expense Report"
	placeholderText = "No transactions found."

	// Character limits per textual cell; longer values are cut with an
	// ellipsis marker.
	idChars       = 8
	nameChars     = 24
	categoryChars = 15
	detailsChars  = 32
)

// Column widths in mm, sized to the 190mm printable width of an A4 page.
var (
	txWidths  = []float64{20, 42, 26, 22, 58, 22}
	txHeaders = []string{"ID", "Name", "Category", "Date", "Details", "Amount"}
)

// PDF builds A4 expense reports. The zero value is ready to use.
type PDF struct{}

func NewPDF() *PDF {
	return &PDF{}
}

// Render produces the report document for the given rows and their aggregate:
// the transaction table first, then the summary block. An empty collection
// renders a placeholder instead of the table.
func (p *PDF) Render(rows []core.Row, stats core.Statistics) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(titleText, false)
	pdf.AddPage()

	// Core fonts are cp1252, so route all text through the translator.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, titleText, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(110, 110, 110)
	pdf.CellFormat(0, 5, "Generated "+time.Now().Format("2006-01-02 15:04"), "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)

	p.writeTransactions(pdf, tr, rows)
	p.writeSummary(pdf, tr, stats)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (p *PDF) writeTransactions(pdf *fpdf.Fpdf, tr func(string) string, rows []core.Row) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Transactions", "", 1, "L", false, 0, "")

	if len(rows) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.CellFormat(0, 8, placeholderText, "", 1, "L", false, 0, "")
		return
	}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(235, 235, 235)
	for i, h := range txHeaders {
		ln := 0
		if i == len(txHeaders)-1 {
			ln = 1
		}
		pdf.CellFormat(txWidths[i], 7, h, "1", ln, "L", true, 0, "")
	}

	pdf.SetFont("Helvetica", "", 9)
	for _, r := range rows {
		pdf.CellFormat(txWidths[0], 6, shortID(r[core.ColID]), "1", 0, "L", false, 0, "")
		pdf.CellFormat(txWidths[1], 6, tr(truncate(r[core.ColName], nameChars)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(txWidths[2], 6, tr(truncate(r[core.ColCategory], categoryChars)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(txWidths[3], 6, r[core.ColDate], "1", 0, "L", false, 0, "")
		pdf.CellFormat(txWidths[4], 6, tr(truncate(details(r), detailsChars)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(txWidths[5], 6, r[core.ColAmount], "1", 1, "R", false, 0, "")
	}
}

func (p *PDF) writeSummary(pdf *fpdf.Fpdf, tr func(string) string, stats core.Statistics) {
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Summary", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Total spent: "+core.FormatAmount(stats.TotalAmount), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Transactions: %d", stats.TransactionCount), "", 1, "L", false, 0, "")

	if len(stats.CategoryTotals) == 0 {
		return
	}
	pdf.Ln(2)

	// Sort for a stable layout; the aggregate map has no order.
	categories := make([]string, 0, len(stats.CategoryTotals))
	for c := range stats.CategoryTotals {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(60, 7, "Category", "1", 0, "L", true, 0, "")
	pdf.CellFormat(30, 7, "Total", "1", 0, "R", true, 0, "")
	pdf.CellFormat(30, 7, "% of total", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, c := range categories {
		total := stats.CategoryTotals[c]
		pct := core.PercentOfTotal(total, stats.TotalAmount)
		pdf.CellFormat(60, 6, tr(truncate(c, categoryChars)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, core.FormatAmount(total), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, pct.StringFixed(1)+"%", "1", 1, "R", false, 0, "")
	}
}

// details renders the variant columns a row carries; base rows yield "".
func details(r core.Row) string {
	switch {
	case r.Has(core.ColMealType) || r.Has(core.ColLocation):
		return joinPair(r[core.ColMealType], "@", r[core.ColLocation])
	case r.Has(core.ColTransportMode) || r.Has(core.ColDestination):
		return joinPair(r[core.ColTransportMode], "->", r[core.ColDestination])
	}
	return ""
}

func joinPair(left, sep, right string) string {
	switch {
	case left == "":
		return right
	case right == "":
		return left
	}
	return left + " " + sep + " " + right
}

// shortID keeps the leading segment of an opaque id.
func shortID(id string) string {
	if len(id) <= idChars {
		return id
	}
	return id[:idChars]
}

// truncate cuts s to at most max runes, ending with an ellipsis marker when
// anything was dropped.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
