package export

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"spendwise/internal/core"
)

// PDFFilename returns the download name for a report generated today.
func PDFFilename(now time.Time) string {
	return fmt.Sprintf("SpendWise_Report_%s.pdf", now.Format("2006-01-02"))
}

// WritePDF renders the report: a header, the summary totals, the category
// chart when one could be drawn, and the transaction table.
func WritePDF(w io.Writer, user string, txns []core.Transaction, now time.Time) error {
	totals := core.ComputeTotals(txns)
	chartPNG, err := RenderCategoryChart(txns)
	if err != nil {
		return err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetTextColor(16, 185, 129)
	pdf.CellFormat(0, 10, "SpendWise Report", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(90, 90, 90)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated for %s on %s", user, now.Format("2006-01-02")), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	writeSummary(pdf, totals)

	if len(chartPNG) > 0 {
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("category-chart", opts, bytes.NewReader(chartPNG))
		pdf.ImageOptions("category-chart", 15, pdf.GetY(), 180, 0, true, opts, 0, "")
		pdf.Ln(4)
	}

	writeTable(pdf, txns)

	return pdf.Output(w)
}

func writeSummary(pdf *gofpdf.Fpdf, totals core.Totals) {
	rows := []struct {
		label string
		value float64
	}{
		{"Total Debit", totals.Debit},
		{"Total Credit", totals.Credit},
		{"Cash in Hand", totals.Cash},
		{"Balance", totals.Balance},
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetTextColor(40, 40, 40)
	for _, r := range rows {
		pdf.CellFormat(60, 7, r.label, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 7, fmt.Sprintf("Rs. %.2f", r.value), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 11)
	}
	pdf.Ln(4)
}

func writeTable(pdf *gofpdf.Fpdf, txns []core.Transaction) {
	widths := []float64{26, 74, 40, 22, 28}
	headers := []string{"Date", "Description", "Category", "Type", "Amount"}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(16, 185, 129)
	pdf.SetTextColor(255, 255, 255)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(40, 40, 40)
	for i, t := range txns {
		fill := i%2 == 1
		if fill {
			pdf.SetFillColor(245, 245, 245)
		}
		pdf.CellFormat(widths[0], 7, string(t.Date), "", 0, "L", fill, 0, "")
		pdf.CellFormat(widths[1], 7, truncate(t.Description, 44), "", 0, "L", fill, 0, "")
		pdf.CellFormat(widths[2], 7, truncate(t.Category, 22), "", 0, "L", fill, 0, "")
		pdf.CellFormat(widths[3], 7, string(t.Type), "", 0, "L", fill, 0, "")
		pdf.CellFormat(widths[4], 7, fmt.Sprintf("Rs. %.2f", t.Amount), "", 0, "R", fill, 0, "")
		pdf.Ln(-1)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
