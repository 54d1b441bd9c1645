package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"spendwise/internal/core"
)

func TestWriteCSV(t *testing.T) {
	txns := []core.Transaction{
		{Date: "2024-03-02", Type: core.Debit, Amount: 120.5, Category: "Food", Description: "LUNCH, WITH TEAM"},
		{Date: "2024-03-01", Type: core.Credit, Amount: 5000, Category: "Income (Credited)", Description: "SALARY"},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, txns); err != nil {
		t.Fatalf("WriteCSV() = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), buf.String())
	}
	if lines[0] != "date,description,category,type,amount" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "2024-03-02,LUNCH WITH TEAM,Food,debit,120.50" {
		t.Errorf("row = %q", lines[1])
	}
	if lines[2] != "2024-03-01,SALARY,Income (Credited),credit,5000.00" {
		t.Errorf("row = %q", lines[2])
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV() = %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "date,description,category,type,amount" {
		t.Errorf("empty export = %q, want header only", got)
	}
}

func TestPDFFilename(t *testing.T) {
	now := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)
	if got := PDFFilename(now); got != "SpendWise_Report_2024-03-02.pdf" {
		t.Errorf("PDFFilename() = %q", got)
	}
}

func TestWritePDFProducesDocument(t *testing.T) {
	txns := []core.Transaction{
		{Date: "2024-03-02", Type: core.Debit, Amount: 120.5, Category: "Food", Description: "LUNCH"},
		{Date: "2024-03-01", Type: core.Credit, Amount: 5000, Category: "Income (Credited)", Description: "SALARY"},
	}

	var buf bytes.Buffer
	if err := WritePDF(&buf, "hari", txns, time.Now()); err != nil {
		t.Fatalf("WritePDF() = %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Errorf("output does not look like a PDF")
	}
}

func TestRenderCategoryChartEmpty(t *testing.T) {
	png, err := RenderCategoryChart(nil)
	if err != nil {
		t.Fatalf("RenderCategoryChart() = %v", err)
	}
	if png != nil {
		t.Errorf("expected no chart for empty input")
	}
}
