// Package export renders a user's filtered transaction history as CSV or as a
// PDF report with summary figures and a category chart.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"spendwise/internal/core"
)

var csvHeader = []string{"date", "description", "category", "type", "amount"}

// WriteCSV streams the transactions as CSV, newest ordering preserved from the
// input. Commas are stripped from the free-text fields so the rows stay
// friendly to naive spreadsheet imports.
func WriteCSV(w io.Writer, txns []core.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, t := range txns {
		rec := []string{
			string(t.Date),
			stripCommas(t.Description),
			stripCommas(t.Category),
			string(t.Type),
			strconv.FormatFloat(t.Amount, 'f', 2, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func stripCommas(s string) string {
	return strings.ReplaceAll(s, ",", "")
}
