// Package core holds the domain model and the pure aggregation functions the
// dashboard and reports are built from. Everything here is deterministic and
// free of I/O; callers load transactions once and recompute on change.
package core

import "sort"

// Totals is the per-type sum over a transaction list. Balance is credit minus
// debit; cash is deliberately excluded from the balance and reported on its
// own (cash is treated as off-books).
type Totals struct {
	Debit   float64 `json:"debit"`
	Credit  float64 `json:"credit"`
	Cash    float64 `json:"cash"`
	Balance float64 `json:"balance"`
}

// SeriesPoint is one labelled value of a chart series: a date for the daily
// series, a category name for the category series.
type SeriesPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// BalancePoint is one step of the running balance, in chronological order.
type BalancePoint struct {
	Date    Date    `json:"date"`
	Balance float64 `json:"balance"`
}

// ComputeTotals sums amounts per type bucket. Unknown types are ignored so the
// function never fails on malformed input.
func ComputeTotals(txns []Transaction) Totals {
	var t Totals
	for _, txn := range txns {
		switch txn.Type {
		case Debit:
			t.Debit += txn.Amount
		case Credit:
			t.Credit += txn.Amount
		case Cash:
			t.Cash += txn.Amount
		}
	}
	t.Balance = t.Credit - t.Debit
	return t
}

// GroupByCategory sums amounts per category name. A missing category counts
// toward the fallback.
func GroupByCategory(txns []Transaction) map[string]float64 {
	m := make(map[string]float64, len(txns))
	for _, t := range txns {
		cat := t.Category
		if cat == "" {
			cat = FallbackCategory
		}
		m[cat] += t.Amount
	}
	return m
}

// GroupByDate sums amounts per exact date string.
func GroupByDate(txns []Transaction) map[string]float64 {
	m := make(map[string]float64, len(txns))
	for _, t := range txns {
		m[string(t.Date)] += t.Amount
	}
	return m
}

// DailySeries groups debit transactions by date, ascending, keeping only the
// most recent window entries so chart width stays bounded.
func DailySeries(txns []Transaction, window int) []SeriesPoint {
	sums := make(map[string]float64)
	for _, t := range txns {
		if t.Type != Debit {
			continue
		}
		sums[string(t.Date)] += t.Amount
	}
	dates := make([]string, 0, len(sums))
	for d := range sums {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	if window > 0 && len(dates) > window {
		dates = dates[len(dates)-window:]
	}
	out := make([]SeriesPoint, len(dates))
	for i, d := range dates {
		out[i] = SeriesPoint{Label: d, Value: sums[d]}
	}
	return out
}

// CategorySeries groups debit transactions by category and keeps the topN by
// sum, descending. Ties keep the order categories were first seen in the
// input (stable sort over first-seen order).
func CategorySeries(txns []Transaction, topN int) []SeriesPoint {
	sums := make(map[string]float64)
	var order []string
	for _, t := range txns {
		if t.Type != Debit {
			continue
		}
		cat := t.Category
		if cat == "" {
			cat = FallbackCategory
		}
		if _, seen := sums[cat]; !seen {
			order = append(order, cat)
		}
		sums[cat] += t.Amount
	}
	out := make([]SeriesPoint, len(order))
	for i, cat := range order {
		out[i] = SeriesPoint{Label: cat, Value: sums[cat]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}

// BalanceSeries sorts transactions by date (stable, so same-day transactions
// keep their relative order) and emits one cumulative balance point per
// transaction. Credits add, debits subtract, cash carries the balance forward
// unchanged, consistent with ComputeTotals.
func BalanceSeries(txns []Transaction) []BalancePoint {
	sorted := make([]Transaction, len(txns))
	copy(sorted, txns)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })

	out := make([]BalancePoint, 0, len(sorted))
	var bal float64
	for _, t := range sorted {
		switch t.Type {
		case Credit:
			bal += t.Amount
		case Debit:
			bal -= t.Amount
		}
		out = append(out, BalancePoint{Date: t.Date, Balance: bal})
	}
	return out
}

// Tail returns the last n points of a balance series, the display window used
// by the dashboard.
func Tail(points []BalancePoint, n int) []BalancePoint {
	if n > 0 && len(points) > n {
		return points[len(points)-n:]
	}
	return points
}
