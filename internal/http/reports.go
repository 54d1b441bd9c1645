package http

import (
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"spendwise/internal/core"
	"spendwise/internal/export"
	"spendwise/internal/log"
)

const (
	dailyWindow      = 10
	categoryTopN     = 6
	balanceTailSize  = 20
	recentListLength = 12
)

// reportPayload is everything the dashboard needs in one round trip.
type reportPayload struct {
	Totals     core.Totals         `json:"totals"`
	Daily      []core.SeriesPoint  `json:"daily"`
	ByCategory []core.SeriesPoint  `json:"byCategory"`
	Balance    []core.BalancePoint `json:"balance"`
	Recent     []core.Transaction  `json:"recent"`
	Count      int                 `json:"count"`
	Categories []string            `json:"categories"`
}

// parseFilter builds the report filter from query parameters. Absent or "all"
// values are wildcards; dates must be YYYY-MM-DD.
func parseFilter(r *http.Request) (core.Filter, error) {
	q := r.URL.Query()
	f := core.Filter{
		From:     core.Date(q.Get("from")),
		To:       core.Date(q.Get("to")),
		Type:     q.Get("type"),
		Category: q.Get("category"),
	}
	if f.From != "" {
		if err := f.From.Validate(); err != nil {
			return core.Filter{}, fmt.Errorf("invalid 'from' date: %w", err)
		}
	}
	if f.To != "" {
		if err := f.To.Validate(); err != nil {
			return core.Filter{}, fmt.Errorf("invalid 'to' date: %w", err)
		}
	}
	return f, nil
}

// loadFiltered fetches transactions and category names concurrently and
// applies the report filter to the transactions.
func (s *Server) loadFiltered(r *http.Request, user string) ([]core.Transaction, []string, error) {
	f, err := parseFilter(r)
	if err != nil {
		return nil, nil, core.Invalid(err.Error())
	}

	var (
		txns  []core.Transaction
		names []string
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		all, err := s.cachedTransactions(ctx, user)
		if err != nil {
			return err
		}
		txns = f.Apply(all)
		return nil
	})
	g.Go(func() error {
		var err error
		names, err = s.categories.Names(ctx, user)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return txns, names, nil
}

// handleDashboard serves the unfiltered payload; the dashboard never sends
// filter params, so this is the hot path the caches exist for.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request, user string) {
	s.handleReports(w, r, user)
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request, user string) {
	txns, names, err := s.loadFiltered(r, user)
	if err != nil {
		writeError(w, err)
		return
	}

	recent := txns
	if len(recent) > recentListLength {
		recent = recent[:recentListLength]
	}
	if recent == nil {
		recent = []core.Transaction{}
	}
	if names == nil {
		names = []string{}
	}

	payload := reportPayload{
		Totals:     core.ComputeTotals(txns),
		Daily:      core.DailySeries(txns, dailyWindow),
		ByCategory: core.CategorySeries(txns, categoryTopN),
		Balance:    core.Tail(core.BalanceSeries(txns), balanceTailSize),
		Recent:     recent,
		Count:      len(txns),
		Categories: names,
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request, user string) {
	txns, _, err := s.loadFiltered(r, user)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="spendwise_transactions.csv"`)
	if err := export.WriteCSV(w, txns); err != nil {
		s.logger.ErrorContext(r.Context(), "CSV export failed", log.FieldUser, user, log.FieldError, err)
	}
}

func (s *Server) handleExportPDF(w http.ResponseWriter, r *http.Request, user string) {
	txns, _, err := s.loadFiltered(r, user)
	if err != nil {
		writeError(w, err)
		return
	}

	now := time.Now()
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.PDFFilename(now)))
	if err := export.WritePDF(w, user, txns, now); err != nil {
		s.logger.ErrorContext(r.Context(), "PDF export failed", log.FieldUser, user, log.FieldError, err)
	}
}
