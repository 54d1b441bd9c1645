// Command spendwise-report exports a user's filtered history straight from
// the configured backend, without going through the HTTP server. Useful for
// backups and monthly statements from cron.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"spendwise/internal/backend"
	"spendwise/internal/config"
	"spendwise/internal/core"
	"spendwise/internal/export"
	applog "spendwise/internal/log"
)

func main() {
	var (
		user     = flag.String("user", "", "username whose transactions to export (required)")
		from     = flag.String("from", "", "inclusive start date, YYYY-MM-DD")
		to       = flag.String("to", "", "inclusive end date, YYYY-MM-DD")
		txnType  = flag.String("type", "all", "transaction type: debit, credit, cash or all")
		category = flag.String("category", "all", "category name or all")
		format   = flag.String("format", "csv", "output format: csv or pdf")
		out      = flag.String("out", "-", "output file, - for stdout")
	)
	flag.Parse()

	if *user == "" {
		fmt.Fprintln(os.Stderr, "missing required -user flag")
		flag.Usage()
		os.Exit(2)
	}
	if *format != "csv" && *format != "pdf" {
		fmt.Fprintf(os.Stderr, "unknown format %q: must be csv or pdf\n", *format)
		os.Exit(2)
	}

	_ = godotenv.Load()
	cfg := config.Load()

	logger := applog.New(applog.Config{
		Component: applog.ComponentExport,
		Handler:   slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}),
	})

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	f := core.Filter{
		From:     core.Date(*from),
		To:       core.Date(*to),
		Type:     *txnType,
		Category: *category,
	}
	if f.From != "" {
		if err := f.From.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "invalid -from date: %v\n", err)
			os.Exit(2)
		}
	}
	if f.To != "" {
		if err := f.To.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "invalid -to date: %v\n", err)
			os.Exit(2)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	store, err := backend.Open(ctx, cfg.Backend(), logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open backend: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	txns, err := store.ListTransactions(ctx, *user, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list transactions: %v\n", err)
		os.Exit(1)
	}
	txns = f.Apply(txns)

	var w io.Writer = os.Stdout
	if *out != "-" {
		file, err := os.Create(*out)
		if err != nil {
			fmt.Fprintf(os.Stderr, "create output: %v\n", err)
			os.Exit(1)
		}
		defer file.Close()
		w = file
	}

	switch *format {
	case "csv":
		err = export.WriteCSV(w, txns)
	case "pdf":
		err = export.WritePDF(w, *user, txns, time.Now())
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "write %s: %v\n", *format, err)
		os.Exit(1)
	}
}
