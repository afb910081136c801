// Command cdrlens runs the full CDR pipeline: ingest a raw call-detail file,
// resolve its schema onto the canonical field set, normalize rows, then
// report, export and/or store the result.
//
// Input formats are detected from the file extension and a sample of the
// content (CSV, Excel, HTML table), overridable with -format. With -demo the
// input is a deterministic synthetic dataset instead of a file.
//
// Typical invocations:
//
//	cdrlens -input calls.csv -report
//	cdrlens -input export.xlsx -from 2024-01-01 -to 2024-01-31 -out jan.csv
//	cdrlens -demo -demo-rows 5000 -store sqlite -dsn cdr.db
//
// Metrics backend selection follows flag → env → default:
//
//	-metrics-backend datadog   (or METRICS_BACKEND=datadog)
//	-metrics-backend none      metrics disabled (default)
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"cdrlens/internal/analytics"
	"cdrlens/internal/export"
	"cdrlens/internal/ingest"
	"cdrlens/internal/ingest/csvfile"
	"cdrlens/internal/ingest/excel"
	"cdrlens/internal/ingest/htmltable"
	"cdrlens/internal/ingest/synthetic"
	"cdrlens/internal/metrics"
	"cdrlens/internal/metrics/datadog"
	"cdrlens/internal/normalizer"
	"cdrlens/internal/resolver"
	"cdrlens/internal/schema"
	"cdrlens/internal/storage"
	"cdrlens/pkg/records"

	// register all backends with the storage factory.
	// The -store flag specifies which to use but we build in support for all of them.
	_ "cdrlens/internal/storage/all"
)

func main() {
	var (
		flagInput    = flag.String("input", "", "path of the source file (CSV, Excel, or HTML)")
		flagFormat   = flag.String("format", "auto", "input format: auto, csv, xlsx, html")
		flagDemo     = flag.Bool("demo", false, "use a generated demo dataset instead of -input")
		flagDemoRows = flag.Int("demo-rows", 2000, "number of demo rows to generate")
		flagDemoSeed = flag.Int64("demo-seed", 42, "demo dataset RNG seed")

		flagFrom        = flag.String("from", "", "keep records on or after this date (YYYY-MM-DD)")
		flagTo          = flag.String("to", "", "keep records on or before this date (YYYY-MM-DD)")
		flagDirection   = flag.String("direction", "", "comma-separated directions to keep (inbound,outbound)")
		flagStatus      = flag.String("status", "", "comma-separated status values to keep")
		flagOperator    = flag.String("operator", "", "comma-separated operators to keep")
		flagCountry     = flag.String("country", "", "comma-separated countries to keep")
		flagMinDuration = flag.Float64("min-duration", 0, "minimum duration in seconds")
		flagMaxDuration = flag.Float64("max-duration", 0, "maximum duration in seconds (0 = no cap)")

		flagReport = flag.Bool("report", false, "print a KPI report to stdout")
		flagTopN   = flag.Int("top", 10, "number of entries in top-caller/callee report sections")
		flagOut    = flag.String("out", "", "write normalized records as CSV to this path (\"-\" for stdout)")

		flagStore = flag.String("store", "", "storage backend kind (sqlite, postgres, mssql)")
		flagDSN   = flag.String("dsn", "", "storage DSN")
		flagTable = flag.String("table", "", "destination table (default cdr_records)")

		flagMetricsBackend = flag.String("metrics-backend", "", "metrics backend to use (datadog, none)")
		flagInferRate      = flag.Float64("infer-min-rate", 0, "override start_time inference parse-rate threshold (0 = default)")

		verbose = flag.Bool("v", false, "enable verbose logs")
	)
	flag.Parse()

	closeMetrics := setupMetrics(*flagMetricsBackend, *verbose)
	defer closeMetrics()

	tbl, err := loadTable(*flagInput, *flagFormat, *flagDemo, *flagDemoRows, *flagDemoSeed, *verbose)
	if err != nil {
		fatalf("load input: %v", err)
	}
	if *verbose {
		log.Printf("input: columns=%d rows=%d", len(tbl.Columns), len(tbl.Rows))
	}

	mapping := resolver.Resolve(tbl, schema.DefaultCatalog(), resolver.Options{
		InferMinParseRate: *flagInferRate,
	})
	if *verbose {
		log.Printf("mapping: resolved=%d derive_duration=%v inferred=%q",
			len(mapping.Columns), mapping.DeriveDuration, mapping.Inferred)
	}

	start := time.Now()
	recs, stats := normalizer.Normalize(tbl, mapping)
	metrics.ObserveHistogram(metrics.NormalizeSeconds, time.Since(start).Seconds(), nil)
	metrics.IncCounter(metrics.RowsTotal, float64(stats.RowsIn), metrics.Labels{"kind": "in"})
	metrics.IncCounter(metrics.RowsTotal, float64(stats.RowsOut), metrics.Labels{"kind": "out"})
	metrics.IncCounter(metrics.RowsTotal, float64(stats.RowsDropped), metrics.Labels{"kind": "dropped"})
	for field, n := range stats.UnparseableCells {
		metrics.IncCounter(metrics.CellsUnparseable, float64(n), metrics.Labels{"field": field})
	}
	if *verbose || stats.RowsDropped > 0 {
		log.Printf("normalize: in=%d out=%d dropped=%d", stats.RowsIn, stats.RowsOut, stats.RowsDropped)
	}

	opt, err := filterOptions(*flagFrom, *flagTo, *flagDirection, *flagStatus, *flagOperator, *flagCountry, *flagMinDuration, *flagMaxDuration)
	if err != nil {
		fatalf("%v", err)
	}
	recs = analytics.Filter(recs, opt)

	if *flagReport {
		printReport(os.Stdout, recs, *flagTopN)
	}

	if *flagOut != "" {
		if err := writeCSV(*flagOut, recs); err != nil {
			fatalf("export: %v", err)
		}
	}

	if *flagStore != "" {
		ctx := context.Background()
		repo, err := storage.New(ctx, storage.Config{Kind: *flagStore, DSN: *flagDSN, Table: *flagTable})
		if err != nil {
			fatalf("storage: %v", err)
		}
		defer repo.Close()

		if err := repo.EnsureTable(ctx); err != nil {
			fatalf("storage: %v", err)
		}
		n, err := repo.InsertRecords(ctx, recs)
		if err != nil {
			fatalf("storage: insert: %v", err)
		}
		log.Printf("stored %d records (backend=%s)", n, *flagStore)
	}
}

// setupMetrics selects the metrics backend (flag → env → default none) and
// returns the shutdown func.
func setupMetrics(backendFlag string, verbose bool) func() {
	backendName := backendFlag
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}

	switch backendName {
	case "datadog":
		extraTags := datadog.ParseTagsCSV(os.Getenv("METRICS_TAGS"))

		b, err := datadog.NewBackend(context.Background(), datadog.Options{
			JobName: "cdrlens",
			Tags:    extraTags,
		})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
			break
		}
		if verbose {
			log.Printf("metrics: backend=%v tags=%v", backendName, extraTags)
		}
		metrics.SetBackend(b)
		return func() {
			// Close() stops the periodic flush loop and then performs a
			// final Flush(); the clean shutdown path for this backend.
			if err := b.Close(); err != nil {
				log.Printf("metrics: datadog close/flush error: %v", err)
			}
		}

	case "", "none":
		// metrics disabled; nop backend remains
		if verbose {
			log.Printf("metrics: disabled (backend=%q)", backendName)
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}

	return func() {}
}

// loadTable reads the raw table from the demo generator or the input file.
func loadTable(input, format string, demo bool, demoRows int, demoSeed int64, verbose bool) (records.Table, error) {
	if demo {
		if verbose {
			log.Printf("demo: rows=%d seed=%d", demoRows, demoSeed)
		}
		return synthetic.Generate(demoRows, demoSeed, time.Now().UTC()), nil
	}
	if input == "" {
		return records.Table{}, fmt.Errorf("either -input or -demo is required")
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return records.Table{}, err
	}

	f := ingest.FormatUnknown
	switch format {
	case "auto", "":
		f = ingest.Sniff(data, input)
	case "csv":
		f = ingest.FormatCSV
	case "xlsx", "excel":
		f = ingest.FormatExcel
	case "html":
		f = ingest.FormatHTML
	default:
		return records.Table{}, fmt.Errorf("unknown -format %q", format)
	}

	switch f {
	case ingest.FormatCSV:
		return csvfile.Read(bytes.NewReader(data), csvfile.Options{
			OnSkip: func(line int, reason string) {
				if verbose {
					log.Printf("csv: skip line %d: %s", line, reason)
				}
			},
		})
	case ingest.FormatExcel:
		return excel.ReadFrom(bytes.NewReader(data))
	case ingest.FormatHTML:
		return htmltable.Read(bytes.NewReader(data))
	default:
		return records.Table{}, fmt.Errorf("could not detect input format for %s", input)
	}
}

func filterOptions(from, to, direction, status, operator, country string, minDur, maxDur float64) (analytics.FilterOptions, error) {
	opt := analytics.FilterOptions{
		Directions:     splitCSV(direction),
		Statuses:       splitCSV(status),
		Operators:      splitCSV(operator),
		Countries:      splitCSV(country),
		MinDurationSec: minDur,
		MaxDurationSec: maxDur,
	}

	var err error
	if opt.From, err = parseDateFlag("from", from); err != nil {
		return opt, err
	}
	if opt.To, err = parseDateFlag("to", to); err != nil {
		return opt, err
	}
	return opt, nil
}

func parseDateFlag(name, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("-%s: expected YYYY-MM-DD, got %q", name, s)
	}
	return t, nil
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func writeCSV(path string, recs []normalizer.Record) error {
	if path == "-" {
		return export.WriteCSV(os.Stdout, recs)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.WriteCSV(f, recs); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// printReport writes the text KPI report: headline summary, per-direction
// and status splits, daily traffic, operator quality, and top endpoints.
func printReport(w io.Writer, recs []normalizer.Record, topN int) {
	s := analytics.Summarize(recs)

	fmt.Fprintf(w, "Calls:          %d\n", s.TotalCalls)
	fmt.Fprintf(w, "Answered:       %d (ASR %.1f%%)\n", s.AnsweredCalls, s.ASR*100)
	fmt.Fprintf(w, "Total minutes:  %.1f\n", s.TotalMinutes)
	fmt.Fprintf(w, "ACD:            %.2f min\n", s.ACDMinutes)
	if s.HasPDD {
		fmt.Fprintf(w, "Avg PDD:        %.0f ms\n", s.AvgPDDMillis)
	}
	fmt.Fprintf(w, "Unique callers: %d  callees: %d\n", s.UniqueCallers, s.UniqueCallees)
	if s.HasRevenue {
		fmt.Fprintf(w, "Revenue:        %.2f\n", s.Revenue)
	}

	if split := analytics.DirectionSplit(recs); len(split) > 0 {
		fmt.Fprintln(w, "\nDirection:")
		for _, e := range split {
			fmt.Fprintf(w, "  %-10s %d\n", e.Value, e.Calls)
		}
	}
	if statuses := analytics.StatusCounts(recs, topN); len(statuses) > 0 {
		fmt.Fprintln(w, "\nStatus:")
		for _, e := range statuses {
			fmt.Fprintf(w, "  %-14s %d\n", e.Value, e.Calls)
		}
	}
	if daily := analytics.DailyTraffic(recs); len(daily) > 0 {
		fmt.Fprintln(w, "\nDaily traffic:")
		for _, d := range daily {
			fmt.Fprintf(w, "  %s  calls=%-6d minutes=%.1f\n", d.Date.Format("2006-01-02"), d.Calls, d.Minutes)
		}
	}
	if len(recs) > 0 {
		hm := analytics.HourlyHeatmap(recs)
		fmt.Fprintln(w, "\nCalls by weekday and hour:")
		fmt.Fprint(w, "            ")
		for h := 0; h < 24; h += 3 {
			fmt.Fprintf(w, "%-6s", fmt.Sprintf("%02dh", h))
		}
		fmt.Fprintln(w)
		for i, name := range analytics.WeekdayNames {
			fmt.Fprintf(w, "  %-10s", name)
			for h := 0; h < 24; h += 3 {
				n := 0
				for j := h; j < h+3; j++ {
					n += hm[i][j]
				}
				fmt.Fprintf(w, "%-6d", n)
			}
			fmt.Fprintln(w)
		}
	}
	if ops := analytics.OperatorQuality(recs); len(ops) > 0 {
		fmt.Fprintln(w, "\nOperators:")
		for _, o := range ops {
			fmt.Fprintf(w, "  %-16s calls=%-6d ASR=%5.1f%% ACD=%.2fmin minutes=%.1f\n",
				o.Operator, o.Calls, o.ASR*100, o.ACDMinutes, o.Minutes)
		}
	}
	if top := analytics.TopCallers(recs, topN); len(top) > 0 {
		fmt.Fprintln(w, "\nTop callers:")
		for _, e := range top {
			fmt.Fprintf(w, "  %-16s %d\n", e.Value, e.Calls)
		}
	}
	if top := analytics.TopCallees(recs, topN); len(top) > 0 {
		fmt.Fprintln(w, "\nTop callees:")
		for _, e := range top {
			fmt.Fprintf(w, "  %-16s %d\n", e.Value, e.Calls)
		}
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
