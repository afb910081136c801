// Command cdrprobe reports how a raw CDR file would resolve against the
// canonical schema, without normalizing or storing anything.
//
// It prints:
//
//   - the resolved mapping (canonical field ← source column, including
//     whether start_time came from an alias or content inference)
//   - unresolved canonical fields
//   - per-column value statistics: non-missing rate plus timestamp and
//     numeric parse rates over a bounded sample
//
// This is the quick "will my file work?" check before a full cdrlens run.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"cdrlens/internal/ingest"
	"cdrlens/internal/ingest/csvfile"
	"cdrlens/internal/ingest/excel"
	"cdrlens/internal/ingest/htmltable"
	"cdrlens/internal/resolver"
	"cdrlens/internal/schema"
	"cdrlens/internal/timeparse"
	"cdrlens/pkg/records"
)

func main() {
	var (
		flagInput     = flag.String("input", "", "path of the source file (CSV, Excel, or HTML)")
		flagFormat    = flag.String("format", "auto", "input format: auto, csv, xlsx, html")
		flagRows      = flag.Int("rows", 1000, "number of rows to sample for per-column stats")
		flagInferRate = flag.Float64("infer-min-rate", 0, "override start_time inference parse-rate threshold (0 = default)")
	)
	flag.Parse()

	if *flagInput == "" {
		fatalf("-input is required")
	}

	tbl, err := loadTable(*flagInput, *flagFormat)
	if err != nil {
		fatalf("load input: %v", err)
	}

	cat := schema.DefaultCatalog()
	mapping := resolver.Resolve(tbl, cat, resolver.Options{InferMinParseRate: *flagInferRate})

	fmt.Printf("input: %s (%d columns, %d rows)\n\n", *flagInput, len(tbl.Columns), len(tbl.Rows))

	fmt.Println("mapping:")
	var unresolved []string
	for _, f := range cat.Fields() {
		src, ok := mapping.Source(f.Name)
		if !ok {
			unresolved = append(unresolved, f.Name)
			continue
		}
		how := "alias"
		if f.Name == schema.FieldStartTime && mapping.Inferred != "" {
			how = "inferred"
		}
		fmt.Printf("  %-14s <- %-20s (%s)\n", f.Name, src, how)
	}
	if mapping.DeriveDuration {
		fmt.Printf("  %-14s <- end_time - start_time (derived)\n", schema.FieldDurationSec)
	}
	if len(unresolved) > 0 {
		fmt.Println("\nunresolved:")
		for _, name := range unresolved {
			fmt.Printf("  %s\n", name)
		}
	}

	fmt.Println("\ncolumn stats:")
	printColumnStats(tbl, *flagRows)
}

// columnStats summarizes a sample of one raw column.
type columnStats struct {
	nonMissing int
	timestamps int
	numbers    int
}

// printColumnStats samples up to maxRows rows and reports, per raw column,
// how many values are present and what fraction parse as timestamps or
// numbers. These rates drive both alias debugging and the inference
// threshold, so they are the most useful probe output on messy files.
func printColumnStats(tbl records.Table, maxRows int) {
	rows := tbl.Rows
	if maxRows > 0 && len(rows) > maxRows {
		rows = rows[:maxRows]
	}

	for _, col := range tbl.Columns {
		var st columnStats
		for _, row := range rows {
			v := row.Get(col)
			if v.IsMissing() {
				continue
			}
			st.nonMissing++
			text := v.Text()
			if _, ok := timeparse.Parse(text); ok {
				st.timestamps++
			}
			if _, err := strconv.ParseFloat(text, 64); err == nil {
				st.numbers++
			}
		}

		fmt.Printf("  %-24s present=%s", col, rate(st.nonMissing, len(rows)))
		if st.nonMissing > 0 {
			fmt.Printf("  time=%s  number=%s", rate(st.timestamps, st.nonMissing), rate(st.numbers, st.nonMissing))
		}
		fmt.Println()
	}
}

func rate(n, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", 100*float64(n)/float64(total))
}

func loadTable(input, format string) (records.Table, error) {
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
				log.Printf("csv: skip line %d: %s", line, reason)
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

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
