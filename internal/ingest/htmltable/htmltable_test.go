package htmltable

import (
	"strings"
	"testing"
)

func TestReadWithTHHeader(t *testing.T) {
	t.Parallel()

	html := `<html><body>
	<table>
	  <tr><th>Call Start</th><th>Caller</th><th>Status</th></tr>
	  <tr><td>2024-01-01 10:00:00</td><td>+92300111</td><td>ANSWERED</td></tr>
	  <tr><td>2024-01-01 11:00:00</td><td>+92300222</td><td></td></tr>
	</table>
	</body></html>`

	tbl, err := Read(strings.NewReader(html))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(tbl.Columns) != 3 || tbl.Columns[0] != "Call Start" {
		t.Fatalf("columns = %v", tbl.Columns)
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(tbl.Rows))
	}
	if got := tbl.Rows[0].Get("Status").Text(); got != "ANSWERED" {
		t.Fatalf("status = %q", got)
	}
	if !tbl.Rows[1].Get("Status").IsMissing() {
		t.Fatalf("empty <td> should be missing")
	}
}

func TestReadFirstRowAsHeader(t *testing.T) {
	t.Parallel()

	html := `<table>
	  <tr><td>start_time</td><td>caller</td></tr>
	  <tr><td>2024-01-01 10:00:00</td><td>a</td></tr>
	</table>`

	tbl, err := Read(strings.NewReader(html))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(tbl.Columns) != 2 || tbl.Columns[0] != "start_time" {
		t.Fatalf("columns = %v", tbl.Columns)
	}
	if len(tbl.Rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(tbl.Rows))
	}
}

func TestReadSkipsMisalignedRows(t *testing.T) {
	t.Parallel()

	html := `<table>
	  <tr><th>a</th><th>b</th></tr>
	  <tr><td>1</td><td>2</td></tr>
	  <tr><td>lonely</td></tr>
	</table>`

	tbl, err := Read(strings.NewReader(html))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(tbl.Rows) != 1 {
		t.Fatalf("got %d rows, want 1 (misaligned row skipped)", len(tbl.Rows))
	}
}

func TestReadNoTable(t *testing.T) {
	t.Parallel()

	if _, err := Read(strings.NewReader("<html><body><p>nothing</p></body></html>")); err == nil {
		t.Fatalf("expected error for a document without a table")
	}
}

func TestReadFirstTableOnly(t *testing.T) {
	t.Parallel()

	html := `<table><tr><th>x</th></tr><tr><td>1</td></tr></table>
	<table><tr><th>y</th></tr><tr><td>2</td></tr></table>`

	tbl, err := Read(strings.NewReader(html))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(tbl.Columns) != 1 || tbl.Columns[0] != "x" {
		t.Fatalf("columns = %v, want [x]", tbl.Columns)
	}
}
