package mssql

import (
	"strings"
	"testing"

	"cdrlens/internal/storage"
)

func TestBuildInsertSQL(t *testing.T) {
	t.Parallel()

	q := buildInsertSQL("cdr_records", []string{"a", "b"}, 3)

	want := "INSERT INTO cdr_records ([a], [b]) VALUES (@p1, @p2), (@p3, @p4), (@p5, @p6)"
	if q != want {
		t.Fatalf("sql=%q, want %q", q, want)
	}
}

func TestBuildCreateSQL(t *testing.T) {
	t.Parallel()

	ddl := buildCreateSQL("cdr_records")

	if !strings.Contains(ddl, "IF NOT EXISTS") {
		t.Fatalf("DDL missing existence guard:\n%s", ddl)
	}
	if !strings.Contains(ddl, "[id] BIGINT IDENTITY(1,1) PRIMARY KEY") {
		t.Fatalf("DDL missing identity pk:\n%s", ddl)
	}
	for _, c := range storage.Columns {
		if !strings.Contains(ddl, "["+c+"]") {
			t.Fatalf("DDL missing column %q:\n%s", c, ddl)
		}
	}
}

func TestSQLIdent_EscapesBrackets(t *testing.T) {
	t.Parallel()

	if got := sqlIdent("we]ird"); got != "[we]]ird]" {
		t.Fatalf("sqlIdent=%q, want %q", got, "[we]]ird]")
	}
}

// TestInsertChunking verifies the parameter-cap math keeps each statement
// under the SQL Server limit.
func TestInsertChunking(t *testing.T) {
	t.Parallel()

	perRow := len(storage.Columns)
	maxRows := maxParams / perRow
	if maxRows*perRow > 2100 {
		t.Fatalf("chunk of %d rows * %d cols exceeds 2100 params", maxRows, perRow)
	}
	if maxRows < 1 {
		t.Fatalf("maxRows=%d, want >= 1", maxRows)
	}
}
