package schema

import "testing"

func TestNormalizeColumn(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"already normal", "start_time", "start_time"},
		{"mixed case", "Call Start", "call_start"},
		{"surrounding space", "  Duration ", "duration"},
		{"multiple internal spaces", "B Party No", "b_party_no"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := NormalizeColumn(tt.in); got != tt.want {
				t.Fatalf("NormalizeColumn(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// TestDefaultCatalogShape pins the structural invariants resolution relies on:
// every canonical name leads its own alias list (idempotent re-normalization),
// aliases are already in normalized form, and no alias repeats within a field.
func TestDefaultCatalogShape(t *testing.T) {
	t.Parallel()

	cat := DefaultCatalog()
	fields := cat.Fields()
	if len(fields) != 16 {
		t.Fatalf("expected 16 canonical fields, got %d", len(fields))
	}

	for _, f := range fields {
		if len(f.Aliases) == 0 {
			t.Fatalf("field %q has no aliases", f.Name)
		}
		if f.Aliases[0] != f.Name {
			t.Errorf("field %q: first alias is %q, want the canonical name", f.Name, f.Aliases[0])
		}
		seen := map[string]bool{}
		for _, a := range f.Aliases {
			if NormalizeColumn(a) != a {
				t.Errorf("field %q: alias %q is not in normalized form", f.Name, a)
			}
			if seen[a] {
				t.Errorf("field %q: duplicate alias %q", f.Name, a)
			}
			seen[a] = true
		}
	}

	if _, ok := cat.Field(FieldStartTime); !ok {
		t.Fatalf("catalog is missing %q", FieldStartTime)
	}
	if _, ok := cat.Field("no_such_field"); ok {
		t.Fatalf("lookup of unknown field should fail")
	}
}
