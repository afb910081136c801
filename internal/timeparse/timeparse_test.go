package timeparse

import (
	"testing"
	"time"
)

// TestParse covers the layout families the normalizer depends on. Lenient
// parsing is load-bearing: any value rejected here becomes a missing cell,
// and a missing start_time drops the whole row.
func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		in     string
		want   string // RFC3339; empty means wantOK=false
		wantOK bool
	}{
		{"iso space", "2024-01-01 00:02:30", "2024-01-01T00:02:30Z", true},
		{"iso t", "2024-01-01T00:02:30", "2024-01-01T00:02:30Z", true},
		{"rfc3339", "2024-01-01T00:02:30Z", "2024-01-01T00:02:30Z", true},
		{"rfc3339 offset", "2024-01-01T05:02:30+05:00", "2024-01-01T00:02:30Z", true},
		{"minute precision", "2024-01-01 09:15", "2024-01-01T09:15:00Z", true},
		{"dotted dmy", "02.01.2024 13:45:00", "2024-01-02T13:45:00Z", true},
		{"slashed dmy", "02/01/2024 13:45:00", "2024-01-02T13:45:00Z", true},
		{"slashed dmy minutes", "02/01/2024 13:45", "2024-01-02T13:45:00Z", true},
		{"date only midnight", "2024-01-01", "2024-01-01T00:00:00Z", true},
		{"epoch seconds", "1704067200", "2024-01-01T00:00:00Z", true},
		{"epoch millis", "1704067200000", "2024-01-01T00:00:00Z", true},
		{"surrounding space", "  2024-01-01 00:00:00  ", "2024-01-01T00:00:00Z", true},
		{"garbage", "not-a-time", "", false},
		{"empty", "", "", false},
		{"short digits", "12345", "", false},
		{"phone number length", "923001234567", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := Parse(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("Parse(%q) ok=%v, want %v", tt.in, ok, tt.wantOK)
			}
			if !tt.wantOK {
				return
			}
			want, err := time.Parse(time.RFC3339, tt.want)
			if err != nil {
				t.Fatalf("bad want %q: %v", tt.want, err)
			}
			if !got.UTC().Equal(want) {
				t.Fatalf("Parse(%q) = %s, want %s", tt.in, got.UTC().Format(time.RFC3339), tt.want)
			}
		})
	}
}
