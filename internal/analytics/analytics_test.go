package analytics

import (
	"math"
	"reflect"
	"testing"
	"time"

	"cdrlens/internal/normalizer"
)

// rec builds a minimal canonical record for analytics tests.
func rec(start string, mutate ...func(*normalizer.Record)) normalizer.Record {
	t, err := time.Parse("2006-01-02 15:04:05", start)
	if err != nil {
		panic(err)
	}
	y, m, d := t.Date()
	r := normalizer.Record{
		StartTime: t,
		Date:      time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Hour:      t.Hour(),
		Weekday:   t.Weekday().String(),
	}
	for _, f := range mutate {
		f(&r)
	}
	return r
}

func answered(dur float64) func(*normalizer.Record) {
	return func(r *normalizer.Record) {
		r.Status = "ANSWERED"
		r.Answered = true
		r.DurationSec = dur
		r.HasDuration = true
	}
}

func failed(status string) func(*normalizer.Record) {
	return func(r *normalizer.Record) {
		r.Status = status
		r.Failed = true
	}
}

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestSummarize(t *testing.T) {
	t.Parallel()

	recs := []normalizer.Record{
		rec("2024-01-01 10:00:00", answered(120), func(r *normalizer.Record) {
			r.Caller, r.Callee = "a", "x"
			r.SetupTimeMS, r.HasSetup = 2000, true
			r.Cost, r.HasCost = 0.10, true
		}),
		rec("2024-01-01 11:00:00", answered(60), func(r *normalizer.Record) {
			r.Caller, r.Callee = "a", "y"
			r.SetupTimeMS, r.HasSetup = 3000, true
		}),
		rec("2024-01-02 09:00:00", failed("BUSY"), func(r *normalizer.Record) {
			r.Caller = "b"
		}),
		rec("2024-01-02 10:00:00"), // unclassified, no duration
	}

	s := Summarize(recs)
	if s.TotalCalls != 4 || s.AnsweredCalls != 2 {
		t.Fatalf("calls = %d/%d, want 4/2", s.TotalCalls, s.AnsweredCalls)
	}
	if !almostEqual(s.ASR, 0.5) {
		t.Fatalf("ASR = %v, want 0.5", s.ASR)
	}
	if !almostEqual(s.TotalMinutes, 3) {
		t.Fatalf("TotalMinutes = %v, want 3", s.TotalMinutes)
	}
	if !almostEqual(s.ACDMinutes, 1.5) {
		t.Fatalf("ACDMinutes = %v, want 1.5 (mean of 2min and 1min)", s.ACDMinutes)
	}
	if !s.HasPDD || !almostEqual(s.AvgPDDMillis, 2500) {
		t.Fatalf("AvgPDDMillis = (%v, %v), want (2500, true)", s.AvgPDDMillis, s.HasPDD)
	}
	if s.UniqueCallers != 2 || s.UniqueCallees != 2 {
		t.Fatalf("unique = %d/%d, want 2/2", s.UniqueCallers, s.UniqueCallees)
	}
	if !s.HasRevenue || !almostEqual(s.Revenue, 0.10) {
		t.Fatalf("Revenue = (%v, %v), want (0.10, true)", s.Revenue, s.HasRevenue)
	}
}

func TestSummarizeEmptyIsZero(t *testing.T) {
	t.Parallel()

	s := Summarize(nil)
	if s != (Summary{}) {
		t.Fatalf("empty summary = %+v, want zero value", s)
	}
}

func TestFilter(t *testing.T) {
	t.Parallel()

	recs := []normalizer.Record{
		rec("2024-01-01 10:00:00", answered(30), func(r *normalizer.Record) { r.Direction = "inbound"; r.Operator = "Jazz" }),
		rec("2024-01-05 10:00:00", answered(300), func(r *normalizer.Record) { r.Direction = "outbound"; r.Operator = "Zong" }),
		rec("2024-02-01 10:00:00", failed("FAILED"), func(r *normalizer.Record) { r.Direction = "inbound"; r.Operator = "Jazz" }),
	}

	tests := []struct {
		name string
		opt  FilterOptions
		want int
	}{
		{"no filters admit all", FilterOptions{}, 3},
		{"date range", FilterOptions{
			From: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			To:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		}, 2},
		{"from bound is inclusive", FilterOptions{
			From: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		}, 1},
		{"direction", FilterOptions{Directions: []string{"inbound"}}, 2},
		{"operator", FilterOptions{Operators: []string{"Zong"}}, 1},
		{"status", FilterOptions{Statuses: []string{"ANSWERED"}}, 2},
		{"min duration excludes missing-as-zero", FilterOptions{MinDurationSec: 60}, 1},
		{"max duration", FilterOptions{MaxDurationSec: 60}, 2},
		{"combined", FilterOptions{Directions: []string{"inbound"}, Statuses: []string{"ANSWERED"}}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Filter(recs, tt.opt)
			if len(got) != tt.want {
				t.Fatalf("Filter admitted %d records, want %d", len(got), tt.want)
			}
		})
	}
}

func TestDailyTraffic(t *testing.T) {
	t.Parallel()

	recs := []normalizer.Record{
		rec("2024-01-02 10:00:00", answered(60)),
		rec("2024-01-01 09:00:00", answered(120)),
		rec("2024-01-01 23:00:00"),
	}

	got := DailyTraffic(recs)
	if len(got) != 2 {
		t.Fatalf("got %d days, want 2", len(got))
	}
	if !got[0].Date.Before(got[1].Date) {
		t.Fatalf("days out of order: %v, %v", got[0].Date, got[1].Date)
	}
	if got[0].Calls != 2 || !almostEqual(got[0].Minutes, 2) {
		t.Fatalf("day 1 = %+v, want 2 calls / 2 minutes", got[0])
	}
}

func TestHourlyHeatmap(t *testing.T) {
	t.Parallel()

	recs := []normalizer.Record{
		rec("2024-01-01 09:00:00"), // a Monday
		rec("2024-01-01 09:30:00"),
		rec("2024-01-07 23:00:00"), // a Sunday
	}
	hm := HourlyHeatmap(recs)
	if hm[0][9] != 2 {
		t.Fatalf("Monday 09h = %d, want 2", hm[0][9])
	}
	if hm[6][23] != 1 {
		t.Fatalf("Sunday 23h = %d, want 1", hm[6][23])
	}
}

func TestTopCallers(t *testing.T) {
	t.Parallel()

	recs := []normalizer.Record{
		rec("2024-01-01 10:00:00", func(r *normalizer.Record) { r.Caller = "b" }),
		rec("2024-01-01 10:01:00", func(r *normalizer.Record) { r.Caller = "a" }),
		rec("2024-01-01 10:02:00", func(r *normalizer.Record) { r.Caller = "b" }),
		rec("2024-01-01 10:03:00", func(r *normalizer.Record) { r.Caller = "c" }),
		rec("2024-01-01 10:04:00"), // no caller, excluded
	}

	got := TopCallers(recs, 2)
	want := []EntityCount{{Value: "b", Calls: 2}, {Value: "a", Calls: 1}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("TopCallers = %v, want %v (ties break by value)", got, want)
	}
}

func TestOperatorQuality(t *testing.T) {
	t.Parallel()

	recs := []normalizer.Record{
		rec("2024-01-01 10:00:00", answered(120), func(r *normalizer.Record) { r.Operator = "Jazz" }),
		rec("2024-01-01 11:00:00", failed("FAILED"), func(r *normalizer.Record) { r.Operator = "Jazz" }),
		rec("2024-01-01 12:00:00", answered(60), func(r *normalizer.Record) { r.Operator = "Zong" }),
		rec("2024-01-01 13:00:00"), // no operator, excluded
	}

	got := OperatorQuality(recs)
	if len(got) != 2 {
		t.Fatalf("got %d operators, want 2", len(got))
	}
	if got[0].Operator != "Jazz" || got[0].Calls != 2 {
		t.Fatalf("first operator = %+v, want Jazz with 2 calls", got[0])
	}
	if !almostEqual(got[0].ASR, 0.5) || !almostEqual(got[0].ACDMinutes, 2) {
		t.Fatalf("Jazz ASR/ACD = %v/%v, want 0.5/2", got[0].ASR, got[0].ACDMinutes)
	}
}
