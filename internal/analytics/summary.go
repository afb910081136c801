package analytics

import (
	"sort"

	"cdrlens/internal/normalizer"
)

// Summary holds the headline KPIs for a set of canonical records.
type Summary struct {
	TotalCalls    int
	AnsweredCalls int

	// ASR is answered/total, 0 on an empty set.
	ASR float64

	// TotalMinutes sums duration across all records, missing counted as 0.
	TotalMinutes float64

	// ACDMinutes is the mean duration among answered records that carry a
	// duration. 0 when there are none.
	ACDMinutes float64

	// AvgPDDMillis averages setup_time_ms over records where it is
	// present; HasPDD reports whether any were.
	AvgPDDMillis float64
	HasPDD       bool

	UniqueCallers int
	UniqueCallees int

	// Revenue sums cost over records where it is present; HasRevenue
	// reports whether any were.
	Revenue    float64
	HasRevenue bool
}

// Summarize computes the KPI block. Every statistic is zero-safe: an empty
// input produces an all-zero summary, never NaN.
func Summarize(recs []normalizer.Record) Summary {
	var s Summary
	s.TotalCalls = len(recs)

	var acdSum, pddSum float64
	var acdN, pddN int
	callers := map[string]bool{}
	callees := map[string]bool{}

	for _, r := range recs {
		if r.Answered {
			s.AnsweredCalls++
			if r.HasDuration {
				acdSum += r.DurationSec
				acdN++
			}
		}
		if r.HasDuration {
			s.TotalMinutes += r.DurationSec / 60
		}
		if r.HasSetup {
			pddSum += r.SetupTimeMS
			pddN++
		}
		if r.HasCost {
			s.Revenue += r.Cost
			s.HasRevenue = true
		}
		if r.Caller != "" {
			callers[r.Caller] = true
		}
		if r.Callee != "" {
			callees[r.Callee] = true
		}
	}

	if s.TotalCalls > 0 {
		s.ASR = float64(s.AnsweredCalls) / float64(s.TotalCalls)
	}
	if acdN > 0 {
		s.ACDMinutes = acdSum / float64(acdN) / 60
	}
	if pddN > 0 {
		s.AvgPDDMillis = pddSum / float64(pddN)
		s.HasPDD = true
	}
	s.UniqueCallers = len(callers)
	s.UniqueCallees = len(callees)
	return s
}

// OperatorStat is per-operator quality: the ASR-vs-ACD bubble data.
type OperatorStat struct {
	Operator     string
	Calls        int
	ASR          float64
	ACDMinutes   float64
	Minutes      float64
	AvgPDDMillis float64
	HasPDD       bool
}

// OperatorQuality groups records by operator and computes per-operator
// quality stats, ordered by call volume descending (ties by name). Records
// without an operator are excluded.
func OperatorQuality(recs []normalizer.Record) []OperatorStat {
	type acc struct {
		calls    int
		answered int
		acdSum   float64
		acdN     int
		minutes  float64
		pddSum   float64
		pddN     int
	}
	byOp := map[string]*acc{}
	for _, r := range recs {
		if r.Operator == "" {
			continue
		}
		a := byOp[r.Operator]
		if a == nil {
			a = &acc{}
			byOp[r.Operator] = a
		}
		a.calls++
		if r.Answered {
			a.answered++
			if r.HasDuration {
				a.acdSum += r.DurationSec
				a.acdN++
			}
		}
		if r.HasDuration {
			a.minutes += r.DurationSec / 60
		}
		if r.HasSetup {
			a.pddSum += r.SetupTimeMS
			a.pddN++
		}
	}

	out := make([]OperatorStat, 0, len(byOp))
	for op, a := range byOp {
		st := OperatorStat{Operator: op, Calls: a.calls, Minutes: a.minutes}
		st.ASR = float64(a.answered) / float64(a.calls)
		if a.acdN > 0 {
			st.ACDMinutes = a.acdSum / float64(a.acdN) / 60
		}
		if a.pddN > 0 {
			st.AvgPDDMillis = a.pddSum / float64(a.pddN)
			st.HasPDD = true
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Calls != out[j].Calls {
			return out[i].Calls > out[j].Calls
		}
		return out[i].Operator < out[j].Operator
	})
	return out
}
