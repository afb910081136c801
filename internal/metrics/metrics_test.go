package metrics

import "testing"

type recordingBackend struct {
	counters   map[string]float64
	histograms map[string][]float64
	flushed    int
	closed     int
}

func newRecordingBackend() *recordingBackend {
	return &recordingBackend{
		counters:   map[string]float64{},
		histograms: map[string][]float64{},
	}
}

func (r *recordingBackend) IncCounter(name string, delta float64, labels Labels) {
	r.counters[name] += delta
}

func (r *recordingBackend) ObserveHistogram(name string, value float64, labels Labels) {
	r.histograms[name] = append(r.histograms[name], value)
}

func (r *recordingBackend) Flush() error { r.flushed++; return nil }
func (r *recordingBackend) Close() error { r.closed++; return nil }

func TestNopBackendByDefault(t *testing.T) {
	// The package-level calls must be safe with no backend configured.
	IncCounter(RowsTotal, 1, Labels{"kind": "in"})
	ObserveHistogram(NormalizeSeconds, 0.1, nil)
	if err := Flush(); err != nil {
		t.Fatalf("Flush with nop backend: %v", err)
	}
}

func TestSetBackendRoutesCalls(t *testing.T) {
	rb := newRecordingBackend()
	SetBackend(rb)
	t.Cleanup(func() { SetBackend(nil) })

	IncCounter(RowsTotal, 3, Labels{"kind": "out"})
	IncCounter(RowsTotal, 2, Labels{"kind": "out"})
	ObserveHistogram(NormalizeSeconds, 0.25, nil)
	if err := Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	if got := rb.counters[RowsTotal]; got != 5 {
		t.Fatalf("counter=%v, want 5", got)
	}
	if got := len(rb.histograms[NormalizeSeconds]); got != 1 {
		t.Fatalf("histogram samples=%d, want 1", got)
	}
	if rb.flushed != 1 {
		t.Fatalf("flushed=%d, want 1", rb.flushed)
	}
}

func TestSetBackendNilRestoresNop(t *testing.T) {
	SetBackend(newRecordingBackend())
	SetBackend(nil)

	// Must not panic and must route to the nop backend.
	IncCounter(RowsTotal, 1, nil)
	if err := Close(); err != nil {
		t.Fatalf("Close with nop backend: %v", err)
	}
}
