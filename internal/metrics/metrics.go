// Package metrics defines the minimal metrics surface the pipeline emits
// through. The core depends only on Backend; concrete backends (datadog)
// live in subpackages and are selected by the binaries at startup.
//
// The default backend is a no-op, so library code can emit unconditionally.
package metrics

import "sync"

// Labels tag a metric sample.
type Labels map[string]string

// Backend receives metric samples. Implementations must be safe for
// concurrent use.
type Backend interface {
	IncCounter(name string, delta float64, labels Labels)
	ObserveHistogram(name string, value float64, labels Labels)

	// Flush pushes buffered samples to the sink.
	Flush() error
	// Close stops background work and performs a final flush.
	Close() error
}

// Metric names emitted by the pipeline.
const (
	// RowsTotal counts rows by kind label: in, out, dropped.
	RowsTotal = "cdr_rows_total"
	// CellsUnparseable counts present-but-uncoercible cells by field label.
	CellsUnparseable = "cdr_cells_unparseable_total"
	// NormalizeSeconds observes wall time of one normalization pass.
	NormalizeSeconds = "cdr_normalize_duration_seconds"
)

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

// SetBackend installs the process-wide backend. Call once at startup,
// before the pipeline runs.
func SetBackend(b Backend) {
	if b == nil {
		b = nopBackend{}
	}
	mu.Lock()
	backend = b
	mu.Unlock()
}

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// IncCounter adds delta to a counter on the installed backend.
func IncCounter(name string, delta float64, labels Labels) {
	current().IncCounter(name, delta, labels)
}

// ObserveHistogram records one sample on the installed backend.
func ObserveHistogram(name string, value float64, labels Labels) {
	current().ObserveHistogram(name, value, labels)
}

// Flush flushes the installed backend.
func Flush() error { return current().Flush() }

// Close closes the installed backend.
func Close() error { return current().Close() }

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }
func (nopBackend) Close() error                             { return nil }
