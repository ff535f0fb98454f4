package cachebench

import (
	"fmt"
	"io"

	"github.com/tebeka/atexit"
)

// CSVWriter streams sweep points as CSV. This is the process's only
// durable artifact and the contract consumed by the orchestration
// wrappers, so rows are flushed as each point converges and once more at
// exit in case the process dies between points.
type CSVWriter struct {
	w          io.Writer
	rows       []Result
	bufferSize int
}

// NewCSVWriter creates a writer over w, typically stdout.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{
		w: w,
		// Every converged point must reach the consumer immediately.
		bufferSize: 1,
	}
}

// Init writes the header and registers the exit flush.
func (t *CSVWriter) Init() {
	fmt.Fprintf(t.w, "stride,arr_size,result,increase\n")
	atexit.Register(t.Flush)
}

// Write appends a sweep point and flushes when the buffer fills.
func (t *CSVWriter) Write(r Result) {
	t.rows = append(t.rows, r)
	if len(t.rows) >= t.bufferSize {
		t.Flush()
	}
}

// Flush writes the buffered rows.
func (t *CSVWriter) Flush() {
	for _, r := range t.rows {
		fmt.Fprintf(t.w, "%d,%d,%g,%g\n",
			r.Params.Stride,
			r.Params.ArrSize,
			r.Latency,
			r.Increase,
		)
	}
	t.rows = nil
}

// MultiSink fans every sweep point out to several sinks, e.g. the CSV
// stream plus the SQLite recorder.
type MultiSink []ResultSink

// Write forwards the point to every sink.
func (m MultiSink) Write(r Result) {
	for _, s := range m {
		s.Write(r)
	}
}

// Flush flushes every sink.
func (m MultiSink) Flush() {
	for _, s := range m {
		s.Flush()
	}
}

// SetProbe forwards the probe stage to every sink that tracks it.
func (m MultiSink) SetProbe(name string) {
	for _, s := range m {
		if pa, ok := s.(probeAware); ok {
			pa.SetProbe(name)
		}
	}
}
