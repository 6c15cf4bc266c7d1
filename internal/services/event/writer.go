package event

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/LeonardoBeccarini/irrixa/internal/pkg/logger"
)

// neverFailed is reported as the error age until the first write error.
const neverFailed = 99999 * time.Hour

// Writer queues audit points on the async Influx WriteAPI and keeps the
// write-error bookkeeping the probes read.
type Writer struct {
	api api.WriteAPI

	lastErrNano atomic.Int64 // 0 = no error yet
	failures    atomic.Int64

	mu       sync.Mutex
	ingested map[string]int64
}

// WriterStats is a point-in-time view of the writer.
type WriterStats struct {
	Ingested      map[string]int64
	WriteFailures int64
	LastErrorAge  time.Duration
}

func NewWriter(w api.WriteAPI) *Writer {
	ww := &Writer{api: w, ingested: make(map[string]int64)}
	go ww.drainErrors(w.Errors())
	return ww
}

// il canale si chiude quando il client influx viene chiuso
func (w *Writer) drainErrors(errs <-chan error) {
	for err := range errs {
		if err == nil {
			continue
		}
		w.lastErrNano.Store(time.Now().UnixNano())
		n := w.failures.Add(1)
		logger.Errorf(context.Background(), "influx write failed (%d so far): %v", n, err)
	}
}

// Write queues evt as a point. Delivery errors surface later through drainErrors.
func (w *Writer) Write(evt CommonEvent) {
	w.api.WritePoint(EventToPoint(evt))
	w.mu.Lock()
	w.ingested[evt.EventType]++
	w.mu.Unlock()
}

func (w *Writer) Flush() { w.api.Flush() }

func (w *Writer) LastErrorAge() time.Duration {
	if w == nil {
		return neverFailed
	}
	ns := w.lastErrNano.Load()
	if ns == 0 {
		return neverFailed
	}
	return time.Since(time.Unix(0, ns))
}

func (w *Writer) Count(eventType string) int64 {
	if w == nil {
		return 0
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ingested[eventType]
}

// Stats copies the counters. A nil Writer reports nothing ingested and no errors.
func (w *Writer) Stats() WriterStats {
	st := WriterStats{Ingested: map[string]int64{}, LastErrorAge: w.LastErrorAge()}
	if w == nil {
		return st
	}
	st.WriteFailures = w.failures.Load()
	w.mu.Lock()
	for k, v := range w.ingested {
		st.Ingested[k] = v
	}
	w.mu.Unlock()
	return st
}
