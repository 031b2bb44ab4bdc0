package audit

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/rengatools/geometry/internal/audit"

// Recorder hands calls to a backend from a single goroutine. Record never
// blocks: when the buffer is full the call is dropped and counted.
type Recorder struct {
	backend Backend
	calls   chan *Call
	logger  *slog.Logger
	dropped metric.Int64Counter

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewRecorder starts the drain goroutine. The backend must already be
// initialized.
func NewRecorder(backend Backend, bufferSize int, logger *slog.Logger) *Recorder {
	if bufferSize < 1 {
		bufferSize = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	dropped, err := otel.Meter(instrumentationName).Int64Counter(
		"audit.calls.dropped",
		metric.WithDescription("Audit records dropped because the buffer was full"),
	)
	if err != nil {
		logger.Warn("audit drop counter unavailable", "error", err)
	}

	r := &Recorder{
		backend: backend,
		calls:   make(chan *Call, bufferSize),
		logger:  logger,
		dropped: dropped,
	}

	r.wg.Add(1)
	go r.drain()
	return r
}

// Record queues c and reports whether it was accepted.
func (r *Recorder) Record(c *Call) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return false
	}
	select {
	case r.calls <- c:
		return true
	default:
		if r.dropped != nil {
			r.dropped.Add(context.Background(), 1)
		}
		return false
	}
}

// Backend returns the wrapped backend.
func (r *Recorder) Backend() Backend {
	return r.backend
}

// Close drains queued calls into the backend and closes it. Calls recorded
// afterwards are rejected.
func (r *Recorder) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	close(r.calls)
	r.mu.Unlock()

	r.wg.Wait()
	return errors.Join(r.backend.Close())
}

func (r *Recorder) drain() {
	defer r.wg.Done()
	for c := range r.calls {
		if err := r.backend.RecordCall(c); err != nil {
			r.logger.Error("audit record failed", "function", c.Function, "error", err)
		}
	}
}
