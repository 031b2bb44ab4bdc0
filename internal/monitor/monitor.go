package monitor

import (
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/rengatools/geometry/internal/cache"
	"github.com/rengatools/geometry/pkg/core"
)

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	Logger   *slog.Logger
	Curves   *cache.CurveCache
	Interval time.Duration
}

// Status is one snapshot of the library state.
type Status struct {
	Curves     core.CurveStats
	Goroutines int
	HeapBytes  uint64
}

// Service periodically logs a Status.
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
	done      chan struct{}
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Service{deps: deps}
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetStatus collects the current status.
func (s *Service) GetStatus() Status {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	st := Status{
		Goroutines: runtime.NumGoroutine(),
		HeapBytes:  mem.HeapAlloc,
	}
	if s.deps.Curves != nil {
		st.Curves = s.deps.Curves.Stats()
	}
	return st
}

// Start starts the status monitor goroutine. A zero interval disables it.
func (s *Service) Start() {
	if s.deps.Interval <= 0 {
		return
	}

	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})
	stop, done := s.stopChan, s.done
	s.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(s.deps.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				s.logStatus()
			}
		}
	}()
}

// Stop stops the status monitor and waits for it to exit.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	close(s.stopChan)
	done := s.done
	s.mu.Unlock()

	<-done
}

func (s *Service) logStatus() {
	st := s.GetStatus()
	s.deps.Logger.Info("status",
		"liveCurves", st.Curves.Live,
		"livePoints", st.Curves.Points,
		"goroutines", st.Goroutines,
		"heapBytes", st.HeapBytes,
	)
}
