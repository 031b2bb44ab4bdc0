package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"unsafe"

	"github.com/rengatools/geometry/internal/audit"
	"github.com/rengatools/geometry/internal/cache"
	"github.com/rengatools/geometry/internal/geometry"
	"github.com/rengatools/geometry/pkg/core"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Names of the native functions, used in logs, metrics and the audit journal.
const (
	FnCalculateGeometry = "CalculateComplexGeometry"
	FnFindPath          = "FindPathBetweenPoints"
	FnCreateCurve       = "CreateComplexCurve"
	FnFreeMemory        = "FreeMemory"
	FnCurvePointCount   = "GetCurvePointCount"
	FnCopyCurvePoints   = "CopyCurvePoints"
)

// Allocator owns the memory behind curve handles. The native build backs it
// with the C heap so handles stay valid on the host side of the boundary.
type Allocator interface {
	// Alloc stores a copy of points and returns the buffer.
	Alloc(points []core.Point3D) (unsafe.Pointer, error)
	// Free releases a buffer returned by Alloc.
	Free(buf unsafe.Pointer)
	// Read copies count points out of a live buffer.
	Read(buf unsafe.Pointer, count int) []core.Point3D
}

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger    *slog.Logger
	Curves    *cache.CurveCache
	Allocator Allocator
	// Recorder is optional; nil disables the audit journal.
	Recorder *audit.Recorder
	// MaxInputPoints caps the input snapshot kept per audit record.
	MaxInputPoints int
	Version        string
	BuildDate      string
}

// Service runs every native call: it does the work, then logs, counts and
// journals it.
type Service struct {
	deps Dependencies

	// curveMu orders reads of a buffer against its release.
	curveMu sync.RWMutex

	calls    metric.Int64Counter
	duration metric.Float64Histogram
}

// NewService creates a new handler service. Uses the global OTel meter.
func NewService(deps Dependencies) (*Service, error) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Curves == nil {
		deps.Curves = cache.NewCurveCache()
	}
	if deps.Allocator == nil {
		return nil, fmt.Errorf("handlers: allocator is required")
	}

	s := &Service{deps: deps}
	m := meter()

	var err error
	s.calls, err = m.Int64Counter(
		"geometry.calls",
		metric.WithDescription("Native calls handled"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating calls counter: %w", err)
	}

	s.duration, err = m.Float64Histogram(
		"geometry.call.duration",
		metric.WithDescription("Native call duration"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}

	live, err := m.Int64ObservableGauge(
		"geometry.curves.live",
		metric.WithDescription("Curve buffers not yet freed by the host"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating live curves gauge: %w", err)
	}
	_, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			o.ObserveInt64(live, int64(s.deps.Curves.Len()))
			return nil
		},
		live,
	)
	if err != nil {
		return nil, fmt.Errorf("registering live curves callback: %w", err)
	}

	return s, nil
}

// Curves returns the live curve registry.
func (s *Service) Curves() *cache.CurveCache {
	return s.deps.Curves
}

// CalculateGeometry computes the extent of points. parameter1 and
// parameter2 are passed through unused. A panic yields the exception result.
func (s *Service) CalculateGeometry(points []core.Point3D, parameter1, parameter2 float64) (result core.GeometryResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			s.deps.Logger.Error("calculation panicked", "function", FnCalculateGeometry, "panic", r)
			result = geometry.Failed()
		}
		s.finish(FnCalculateGeometry, points, result.Success, result.Message, start)
	}()

	return geometry.Evaluate(points, parameter1, parameter2)
}

// FindPath returns the path between two ids, or false when the caller's
// buffer holds fewer than two ids.
func (s *Service) FindPath(startID, endID int32, capacity int) ([]int32, bool) {
	start := time.Now()
	path, err := geometry.FindPath(startID, endID, capacity)
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	s.finish(FnFindPath, nil, err == nil, msg, start,
		"start", startID, "end", endID, "capacity", capacity)
	return path, err == nil
}

// CreateCurve copies points into a new buffer and returns it, or nil when
// fewer than two points are given or allocation fails.
func (s *Service) CreateCurve(points []core.Point3D) unsafe.Pointer {
	start := time.Now()

	cp, err := geometry.ControlPoints(points)
	if err != nil {
		s.finish(FnCreateCurve, points, false, err.Error(), start)
		return nil
	}

	buf, err := s.deps.Allocator.Alloc(cp)
	if err != nil {
		s.finish(FnCreateCurve, points, false, err.Error(), start)
		return nil
	}
	s.deps.Curves.Add(uintptr(buf), len(cp))

	s.finish(FnCreateCurve, points, true, "", start, "handle", fmt.Sprintf("%p", buf))
	return buf
}

// FreeCurve releases a live buffer. nil is ignored; unknown and already
// freed buffers are logged and ignored. It reports whether memory was freed.
func (s *Service) FreeCurve(buf unsafe.Pointer) bool {
	if buf == nil {
		return false
	}
	start := time.Now()

	s.curveMu.Lock()
	_, ok := s.deps.Curves.Remove(uintptr(buf))
	if ok {
		s.deps.Allocator.Free(buf)
	}
	s.curveMu.Unlock()

	if !ok {
		s.deps.Logger.Warn("ignoring free of unknown curve handle", "handle", fmt.Sprintf("%p", buf))
		s.finish(FnFreeMemory, nil, false, "unknown handle", start)
		return false
	}
	s.finish(FnFreeMemory, nil, true, "", start, "handle", fmt.Sprintf("%p", buf))
	return true
}

// CurvePointCount returns the points held by a live buffer, 0 otherwise.
func (s *Service) CurvePointCount(buf unsafe.Pointer) int {
	count, _ := s.deps.Curves.Get(uintptr(buf))
	return count
}

// CopyCurvePoints returns up to capacity points of a live buffer.
func (s *Service) CopyCurvePoints(buf unsafe.Pointer, capacity int) []core.Point3D {
	if buf == nil || capacity <= 0 {
		return nil
	}

	s.curveMu.RLock()
	defer s.curveMu.RUnlock()

	count, ok := s.deps.Curves.Get(uintptr(buf))
	if !ok {
		return nil
	}
	return s.deps.Allocator.Read(buf, min(count, capacity))
}

// finish logs, counts and journals one call.
func (s *Service) finish(function string, points []core.Point3D, success bool, message string, start time.Time, kv ...any) {
	took := time.Since(start)
	ctx := context.Background()

	attrs := metric.WithAttributes(
		attribute.String("function", function),
		attribute.Bool("success", success),
	)
	s.calls.Add(ctx, 1, attrs)
	s.duration.Record(ctx, float64(took.Microseconds())/1000, attrs)

	if s.deps.Logger.Enabled(ctx, slog.LevelDebug) {
		args := append([]any{"points", len(points), "success", success, "duration", took}, kv...)
		if message != "" {
			args = append(args, "message", message)
		}
		s.deps.Logger.Debug(function, args...)
	}

	if s.deps.Recorder != nil {
		s.deps.Recorder.Record(audit.NewCall(function, points, s.deps.MaxInputPoints, success, message, took))
	}
}
