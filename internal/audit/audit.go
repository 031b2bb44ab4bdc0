// Package audit journals the native calls the host makes into the library.
// Recording is best effort: a slow or broken backend never delays the host.
package audit

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rengatools/geometry/pkg/core"
	"gorm.io/datatypes"
)

// Call is one journaled native call.
type Call struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	CreatedAt  time.Time      `gorm:"index" json:"createdAt"`
	Function   string         `gorm:"size:64;index" json:"function"`
	PointCount int            `json:"pointCount"`
	Success    bool           `json:"success"`
	Message    string         `gorm:"size:256" json:"message"`
	DurationUS int64          `json:"durationUs"`
	Input      datatypes.JSON `json:"input,omitempty"`
}

func (Call) TableName() string { return "native_calls" }

// Backend is the interface all journal implementations must satisfy
type Backend interface {
	Init() error
	Close() error
	RecordCall(c *Call) error
}

// Reader is implemented by backends that can return what they recorded.
type Reader interface {
	// Recent returns up to n calls, newest first.
	Recent(n int) ([]Call, error)
}

// ErrNotReadable is returned by Recent for write-only backends.
var ErrNotReadable = errors.New("audit backend cannot be read back")

// Recent returns up to n calls recorded by b, newest first. Backends that
// buffer writes are flushed first so the result includes queued calls.
func Recent(b Backend, n int) ([]Call, error) {
	r, ok := b.(Reader)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrNotReadable, b)
	}
	if f, ok := b.(interface{ Flush() error }); ok {
		if err := f.Flush(); err != nil {
			return nil, err
		}
	}
	return r.Recent(n)
}

// Start initializes b. A backend that fails to start is closed so it does
// not keep connections or files open.
func Start(b Backend) error {
	if err := b.Init(); err != nil {
		return errors.Join(err, b.Close())
	}
	return nil
}

// NewCall builds a journal entry. At most maxPoints input points are kept
// as a JSON snapshot; maxPoints <= 0 keeps none.
func NewCall(function string, points []core.Point3D, maxPoints int, success bool, message string, took time.Duration) *Call {
	c := &Call{
		CreatedAt:  time.Now().UTC(),
		Function:   function,
		PointCount: len(points),
		Success:    success,
		Message:    message,
		DurationUS: took.Microseconds(),
	}
	if maxPoints > 0 && len(points) > 0 {
		c.Input = snapshot(points, maxPoints)
	}
	return c
}

func snapshot(points []core.Point3D, maxPoints int) datatypes.JSON {
	if len(points) > maxPoints {
		points = points[:maxPoints]
	}
	coords := make([][3]float64, len(points))
	for i, p := range points {
		coords[i] = [3]float64{p.X, p.Y, p.Z}
	}
	b, err := json.Marshal(coords)
	if err != nil {
		// NaN and Inf are not representable in JSON
		return nil
	}
	return datatypes.JSON(b)
}

// Noop discards every call.
type Noop struct{}

func (Noop) Init() error            { return nil }
func (Noop) Close() error           { return nil }
func (Noop) RecordCall(*Call) error { return nil }
