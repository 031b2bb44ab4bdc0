// pkg/core/geometry.go
package core

// Point3D is a point in model space. Field order and types mirror the
// sequential C struct handed across the native boundary.
type Point3D struct {
	X float64
	Y float64
	Z float64
}

// Extent is the size of an axis-aligned bounding box.
type Extent struct {
	Width  float64 // X
	Depth  float64 // Y
	Height float64 // Z
}

// GeometryResult is the Go-side form of the fixed-layout result record.
// Success maps to the int flag, Width/Depth/Height to Value1..Value3.
type GeometryResult struct {
	Success bool    `json:"success"`
	Width   float64 `json:"width"`
	Depth   float64 `json:"depth"`
	Height  float64 `json:"height"`
	Message string  `json:"message"`
}

// CurveStats summarizes the curve buffers currently owned by the host.
type CurveStats struct {
	Live   int `json:"live"`
	Points int `json:"points"`
}
