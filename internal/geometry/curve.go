package geometry

import "github.com/rengatools/geometry/pkg/core"

// MinControlPoints is the fewest control points a curve accepts.
const MinControlPoints = 2

// ControlPoints validates and copies a curve's control points. The returned
// slice never aliases the input. No fitting is performed.
func ControlPoints(points []core.Point3D) ([]core.Point3D, error) {
	if len(points) < MinControlPoints {
		return nil, ErrInsufficientPoints
	}
	out := make([]core.Point3D, len(points))
	copy(out, points)
	return out, nil
}
