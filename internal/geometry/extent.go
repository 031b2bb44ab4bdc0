// Package geometry holds the computations behind the native exports. Each
// one is a placeholder for a real algorithm (B-spline/NURBS curves, graph
// pathfinding) and keeps the exact observable behavior hosts depend on.
package geometry

import (
	"errors"

	"github.com/rengatools/geometry/internal/geo"
	"github.com/rengatools/geometry/pkg/core"
)

// Messages written into the result record.
const (
	MsgSuccess      = "Success"
	MsgInvalidInput = "Invalid input: need at least 2 points"
	MsgException    = "Exception in calculation"
)

// ErrInsufficientPoints is returned when fewer than two points are supplied.
var ErrInsufficientPoints = errors.New("need at least 2 points")

// CalculateExtent returns the bounding-box extent of the point set.
func CalculateExtent(points []core.Point3D) (core.Extent, error) {
	if len(points) < 2 {
		return core.Extent{}, ErrInsufficientPoints
	}

	width, depth := geo.EnvelopeXY(points)
	height := geo.Span(points, func(p core.Point3D) float64 { return p.Z })

	return core.Extent{Width: width, Depth: depth, Height: height}, nil
}

// Evaluate runs CalculateExtent and shapes the outcome as a result record.
// parameter1 and parameter2 are reserved; the managed wrapper passes a
// tolerance as parameter1, which nothing consumes yet.
func Evaluate(points []core.Point3D, parameter1, parameter2 float64) core.GeometryResult {
	_, _ = parameter1, parameter2

	ext, err := CalculateExtent(points)
	if err != nil {
		return core.GeometryResult{Message: MsgInvalidInput}
	}
	return core.GeometryResult{
		Success: true,
		Width:   ext.Width,
		Depth:   ext.Depth,
		Height:  ext.Height,
		Message: MsgSuccess,
	}
}

// Failed is the result reported when a calculation panics.
func Failed() core.GeometryResult {
	return core.GeometryResult{Message: MsgException}
}
