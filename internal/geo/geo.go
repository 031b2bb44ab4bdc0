package geo

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/rengatools/geometry/pkg/core"
)

// Model space is Cartesian. Renga hands over millimetres, node editors hand
// over whatever their scene uses; no projection is ever applied.

// ErrInvalidCoordinates is returned when the coordinates are invalid
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// Point3DFromString parses a "x,y" or "x,y,z" string into a core.Point3D.
func Point3DFromString(coords string) (core.Point3D, error) {
	parts := strings.Split(coords, ",")
	if len(parts) < 2 || len(parts) > 3 {
		return core.Point3D{}, ErrInvalidCoordinates
	}
	var vals [3]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return core.Point3D{}, ErrInvalidCoordinates
		}
		vals[i] = v
	}
	return core.Point3D{X: vals[0], Y: vals[1], Z: vals[2]}, nil
}

// ToPoint converts a core.Point3D into an XYZ simplefeatures point.
// Non-finite coordinates are rejected with ErrInvalidCoordinates.
func ToPoint(p core.Point3D) (geom.Point, error) {
	pt, err := geom.NewPoint(
		geom.Coordinates{
			XY:   geom.XY{X: p.X, Y: p.Y},
			Z:    p.Z,
			Type: geom.DimXYZ,
		},
	)
	if err != nil {
		return geom.Point{}, fmt.Errorf("%w: %v", ErrInvalidCoordinates, err)
	}
	return pt, nil
}

// MultiPoint builds an XYZ MultiPoint from a point set.
func MultiPoint(points []core.Point3D) (geom.MultiPoint, error) {
	pts := make([]geom.Point, len(points))
	for i, p := range points {
		pt, err := ToPoint(p)
		if err != nil {
			return geom.MultiPoint{}, fmt.Errorf("point %d: %w", i, err)
		}
		pts[i] = pt
	}
	return geom.NewMultiPoint(pts), nil
}

// EnvelopeXY returns the planar width (X) and depth (Y) of the point set.
// An empty set has a zero envelope. Sets holding NaN or Inf cannot form a
// geometry and are measured with SpanXY instead.
func EnvelopeXY(points []core.Point3D) (width, depth float64) {
	if len(points) == 0 {
		return 0, 0
	}
	mp, err := MultiPoint(points)
	if err != nil {
		return SpanXY(points)
	}
	env := mp.Envelope()
	if env.IsEmpty() {
		return 0, 0
	}
	return env.Width(), env.Height()
}

// SpanXY measures the X and Y span by scanning. Bounds start at the first
// point and move only on a strict comparison, so NaN never widens a bound
// after the first point and Inf widens it to Inf.
func SpanXY(points []core.Point3D) (width, depth float64) {
	if len(points) == 0 {
		return 0, 0
	}
	return Span(points, func(p core.Point3D) float64 { return p.X }),
		Span(points, func(p core.Point3D) float64 { return p.Y })
}

// Span returns max-min of one coordinate, scanned as SpanXY describes.
func Span(points []core.Point3D, coord func(core.Point3D) float64) float64 {
	if len(points) == 0 {
		return 0
	}
	lo := coord(points[0])
	hi := lo
	for _, p := range points[1:] {
		v := coord(p)
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return hi - lo
}
