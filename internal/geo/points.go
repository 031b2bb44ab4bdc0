package geo

import (
	"encoding/json"
	"fmt"

	"github.com/rengatools/geometry/pkg/core"
)

// ParsePoints parses a JSON array of coordinates into a point slice.
// Input format: "[[x1,y1,z1],[x2,y2],...]". A missing Z is read as 0.
func ParsePoints(input string) ([]core.Point3D, error) {
	var coords [][]float64
	if err := json.Unmarshal([]byte(input), &coords); err != nil {
		return nil, fmt.Errorf("failed to parse points JSON: %w", err)
	}

	points := make([]core.Point3D, len(coords))
	for i, coord := range coords {
		switch len(coord) {
		case 2:
			points[i] = core.Point3D{X: coord[0], Y: coord[1]}
		case 3:
			points[i] = core.Point3D{X: coord[0], Y: coord[1], Z: coord[2]}
		default:
			return nil, fmt.Errorf("coordinate %d has %d values, want 2 or 3", i, len(coord))
		}
	}

	return points, nil
}
