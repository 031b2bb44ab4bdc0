package geometry

import "errors"

// MinPathCapacity is the smallest output buffer FindPath can fill.
const MinPathCapacity = 2

// ErrPathBufferTooSmall is returned when the caller's buffer cannot hold a path.
var ErrPathBufferTooSmall = errors.New("path buffer holds fewer than 2 ids")

// FindPath returns the route between two point ids. Until a real search
// lands the route is always the two endpoints, including when start == end.
func FindPath(start, end int32, capacity int) ([]int32, error) {
	if capacity < MinPathCapacity {
		return nil, ErrPathBufferTooSmall
	}
	return []int32{start, end}, nil
}
