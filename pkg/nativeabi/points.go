package nativeabi

import (
	"unsafe"

	"github.com/rengatools/geometry/pkg/core"
)

// readPoints copies n points out of foreign memory. core.Point3D has the
// same layout as the C Point3D, so the array can be viewed directly.
func readPoints(p unsafe.Pointer, n int) []core.Point3D {
	if p == nil || n <= 0 {
		return nil
	}
	src := unsafe.Slice((*core.Point3D)(p), n)
	out := make([]core.Point3D, n)
	copy(out, src)
	return out
}

// writePoints copies points into foreign memory with room for them.
func writePoints(p unsafe.Pointer, points []core.Point3D) {
	if p == nil || len(points) == 0 {
		return
	}
	copy(unsafe.Slice((*core.Point3D)(p), len(points)), points)
}
