package nativeabi

/*
#include <stdlib.h>
#include "geometry.h"
*/
import "C"

import (
	"errors"
	"unsafe"

	"github.com/rengatools/geometry/pkg/core"
)

var errOutOfMemory = errors.New("malloc returned NULL")

// CHeap allocates curve buffers with the C allocator, so the host receives
// plain C memory it can read without Go's involvement.
type CHeap struct{}

func (CHeap) Alloc(points []core.Point3D) (unsafe.Pointer, error) {
	size := C.size_t(len(points)) * C.size_t(C.sizeof_Point3D)
	buf := C.malloc(size)
	if buf == nil {
		return nil, errOutOfMemory
	}
	writePoints(buf, points)
	return buf, nil
}

func (CHeap) Free(buf unsafe.Pointer) {
	C.free(buf)
}

func (CHeap) Read(buf unsafe.Pointer, count int) []core.Point3D {
	return readPoints(buf, count)
}
