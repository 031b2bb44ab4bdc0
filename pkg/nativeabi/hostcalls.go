package nativeabi

/*
#include <stdlib.h>
#include <string.h>
#include "geometry.h"
*/
import "C"

import (
	"unsafe"

	"github.com/rengatools/geometry/internal/widestr"
	"github.com/rengatools/geometry/pkg/core"
)

// The helpers below drive the exports the way a C host does: arguments and
// output buffers live in C memory and are read back after the call. Go test
// files cannot use cgo, so the package tests go through these.

// hostPoints copies points into a C array. A nil slice yields NULL.
func hostPoints(points []core.Point3D) (*C.Point3D, func()) {
	if points == nil {
		return nil, func() {}
	}
	buf := C.malloc(C.size_t(max(len(points), 1)) * C.size_t(C.sizeof_Point3D))
	writePoints(buf, points)
	return (*C.Point3D)(buf), func() { C.free(buf) }
}

// hostBytes returns a C buffer of size bytes filled with fill.
func hostBytes(size int, fill byte) (*C.char, func()) {
	buf := C.malloc(C.size_t(max(size, 1)))
	C.memset(buf, C.int(fill), C.size_t(max(size, 1)))
	return (*C.char)(buf), func() { C.free(buf) }
}

func fromCResult(r C.GeometryResult) core.GeometryResult {
	units := make([]uint32, len(r.Message))
	for i := range r.Message {
		units[i] = uint32(r.Message[i])
	}
	return core.GeometryResult{
		Success: r.Success != 0,
		Width:   float64(r.Value1),
		Depth:   float64(r.Value2),
		Height:  float64(r.Value3),
		Message: widestr.Decode(units, int(unsafe.Sizeof(r.Message[0]))),
	}
}

func hostCalculate(points []core.Point3D, count int, parameter1, parameter2 float64) core.GeometryResult {
	p, free := hostPoints(points)
	defer free()
	return fromCResult(CalculateComplexGeometry(p, C.int(count), C.double(parameter1), C.double(parameter2)))
}

// hostFindPath calls FindPathBetweenPoints with path holding the initial
// buffer contents and length the declared capacity. It returns the status,
// the buffer and the length as the host sees them afterwards.
func hostFindPath(startID, endID int32, path []int32, length int32, nullPath, nullLength bool) (int, []int32, int32) {
	cPath := (*C.int)(C.malloc(C.size_t(max(len(path), 1)) * C.size_t(unsafe.Sizeof(C.int(0)))))
	defer C.free(unsafe.Pointer(cPath))
	buf := unsafe.Slice(cPath, max(len(path), 1))
	for i, id := range path {
		buf[i] = C.int(id)
	}
	cLen := (*C.int)(C.malloc(C.size_t(unsafe.Sizeof(C.int(0)))))
	defer C.free(unsafe.Pointer(cLen))
	*cLen = C.int(length)

	argPath, argLen := cPath, cLen
	if nullPath {
		argPath = nil
	}
	if nullLength {
		argLen = nil
	}
	ok := FindPathBetweenPoints(C.int(startID), C.int(endID), argPath, argLen)

	out := make([]int32, len(path))
	for i := range out {
		out[i] = int32(buf[i])
	}
	return int(ok), out, int32(*cLen)
}

func hostCreateCurve(points []core.Point3D, count int) unsafe.Pointer {
	p, free := hostPoints(points)
	defer free()
	return CreateComplexCurve(p, C.int(count))
}

func hostFree(handle unsafe.Pointer) {
	FreeMemory(handle)
}

func hostPointCount(handle unsafe.Pointer) int {
	return int(GetCurvePointCount(handle))
}

// hostCopyPoints copies a curve into a C array of capacity points and
// returns what was written.
func hostCopyPoints(handle unsafe.Pointer, capacity int, nullOut bool) []core.Point3D {
	out := C.malloc(C.size_t(max(capacity, 1)) * C.size_t(C.sizeof_Point3D))
	defer C.free(out)
	arg := (*C.Point3D)(out)
	if nullOut {
		arg = nil
	}
	n := int(CopyCurvePoints(handle, arg, C.int(capacity)))
	return readPoints(out, n)
}

// hostVersion returns the whole size-byte buffer after GeometryVersion.
func hostVersion(size int) []byte {
	out, free := hostBytes(size, 0xff)
	defer free()
	GeometryVersion(out, C.size_t(size))
	return C.GoBytes(unsafe.Pointer(out), C.int(size))
}

// hostCommand returns the whole size-byte buffer after GeometryCommand.
func hostCommand(input string, size int, nullInput bool) []byte {
	out, free := hostBytes(size, 0xff)
	defer free()

	var in *C.char
	if !nullInput {
		in = C.CString(input)
		defer C.free(unsafe.Pointer(in))
	}
	GeometryCommand(out, C.size_t(size), in)
	return C.GoBytes(unsafe.Pointer(out), C.int(size))
}
