package nativeabi

/*
#include <stdlib.h>
#include <string.h>
#include "geometry.h"
*/
import "C"

import (
	"fmt"
	"unsafe"

	"github.com/rengatools/geometry/internal/geometry"
	"github.com/rengatools/geometry/internal/widestr"
	"github.com/rengatools/geometry/pkg/core"
)

// CalculateComplexGeometry returns the bounding-box extent of points.
//
//export CalculateComplexGeometry
func CalculateComplexGeometry(points *C.Point3D, pointCount C.int, parameter1, parameter2 C.double) (result C.GeometryResult) {
	defer func() {
		if r := recover(); r != nil {
			result = toCResult(geometry.Failed())
		}
	}()

	var pts []core.Point3D
	if points != nil && pointCount >= 2 {
		pts = readPoints(unsafe.Pointer(points), int(pointCount))
	}
	return toCResult(Config.service.CalculateGeometry(pts, float64(parameter1), float64(parameter2)))
}

// FindPathBetweenPoints writes the path between two ids into path.
//
//export FindPathBetweenPoints
func FindPathBetweenPoints(startPointID, endPointID C.int, path *C.int, pathLength *C.int) (ok C.int) {
	defer recoverTo(&ok)

	if path == nil || pathLength == nil {
		return 0
	}
	ids, found := Config.service.FindPath(int32(startPointID), int32(endPointID), int(*pathLength))
	if !found {
		return 0
	}
	out := unsafe.Slice(path, len(ids))
	for i, id := range ids {
		out[i] = C.int(id)
	}
	*pathLength = C.int(len(ids))
	return 1
}

// CreateComplexCurve copies the control points into a C buffer. The
// caller owns the result and releases it with FreeMemory.
//
//export CreateComplexCurve
func CreateComplexCurve(controlPoints *C.Point3D, pointCount C.int) (handle unsafe.Pointer) {
	defer func() {
		if r := recover(); r != nil {
			handle = nil
		}
	}()

	if controlPoints == nil || pointCount < 2 {
		return nil
	}
	return Config.service.CreateCurve(readPoints(unsafe.Pointer(controlPoints), int(pointCount)))
}

// FreeMemory releases a buffer returned by CreateComplexCurve.
//
//export FreeMemory
func FreeMemory(ptr unsafe.Pointer) {
	defer func() { _ = recover() }()

	if ptr == nil {
		return
	}
	Config.service.FreeCurve(ptr)
}

//export GetCurvePointCount
func GetCurvePointCount(handle unsafe.Pointer) (count C.int) {
	defer recoverTo(&count)

	if handle == nil {
		return 0
	}
	return C.int(Config.service.CurvePointCount(handle))
}

// CopyCurvePoints copies up to capacity points of a curve into out and
// returns how many were copied.
//
//export CopyCurvePoints
func CopyCurvePoints(handle unsafe.Pointer, out *C.Point3D, capacity C.int) (copied C.int) {
	defer recoverTo(&copied)

	if handle == nil || out == nil || capacity <= 0 {
		return 0
	}
	points := Config.service.CopyCurvePoints(handle, int(capacity))
	writePoints(unsafe.Pointer(out), points)
	return C.int(len(points))
}

//export GeometryVersion
func GeometryVersion(output *C.char, outputSize C.size_t) {
	replyToHostCall(Config.version, output, outputSize)
}

// GeometryCommand runs a text command, see RunCommand.
//
//export GeometryCommand
func GeometryCommand(output *C.char, outputSize C.size_t, input *C.char) {
	response := func() (resp string) {
		defer func() {
			if r := recover(); r != nil {
				resp = errorResponse(fmt.Sprintf("panic: %v", r))
			}
		}()
		if input == nil {
			return errorResponse("empty command")
		}
		return RunCommand(C.GoString(input))
	}()
	replyToHostCall(response, output, outputSize)
}

func recoverTo(v *C.int) {
	if r := recover(); r != nil {
		*v = 0
	}
}

func toCResult(r core.GeometryResult) C.GeometryResult {
	var out C.GeometryResult
	if r.Success {
		out.Success = 1
	}
	out.Value1 = C.double(r.Width)
	out.Value2 = C.double(r.Depth)
	out.Value3 = C.double(r.Height)

	units := widestr.Encode(r.Message, len(out.Message), int(unsafe.Sizeof(out.Message[0])))
	for i, u := range units {
		out.Message[i] = C.wchar_t(u)
	}
	return out
}

// replyToHostCall writes response into the host's buffer, truncating it to
// fit and always NUL-terminating.
func replyToHostCall(response string, output *C.char, outputSize C.size_t) {
	if output == nil {
		return
	}
	reply := truncateReply(response, int(outputSize))
	if len(reply) == 0 {
		return
	}
	C.memmove(unsafe.Pointer(output), unsafe.Pointer(&reply[0]), C.size_t(len(reply)))
}
