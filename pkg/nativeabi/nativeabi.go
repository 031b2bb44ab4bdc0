// Package nativeabi is the flat C surface of the library. Exported
// functions convert between C and Go values and forward to a Service;
// everything else lives in pure-Go packages.
package nativeabi

import (
	"unsafe"

	"github.com/rengatools/geometry/internal/dispatcher"
	"github.com/rengatools/geometry/pkg/core"
)

// Service performs the work behind the exports.
type Service interface {
	CalculateGeometry(points []core.Point3D, parameter1, parameter2 float64) core.GeometryResult
	FindPath(startID, endID int32, capacity int) ([]int32, bool)
	CreateCurve(points []core.Point3D) unsafe.Pointer
	FreeCurve(handle unsafe.Pointer) bool
	CurvePointCount(handle unsafe.Pointer) int
	CopyCurvePoints(handle unsafe.Pointer, capacity int) []core.Point3D
}

// Config is the state shared by all exports. It is filled once while the
// library loads, before the host can call in.
var Config configStruct = configStruct{}

func init() {
	Config.Init()
}

type configStruct struct {
	// version is returned by GeometryVersion
	version string

	service    Service
	dispatcher *dispatcher.Dispatcher
}

// Init resets the config to its defaults.
func (c *configStruct) Init() {
	c.version = "No version set"
	c.service = nil
	c.dispatcher = nil
}

// SetVersion sets the string returned by GeometryVersion.
func SetVersion(version string) {
	Config.version = version
}

// SetService sets the service the exports forward to.
func SetService(s Service) {
	Config.service = s
}

// SetDispatcher sets the dispatcher serving GeometryCommand.
func SetDispatcher(d *dispatcher.Dispatcher) {
	Config.dispatcher = d
}

// GetDispatcher returns the configured dispatcher, or nil if not set
func GetDispatcher() *dispatcher.Dispatcher {
	return Config.dispatcher
}
