package nativeabi

import (
	"bytes"
	"strings"
	"testing"
	"unsafe"

	"github.com/rengatools/geometry/internal/cache"
	"github.com/rengatools/geometry/internal/dispatcher"
	"github.com/rengatools/geometry/internal/geometry"
	"github.com/rengatools/geometry/internal/handlers"
	"github.com/rengatools/geometry/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var box = []core.Point3D{
	{X: 0, Y: 0, Z: 0},
	{X: 100, Y: 50, Z: 25},
	{X: -20, Y: 10, Z: 5},
}

// useService installs a service backed by the C heap for one test.
func useService(t *testing.T) *handlers.Service {
	t.Helper()
	svc, err := handlers.NewService(handlers.Dependencies{
		Curves:    cache.NewCurveCache(),
		Allocator: CHeap{},
		Version:   "1.2.3",
		BuildDate: "2026-10-15",
	})
	require.NoError(t, err)
	SetService(svc)
	t.Cleanup(Config.Init)
	return svc
}

// stubService returns a fixed result, or panics when panicking is set.
type stubService struct {
	Service
	result    core.GeometryResult
	panicking bool
}

func (s stubService) CalculateGeometry([]core.Point3D, float64, float64) core.GeometryResult {
	if s.panicking {
		panic("boom")
	}
	return s.result
}

func (s stubService) CreateCurve([]core.Point3D) unsafe.Pointer {
	panic("boom")
}

func TestExport_CalculateGeometry(t *testing.T) {
	useService(t)

	res := hostCalculate(box, len(box), 0.5, 7)
	assert.Equal(t, core.GeometryResult{Success: true, Width: 120, Depth: 50, Height: 25, Message: geometry.MsgSuccess}, res)
}

func TestExport_CalculateGeometry_InvalidInput(t *testing.T) {
	useService(t)

	tests := []struct {
		name   string
		points []core.Point3D
		count  int
	}{
		{"null points", nil, 3},
		{"single point", box[:1], 1},
		{"zero count", box, 0},
		{"negative count", box, -4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := hostCalculate(tt.points, tt.count, 0, 0)
			assert.Equal(t, core.GeometryResult{Message: geometry.MsgInvalidInput}, res)
		})
	}
}

func TestExport_CalculateGeometry_Panics(t *testing.T) {
	t.Cleanup(Config.Init)

	SetService(stubService{panicking: true})
	assert.Equal(t, core.GeometryResult{Message: geometry.MsgException}, hostCalculate(box, 3, 0, 0))

	Config.Init()
	assert.Equal(t, core.GeometryResult{Message: geometry.MsgException}, hostCalculate(box, 3, 0, 0))
}

func TestExport_CalculateGeometry_MessageEncoding(t *testing.T) {
	t.Cleanup(Config.Init)

	SetService(stubService{result: core.GeometryResult{Message: "Ошибка: точка ∞"}})
	assert.Equal(t, "Ошибка: точка ∞", hostCalculate(box, 3, 0, 0).Message)

	SetService(stubService{result: core.GeometryResult{Message: strings.Repeat("m", 300)}})
	assert.Equal(t, strings.Repeat("m", 255), hostCalculate(box, 3, 0, 0).Message)
}

func TestExport_FindPath(t *testing.T) {
	useService(t)

	ok, path, n := hostFindPath(3, 9, []int32{-1, -1, -1, -1}, 4, false, false)
	assert.Equal(t, 1, ok)
	assert.Equal(t, []int32{3, 9, -1, -1}, path)
	assert.Equal(t, int32(2), n)

	ok, path, n = hostFindPath(6, 6, []int32{0, 0}, 2, false, false)
	assert.Equal(t, 1, ok)
	assert.Equal(t, []int32{6, 6}, path)
	assert.Equal(t, int32(2), n)
}

func TestExport_FindPath_ShortBufferUntouched(t *testing.T) {
	useService(t)

	for _, length := range []int32{1, 0, -3} {
		ok, path, n := hostFindPath(3, 9, []int32{-1, -1}, length, false, false)
		assert.Equal(t, 0, ok)
		assert.Equal(t, []int32{-1, -1}, path)
		assert.Equal(t, length, n)
	}
}

func TestExport_FindPath_NullArguments(t *testing.T) {
	useService(t)

	ok, _, n := hostFindPath(3, 9, []int32{-1, -1}, 2, true, false)
	assert.Equal(t, 0, ok)
	assert.Equal(t, int32(2), n)

	ok, path, _ := hostFindPath(3, 9, []int32{-1, -1}, 2, false, true)
	assert.Equal(t, 0, ok)
	assert.Equal(t, []int32{-1, -1}, path)
}

func TestExport_CurveLifecycle(t *testing.T) {
	svc := useService(t)

	h := hostCreateCurve(box, len(box))
	require.NotNil(t, h)
	assert.Equal(t, 1, svc.Curves().Len())
	assert.Equal(t, 3, hostPointCount(h))
	assert.Equal(t, box, hostCopyPoints(h, 10, false))
	assert.Equal(t, box[:2], hostCopyPoints(h, 2, false))
	assert.Empty(t, hostCopyPoints(h, 3, true))
	assert.Empty(t, hostCopyPoints(h, 0, false))

	hostFree(h)
	assert.Zero(t, svc.Curves().Len())
	assert.Zero(t, hostPointCount(h))
	assert.Empty(t, hostCopyPoints(h, 3, false))

	// second free of the same buffer is ignored
	hostFree(h)
	hostFree(nil)
	assert.Zero(t, svc.Curves().Len())
}

func TestExport_CreateCurve_Rejects(t *testing.T) {
	svc := useService(t)

	assert.Nil(t, hostCreateCurve(nil, 3))
	assert.Nil(t, hostCreateCurve(box[:1], 1))
	assert.Nil(t, hostCreateCurve(box, 0))
	assert.Zero(t, svc.Curves().Len())
	assert.Zero(t, hostPointCount(nil))
}

func TestExport_CreateCurve_Panics(t *testing.T) {
	t.Cleanup(Config.Init)
	SetService(stubService{})
	assert.Nil(t, hostCreateCurve(box, 3))
}

func TestExport_FreeUnknownPointer(t *testing.T) {
	svc := useService(t)

	h := hostCreateCurve(box, 3)
	require.NotNil(t, h)
	hostFree(unsafe.Pointer(new(core.Point3D)))
	assert.Equal(t, 1, svc.Curves().Len())

	hostFree(h)
	assert.Zero(t, svc.Curves().Len())
}

func TestExport_CurveCycles(t *testing.T) {
	svc := useService(t)

	for i := 0; i < 1000; i++ {
		h := hostCreateCurve(box, len(box))
		require.NotNil(t, h)
		require.Equal(t, box, hostCopyPoints(h, len(box), false))
		hostFree(h)
		hostFree(h)
	}
	assert.Zero(t, svc.Curves().Len())
	assert.Equal(t, core.CurveStats{}, svc.Curves().Stats())
}

func TestExport_GeometryVersion(t *testing.T) {
	t.Cleanup(Config.Init)

	assert.True(t, bytes.HasPrefix(hostVersion(32), []byte("No version set\x00")))

	SetVersion("1.2.3")
	assert.True(t, bytes.HasPrefix(hostVersion(32), []byte("1.2.3\x00")))
	assert.Equal(t, []byte("1.2\x00"), hostVersion(4))
	assert.Equal(t, []byte("\x00"), hostVersion(1))
}

func TestExport_GeometryCommand(t *testing.T) {
	svc := useService(t)

	out := hostCommand(":VERSION:", 64, false)
	assert.True(t, bytes.HasPrefix(out, []byte(`["error", "no handler registered"]`+"\x00")))

	d, err := dispatcher.New(nopLogger{})
	require.NoError(t, err)
	t.Cleanup(d.Close)
	svc.RegisterCommands(d)
	SetDispatcher(d)

	out = hostCommand(":PATH:|1|2", 64, false)
	assert.True(t, bytes.HasPrefix(out, []byte(`["ok", [1,2]]`+"\x00")))

	out = hostCommand(":VERSION:", 64, false)
	assert.True(t, bytes.HasPrefix(out, []byte(`["ok", ["1.2.3","2026-10-15"]]`+"\x00")))

	out = hostCommand("", 64, true)
	assert.True(t, bytes.HasPrefix(out, []byte(`["error", "empty command"]`+"\x00")))

	assert.Equal(t, []byte(`["ok"`+"\x00"), hostCommand(":PATH:|1|2", 6, false))
}

func TestCHeap(t *testing.T) {
	var heap CHeap

	buf, err := heap.Alloc(box)
	require.NoError(t, err)
	require.NotNil(t, buf)
	defer heap.Free(buf)

	assert.Equal(t, box, heap.Read(buf, 3))
	assert.Equal(t, box[:1], heap.Read(buf, 1))
}
