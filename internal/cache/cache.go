package cache

import (
	"sync"

	"github.com/rengatools/geometry/pkg/core"
)

// CurveCache tracks curve buffers handed to the host, keyed by the buffer
// address. A handle is present from creation until it is freed, which is
// what lets FreeMemory refuse unknown and already-freed pointers.
type CurveCache struct {
	m      sync.Mutex
	Curves map[uintptr]int
	points int
}

func NewCurveCache() *CurveCache {
	return &CurveCache{
		m:      sync.Mutex{},
		Curves: make(map[uintptr]int),
	}
}

// Add records a live handle holding count points. Re-adding a handle
// replaces its count.
func (c *CurveCache) Add(handle uintptr, count int) {
	c.m.Lock()
	defer c.m.Unlock()
	if prev, ok := c.Curves[handle]; ok {
		c.points -= prev
	}
	c.Curves[handle] = count
	c.points += count
}

func (c *CurveCache) Get(handle uintptr) (int, bool) {
	c.m.Lock()
	defer c.m.Unlock()
	count, ok := c.Curves[handle]
	return count, ok
}

// Remove forgets a handle and returns its point count. ok is false when
// the handle was never added or has already been removed.
func (c *CurveCache) Remove(handle uintptr) (count int, ok bool) {
	c.m.Lock()
	defer c.m.Unlock()
	count, ok = c.Curves[handle]
	if !ok {
		return 0, false
	}
	delete(c.Curves, handle)
	c.points -= count
	return count, true
}

func (c *CurveCache) Len() int {
	c.m.Lock()
	defer c.m.Unlock()
	return len(c.Curves)
}

// Stats returns the number of live handles and the points they hold.
func (c *CurveCache) Stats() core.CurveStats {
	c.m.Lock()
	defer c.m.Unlock()
	return core.CurveStats{Live: len(c.Curves), Points: c.points}
}

// Handles returns a snapshot of the live handles.
func (c *CurveCache) Handles() []uintptr {
	c.m.Lock()
	defer c.m.Unlock()
	out := make([]uintptr, 0, len(c.Curves))
	for h := range c.Curves {
		out = append(out, h)
	}
	return out
}
