package audit

import "sync"

// Memory keeps the most recent calls in a fixed-size ring.
type Memory struct {
	mu     sync.Mutex
	ring   []Call
	next   int
	size   int
	nextID uint
}

// NewMemory creates a ring holding up to capacity calls (minimum 1).
func NewMemory(capacity int) *Memory {
	if capacity < 1 {
		capacity = 1
	}
	return &Memory{ring: make([]Call, capacity)}
}

func (m *Memory) Init() error  { return nil }
func (m *Memory) Close() error { return nil }

// RecordCall stores a copy of c and assigns it an ID.
func (m *Memory) RecordCall(c *Call) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	c.ID = m.nextID
	m.ring[m.next] = *c
	m.next = (m.next + 1) % len(m.ring)
	if m.size < len(m.ring) {
		m.size++
	}
	return nil
}

// Len returns the number of calls currently held.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.size
}

func (m *Memory) Recent(n int) ([]Call, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n > m.size {
		n = m.size
	}
	if n <= 0 {
		return []Call{}, nil
	}
	out := make([]Call, 0, n)
	idx := m.next
	for i := 0; i < n; i++ {
		idx = (idx - 1 + len(m.ring)) % len(m.ring)
		out = append(out, m.ring[idx])
	}
	return out, nil
}
