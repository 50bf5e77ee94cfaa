package credstore

import "sync"

// Memory is an in-process Store for tests and single-run tools.
type Memory struct {
	mu    sync.Mutex
	token string
	set   bool
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Save(token string) {
	m.mu.Lock()
	m.token = token
	m.set = true
	m.mu.Unlock()
}

func (m *Memory) Read() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, m.set
}

func (m *Memory) Clear() {
	m.mu.Lock()
	m.token = ""
	m.set = false
	m.mu.Unlock()
}
