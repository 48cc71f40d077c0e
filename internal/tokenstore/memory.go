package tokenstore

import "sync"

// MemoryBackend — Backend в памяти процесса.
type MemoryBackend struct {
	mu     sync.Mutex
	values map[Scope]string
}

// NewMemoryBackend создаёт пустой MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: make(map[Scope]string, 2)}
}

// Load возвращает токен области.
func (m *MemoryBackend) Load(scope Scope) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[scope], nil
}

// Save сохраняет токен в области.
func (m *MemoryBackend) Save(scope Scope, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[scope] = token
	return nil
}

// Delete удаляет токен области.
func (m *MemoryBackend) Delete(scope Scope) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, scope)
	return nil
}
