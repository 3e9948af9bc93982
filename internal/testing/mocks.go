package testing

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
)

// MockSource is an in-memory object source.
type MockSource struct {
	mu      sync.Mutex
	objects map[string][]byte
	opened  []string
	err     error
}

// NewMockSource creates an empty mock source
func NewMockSource() *MockSource {
	return &MockSource{objects: make(map[string][]byte)}
}

// Put stores an object.
func (m *MockSource) Put(name string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[name] = data
}

// SetError makes every Open fail with err.
func (m *MockSource) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Opened returns the names requested so far.
func (m *MockSource) Opened() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.opened...)
}

func (m *MockSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.opened = append(m.opened, name)
	if m.err != nil {
		return nil, m.err
	}
	data, ok := m.objects[name]
	if !ok {
		return nil, fmt.Errorf("mock object %s: %w", name, os.ErrNotExist)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *MockSource) Describe(name string) string {
	return "mock://" + name
}
