// Package durable is the per-browser key/value storage that outlives a single
// request, the server-side counterpart of a browser's local storage.
package durable

import (
	"context"
	"sync"
)

const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	// KeySession holds the persisted session blob.
	KeySession = "auth"
)

type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Factory hands out the storage namespace of one browser.
type Factory interface {
	For(browserID string) Storage
}

type Memory struct {
	mu   sync.Mutex
	data map[string]string
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *Memory) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// MemoryFactory keeps one Memory per browser for the life of the process.
type MemoryFactory struct {
	mu       sync.Mutex
	browsers map[string]*Memory
}

func NewMemoryFactory() *MemoryFactory {
	return &MemoryFactory{browsers: make(map[string]*Memory)}
}

func (f *MemoryFactory) For(browserID string) Storage {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.browsers[browserID]
	if !ok {
		m = NewMemory()
		f.browsers[browserID] = m
	}
	return m
}
