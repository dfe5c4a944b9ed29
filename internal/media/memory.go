package media

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"sync"

	"github.com/gofrs/uuid/v5"
)

// Memory is an in-process store for tests and local development.
type Memory struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{blobs: map[string][]byte{}}
}

// Upload keeps the asset in memory under a generated reference.
func (m *Memory) Upload(_ context.Context, r io.Reader, filename string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	ref := id.String() + safeExt(filename)
	m.mu.Lock()
	m.blobs[ref] = data
	m.mu.Unlock()
	return ref, nil
}

// Delete drops the asset; unknown references succeed (idempotent).
func (m *Memory) Delete(_ context.Context, ref string) error {
	m.mu.Lock()
	delete(m.blobs, ref)
	m.mu.Unlock()
	return nil
}

// Open returns stored bytes or fs.ErrNotExist.
func (m *Memory) Open(_ context.Context, ref string) (io.ReadCloser, error) {
	m.mu.Lock()
	data, ok := m.blobs[ref]
	m.mu.Unlock()
	if !ok {
		return nil, fs.ErrNotExist
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Has reports whether a reference is currently stored.
func (m *Memory) Has(ref string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.blobs[ref]
	return ok
}

// Len reports the number of stored assets.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.blobs)
}
