package vault

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"vsh/internal/vsh"
)

// MemoryVault is an in-memory implementation of the Vault interface.
// It is useful for tests and for sessions without a config file.
// This implementation is safe for concurrent use.
type MemoryVault struct {
	name  string
	blobs map[string][]byte
	mu    sync.RWMutex
}

// NewMemoryVault creates a new in-memory vault with the given name.
func NewMemoryVault(name string) *MemoryVault {
	return &MemoryVault{
		name:  name,
		blobs: make(map[string][]byte),
	}
}

// Put stores size bytes from r under key.
func (m *MemoryVault) Put(key string, r io.Reader, size int64) error {
	if err := checkKey(key); err != nil {
		return err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read blob: %w", err)
	}
	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = data
	return nil
}

// Get writes the blob stored under key to w.
func (m *MemoryVault) Get(key string, w io.Writer) error {
	m.mu.RLock()
	data, ok := m.blobs[key]
	m.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%s: %w", key, vsh.ErrBlobNotFound)
	}
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write blob: %w", err)
	}
	return nil
}

// Exists reports whether a blob is stored under key.
func (m *MemoryVault) Exists(key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.blobs[key]
	return ok, nil
}

// ValidateSetup always succeeds for in-memory vault.
func (m *MemoryVault) ValidateSetup() error {
	return nil
}

// Compile-time check that MemoryVault implements vsh.Vault interface
var _ vsh.Vault = (*MemoryVault)(nil)
