package store

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/mirzahilmi/railx-envelope/internal/common/apperr"
)

// MemoryObjects keeps blobs in process memory. Used by tests and by the
// server when no S3 endpoint is configured.
type MemoryObjects struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemoryObjects() *MemoryObjects {
	return &MemoryObjects{blobs: make(map[string][]byte)}
}

func (m *MemoryObjects) Put(_ context.Context, location string, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blobs[location]; ok {
		return apperr.Storage(fmt.Errorf("object %q already exists", location), "envelope blob location already in use")
	}
	m.blobs[location] = bytes.Clone(blob)
	return nil
}

func (m *MemoryObjects) Get(_ context.Context, location string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	blob, ok := m.blobs[location]
	if !ok {
		return nil, apperr.Storage(fmt.Errorf("object %q not found", location), "envelope blob is missing")
	}
	return bytes.Clone(blob), nil
}

// Corrupt flips one byte of a stored blob in place. Only tests use it.
func (m *MemoryObjects) Corrupt(location string, index int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	blob, ok := m.blobs[location]
	if !ok || index < 0 || index >= len(blob) {
		return false
	}
	blob[index] ^= 0xff
	return true
}

func (m *MemoryObjects) Delete(location string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, location)
}

func (m *MemoryObjects) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}

type MemoryRecords struct {
	mu      sync.RWMutex
	records map[string]Record
}

func NewMemoryRecords() *MemoryRecords {
	return &MemoryRecords{records: make(map[string]Record)}
}

func (m *MemoryRecords) Insert(_ context.Context, record Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[record.CommitmentHash]; ok {
		return apperr.New(apperr.KindDuplicateCommitment, "an envelope with this commitment hash already exists")
	}
	m.records[record.CommitmentHash] = record
	return nil
}

func (m *MemoryRecords) FindByCommitment(_ context.Context, commitmentHash string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if record, ok := m.records[commitmentHash]; ok {
		return record, nil
	}
	return Record{}, apperr.NotFound("no envelope for commitment hash")
}
