package persistence

import (
	"context"
	"sync"

	"voteledger/pkg/platform/sentinel"
)

// Memory keeps the encoded snapshot in process. Used by tests and dry runs.
type Memory struct {
	mu    sync.RWMutex
	raw   []byte
	saves int
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(_ context.Context) (Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.raw == nil {
		return Snapshot{}, sentinel.ErrNotFound
	}
	return Decode(m.raw)
}

func (m *Memory) Save(_ context.Context, snap Snapshot) error {
	raw, err := Encode(snap)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.raw = raw
	m.saves++
	return nil
}

// Saves reports how many snapshots were written.
func (m *Memory) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}

// SetRaw replaces the stored bytes, letting tests plant corrupt documents.
func (m *Memory) SetRaw(raw []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.raw = raw
}
