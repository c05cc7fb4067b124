// Package memory provides an in-memory leave.Store.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/marinalog/ledger/leave"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory keeps the document as encoded JSON so that callers can never share
// slices or maps with the stored copy.
type Memory struct {
	mu    sync.RWMutex
	data  []byte
	saves int
}

func New() *Memory {
	return &Memory{}
}

// NewWithDocument returns a store that already holds doc.
func NewWithDocument(doc leave.Document) (*Memory, error) {
	m := New()
	if err := m.Save(context.Background(), doc); err != nil {
		return nil, err
	}
	m.saves = 0
	return m, nil
}

// NewFromJSON returns a store holding a raw document, as older versions
// wrote it.
func NewFromJSON(raw []byte) *Memory {
	return &Memory{data: append([]byte(nil), raw...)}
}

func (m *Memory) Load(_ context.Context) (leave.Document, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.data == nil {
		return leave.Document{}, false, nil
	}
	var doc leave.Document
	if err := json.Unmarshal(m.data, &doc); err != nil {
		return leave.Document{}, false, fmt.Errorf("decode document: %w", err)
	}
	return doc, true, nil
}

func (m *Memory) Save(_ context.Context, doc leave.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = data
	m.saves++
	return nil
}

// Saves reports how many times Save succeeded.
func (m *Memory) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}

// Raw returns the stored JSON.
func (m *Memory) Raw() []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]byte(nil), m.data...)
}

var _ leave.Store = (*Memory)(nil)
