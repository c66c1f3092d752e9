// Package session tracks the active federated session. The record is written
// on sign-in and deleted on logout; it never holds token material.
package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNoSession is returned when no active session exists
var ErrNoSession = errors.New("no active session")

// Record describes the active federated session
type Record struct {
	SubjectID string    `json:"subject_id"`
	ClientID  string    `json:"client_id"`
	IssuedAt  time.Time `json:"issued_at"`
}

// Store holds at most one active federated session
type Store interface {
	Put(ctx context.Context, record Record) error
	Get(ctx context.Context) (Record, error)
	Delete(ctx context.Context) error
}

// MemoryStore is the in-process fallback used when no Redis address is
// configured
type MemoryStore struct {
	mu     sync.RWMutex
	record *Record
}

// NewMemoryStore creates an empty in-memory session store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Put stores the active session record
func (s *MemoryStore) Put(ctx context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = &record
	return nil
}

// Get returns the active session record
func (s *MemoryStore) Get(ctx context.Context) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.record == nil {
		return Record{}, ErrNoSession
	}
	return *s.record, nil
}

// Delete removes the active session record
func (s *MemoryStore) Delete(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = nil
	return nil
}
