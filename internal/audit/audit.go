// Package audit publishes envelope lifecycle events. Events identify an
// envelope only by its commitments; they never carry payload data or keys.
package audit

import (
	"context"
	"sync"
	"time"
)

type Action string

const (
	ActionSealed     Action = "envelope.sealed"
	ActionSealFailed Action = "envelope.seal_failed"
	ActionOpened     Action = "envelope.opened"
	ActionOpenFailed Action = "envelope.open_failed"
)

type Event struct {
	Action         Action    `json:"action"`
	CommitmentHash string    `json:"commitmentHash,omitempty"`
	KeyCommitment  string    `json:"keyCommitment,omitempty"`
	Destination    string    `json:"destination,omitempty"`
	Stage          string    `json:"stage,omitempty"`
	ErrorKind      string    `json:"errorKind,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

type Publisher interface {
	Emit(ctx context.Context, event Event) error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Emit(context.Context, Event) error { return nil }

// Memory records events in order. Used by tests.
type Memory struct {
	mu     sync.Mutex
	events []Event
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Emit(_ context.Context, event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *Memory) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}
