// Package projection builds the local log of a project chat.
// Handles ordering only: entries keep arrival order and are never deduplicated.
// Does not emit events or interact with UI directly.
package projection

import (
	"project-chat/domain"
	"sync"
)

// Timeline is the append-only log of the active project.
// Local sends and remote receives both go through Append, so a message
// echoed back by the transport shows up twice.
type Timeline struct {
	mu       sync.RWMutex
	Project  domain.ProjectID
	messages []domain.Message
	onAppend func(domain.Message)
}

func NewTimeline(project domain.ProjectID) *Timeline {
	return &Timeline{
		Project:  project,
		messages: nil,
	}
}

// OnAppend registers a listener called after each append, outside the lock.
func (t *Timeline) OnAppend(listener func(domain.Message)) *Timeline {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onAppend = listener
	return t
}

func (t *Timeline) Append(message domain.Message) {
	t.mu.Lock()
	t.messages = append(t.messages, message)
	listener := t.onAppend
	t.mu.Unlock()

	if listener != nil {
		listener(message)
	}
}

// Snapshot returns a copy of every message appended so far, in order.
func (t *Timeline) Snapshot() []domain.Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]domain.Message, len(t.messages))
	copy(out, t.messages)
	return out
}

func (t *Timeline) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.messages)
}
