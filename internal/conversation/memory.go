// Package conversation holds the session's multi-turn chat record.
package conversation

import "sync"

// Turn roles. The system role never appears in memory; it exists only in
// assembled prompts.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one role-tagged message in chronological order. Immutable once
// appended.
type Turn struct {
	Role    string
	Content string
}

// Memory is the append-only record of prior turns for one session. It never
// reorders or deduplicates, and it enforces no size limit; prompt-size
// truncation is the assembler's concern.
type Memory struct {
	mu    sync.Mutex
	turns []Turn
}

// NewMemory creates an empty conversation memory.
func NewMemory() *Memory {
	return &Memory{}
}

// Append records a turn at the end of the conversation.
func (m *Memory) Append(turn Turn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = append(m.turns, turn)
}

// Turns returns a copy of all turns in insertion order.
func (m *Memory) Turns() []Turn {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Turn, len(m.turns))
	copy(out, m.turns)
	return out
}

// Len reports the number of recorded turns.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.turns)
}

// Clear empties the memory. Idempotent.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = nil
}
