package state

import (
	"sync"
	"time"
)

// Role identifies the author of a chat turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system" // local notices such as errors or "history cleared"
)

// Turn is one entry in a chat transcript.
type Turn struct {
	Role Role
	Text string
	At   time.Time
}

// Conversation is a thread-safe chat transcript.
type Conversation struct {
	mu    sync.RWMutex
	turns []Turn
}

// Append adds a turn. A zero at is replaced with the current time.
func (c *Conversation) Append(role Role, text string, at time.Time) {
	if at.IsZero() {
		at = time.Now()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = append(c.turns, Turn{Role: role, Text: text, At: at})
}

// Clear drops every turn.
func (c *Conversation) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = nil
}

// Turns returns a copy of the transcript.
func (c *Conversation) Turns() []Turn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.turns) == 0 {
		return nil
	}
	dup := make([]Turn, len(c.turns))
	copy(dup, c.turns)
	return dup
}

// Len returns the number of turns.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.turns)
}
