// Package history holds the in-memory conversation log of a chat session.
package history

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/diogo/geminichat/internal/models"
)

// Conversation is the ordered, append-only log of turns for one session.
// Insertion order is chronological order. It is never persisted.
type Conversation struct {
	id        string
	createdAt time.Time

	mu    sync.RWMutex
	turns []models.Turn
}

// New creates an empty conversation with a fresh session ID.
func New() *Conversation {
	return &Conversation{
		id:        uuid.NewString(),
		createdAt: time.Now(),
	}
}

// ID returns the session identifier.
func (c *Conversation) ID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.id
}

// Append adds turn at the end. It always succeeds.
func (c *Conversation) Append(turn models.Turn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = append(c.turns, turn)
}

// Snapshot returns a copy of the turns; changing it never affects c.
func (c *Conversation) Snapshot() []models.Turn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Len returns the number of turns.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.turns)
}

// Reset clears the log and starts a new session ID.
func (c *Conversation) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = nil
	c.id = uuid.NewString()
	c.createdAt = time.Now()
}

// Tail returns the newest n turns of turns, or all of them when n <= 0.
// The result shares no memory with turns.
func Tail(turns []models.Turn, n int) []models.Turn {
	if n > 0 && len(turns) > n {
		turns = turns[len(turns)-n:]
	}
	out := make([]models.Turn, len(turns))
	copy(out, turns)
	return out
}
