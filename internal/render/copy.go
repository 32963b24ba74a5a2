package render

import (
	"sync"
	"time"

	"github.com/atotto/clipboard"

	apierrors "github.com/diogo/geminichat/internal/errors"
	"github.com/diogo/geminichat/internal/logger"
	"github.com/diogo/geminichat/internal/markup"
	"github.com/diogo/geminichat/internal/models"
)

// ConfirmDuration is how long the confirmation label stays after a copy.
const ConfirmDuration = 2 * time.Second

// CopyAffordance copies code blocks to the clipboard and tracks which ones
// show the confirmation label.
type CopyAffordance struct {
	write    func(string) error
	messages models.Messages
	now      func() time.Time

	mu     sync.Mutex
	copied map[int]time.Time
}

// CopyOption configures a CopyAffordance
type CopyOption func(*CopyAffordance)

// WithClipboardWriter replaces the system clipboard, mainly for tests.
func WithClipboardWriter(write func(string) error) CopyOption {
	return func(c *CopyAffordance) {
		c.write = write
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) CopyOption {
	return func(c *CopyAffordance) {
		c.now = now
	}
}

// NewCopyAffordance creates an affordance using the system clipboard.
func NewCopyAffordance(messages models.Messages, opts ...CopyOption) *CopyAffordance {
	c := &CopyAffordance{
		write:    clipboard.WriteAll,
		messages: messages,
		now:      time.Now,
		copied:   make(map[int]time.Time),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Copy writes the block's unescaped text to the clipboard. On success the
// label of block index switches to the confirmation text for
// ConfirmDuration. A failure is logged and the label stays unchanged.
func (c *CopyAffordance) Copy(index int, block markup.CodeBlock) error {
	if err := c.write(block.PlainText()); err != nil {
		wrapped := apierrors.NewClipboardError(err)
		logger.Named("clipboard").WithField("block", index).WithError(err).Warn("failed to copy code block")
		return wrapped
	}

	c.mu.Lock()
	c.copied[index] = c.now()
	c.mu.Unlock()
	return nil
}

// Label returns the current label of block index.
func (c *CopyAffordance) Label(index int) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	at, ok := c.copied[index]
	if !ok {
		return c.messages.CopyLabel
	}
	if c.now().Sub(at) >= ConfirmDuration {
		delete(c.copied, index)
		return c.messages.CopyLabel
	}
	return c.messages.CopiedLabel
}

// Reset forgets every confirmation, e.g. when the transcript is cleared.
func (c *CopyAffordance) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.copied = make(map[int]time.Time)
}
