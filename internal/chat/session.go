// Package chat implements the send protocol that ties the conversation
// history to the generation endpoint.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	apierrors "github.com/diogo/geminichat/internal/errors"
	"github.com/diogo/geminichat/internal/history"
	"github.com/diogo/geminichat/internal/logger"
	"github.com/diogo/geminichat/internal/markup"
	"github.com/diogo/geminichat/internal/models"
)

var (
	// ErrEmptyPrompt is returned for prompts that are blank after trimming.
	ErrEmptyPrompt = errors.New("prompt is empty")
	// ErrSendInProgress is returned when a send overlaps another on the
	// same session.
	ErrSendInProgress = errors.New("a message is already being sent")
)

// Generator produces a reply for prompt given the prior turns.
type Generator interface {
	Generate(ctx context.Context, model, prompt string, prior []models.Turn) (string, error)
}

// Reply is what a send displays.
type Reply struct {
	Text     string
	Fragment markup.Fragment
	Failed   bool
}

// Session owns one conversation and sends turns through a Generator.
type Session struct {
	gen      Generator
	history  *history.Conversation
	messages models.Messages
	opts     markup.Options

	mu    sync.RWMutex
	model string

	sending atomic.Bool
}

// SessionOption is a function that configures the session
type SessionOption func(*Session)

// WithMessages sets the localized strings, including the apology.
func WithMessages(m models.Messages) SessionOption {
	return func(s *Session) {
		s.messages = m
	}
}

// WithRenderOptions sets how replies are rendered.
func WithRenderOptions(opts markup.Options) SessionOption {
	return func(s *Session) {
		s.opts = opts
	}
}

// WithHistory uses an existing conversation instead of a fresh one.
func WithHistory(c *history.Conversation) SessionOption {
	return func(s *Session) {
		s.history = c
	}
}

// NewSession creates a session for model with an empty history.
func NewSession(gen Generator, model string, opts ...SessionOption) *Session {
	s := &Session{
		gen:      gen,
		model:    model,
		messages: models.MessagesFor(models.LocaleBengali),
		opts:     markup.DefaultOptions(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.history == nil {
		s.history = history.New()
	}
	return s
}

// Model returns the model used for the next send.
func (s *Session) Model() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model
}

// SetModel changes the model. The history is kept.
func (s *Session) SetModel(model string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model = model
}

// History returns the conversation.
func (s *Session) History() *history.Conversation {
	return s.history
}

// Busy reports whether a send is in flight.
func (s *Session) Busy() bool {
	return s.sending.Load()
}

// Reset clears the history at a session boundary.
func (s *Session) Reset() {
	s.history.Reset()
}

// Send runs one exchange. The history sent as context is taken before the
// user turn is appended, so the prompt is never duplicated in it. The reply
// turn is appended only on success. On failure the returned Reply carries the
// apology and the error is the wrapped generation failure.
func (s *Session) Send(ctx context.Context, prompt string) (Reply, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return Reply{}, ErrEmptyPrompt
	}
	if !s.sending.CompareAndSwap(false, true) {
		return Reply{}, ErrSendInProgress
	}
	defer s.sending.Store(false)

	model := s.Model()
	log := logger.Named("chat").WithField("session", s.history.ID()).WithField("model", model)

	prior := s.history.Snapshot()
	s.history.Append(models.UserTurn(prompt))

	text, err := s.gen.Generate(ctx, model, prompt, prior)
	if err != nil {
		if !errors.Is(err, apierrors.ErrGenerationFailed) {
			err = apierrors.NewGenerationError(model, err)
		}
		log.WithError(err).Error("generation failed")
		return Reply{
			Text:     s.messages.Apology,
			Fragment: markup.Plain(s.messages.Apology),
			Failed:   true,
		}, err
	}

	s.history.Append(models.ModelTurn(text))
	log.WithField("turns", s.history.Len()).Debug("reply received")

	return Reply{
		Text:     text,
		Fragment: markup.RenderWithOptions(text, s.opts),
	}, nil
}
