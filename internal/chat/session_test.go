package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/diogo/geminichat/internal/errors"
	"github.com/diogo/geminichat/internal/markup"
	"github.com/diogo/geminichat/internal/models"
)

type call struct {
	model  string
	prompt string
	prior  []models.Turn
}

type fakeGenerator struct {
	mu      sync.Mutex
	replies []string
	err     error
	calls   []call
	block   chan struct{}
}

func (f *fakeGenerator) Generate(ctx context.Context, model, prompt string, prior []models.Turn) (string, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{model: model, prompt: prompt, prior: prior})
	if f.err != nil {
		return "", f.err
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]
	return reply, nil
}

func TestSend_Success(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"**hi** there", "second reply"}}
	s := NewSession(gen, "gemini-2.5-flash")

	reply, err := s.Send(context.Background(), "  hello  ")
	require.NoError(t, err)
	assert.False(t, reply.Failed)
	assert.Equal(t, "**hi** there", reply.Text)
	assert.Equal(t, []markup.Node{
		markup.Bold{Children: []markup.Node{markup.PlainText{Content: "hi"}}},
		markup.PlainText{Content: " there"},
	}, reply.Fragment.Body())

	_, err = s.Send(context.Background(), "again")
	require.NoError(t, err)

	require.Len(t, gen.calls, 2)
	assert.Empty(t, gen.calls[0].prior, "first send has no prior context")
	assert.Equal(t, "hello", gen.calls[0].prompt)
	assert.Equal(t, []models.Turn{
		models.UserTurn("hello"),
		models.ModelTurn("**hi** there"),
	}, gen.calls[1].prior, "prior context excludes the current prompt")

	assert.Equal(t, []models.Turn{
		models.UserTurn("hello"),
		models.ModelTurn("**hi** there"),
		models.UserTurn("again"),
		models.ModelTurn("second reply"),
	}, s.History().Snapshot(), "model turns are stored raw")
}

func TestSend_FailureKeepsOnlyUserTurn(t *testing.T) {
	cause := apierrors.NewGenerationError("gemini-2.5-pro", apierrors.NewAPIError(500, "/generate/gemini-2.5-pro", "boom"))
	gen := &fakeGenerator{err: cause}
	s := NewSession(gen, "gemini-2.5-pro")

	before := s.History().Len()
	reply, err := s.Send(context.Background(), "question")

	require.Error(t, err)
	assert.ErrorIs(t, err, apierrors.ErrGenerationFailed)
	assert.True(t, reply.Failed)
	assert.Equal(t, "দুঃখিত, কোনো ত্রুটি হয়েছে।", reply.Text)
	assert.Equal(t, "দুঃখিত, কোনো ত্রুটি হয়েছে।", reply.Fragment.Text())
	assert.Equal(t, before+1, s.History().Len())
	assert.Equal(t, models.UserTurn("question"), s.History().Snapshot()[0])
}

func TestSend_WrapsPlainErrors(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("dial tcp: refused")}
	s := NewSession(gen, "gemini-2.5-flash", WithMessages(models.MessagesFor(models.LocaleEnglish)))

	reply, err := s.Send(context.Background(), "q")
	assert.ErrorIs(t, err, apierrors.ErrGenerationFailed)
	assert.Equal(t, "Sorry, something went wrong.", reply.Text)
}

func TestSend_EmptyPrompt(t *testing.T) {
	gen := &fakeGenerator{}
	s := NewSession(gen, "gemini-2.5-flash")

	_, err := s.Send(context.Background(), "   \n ")
	assert.ErrorIs(t, err, ErrEmptyPrompt)
	assert.Equal(t, 0, s.History().Len())
	assert.Empty(t, gen.calls)
}

func TestSend_RejectsOverlap(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"first"}, block: make(chan struct{})}
	s := NewSession(gen, "gemini-2.5-flash")

	done := make(chan error, 1)
	go func() {
		_, err := s.Send(context.Background(), "one")
		done <- err
	}()

	require.Eventually(t, s.Busy, time.Second, time.Millisecond)

	_, err := s.Send(context.Background(), "two")
	assert.ErrorIs(t, err, ErrSendInProgress)

	close(gen.block)
	require.NoError(t, <-done)
	assert.False(t, s.Busy())
	assert.Equal(t, 2, s.History().Len())
}

func TestSession_ModelAndReset(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"a", "b"}}
	s := NewSession(gen, "gemini-2.5-flash", WithRenderOptions(markup.DefaultOptions().WithListScope(markup.ListScopeRuns)))

	_, err := s.Send(context.Background(), "x")
	require.NoError(t, err)

	s.SetModel("gemini-2.5-pro")
	assert.Equal(t, "gemini-2.5-pro", s.Model())
	assert.Equal(t, 2, s.History().Len(), "changing model keeps history")

	s.Reset()
	assert.Equal(t, 0, s.History().Len())

	_, err = s.Send(context.Background(), "y")
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-pro", gen.calls[1].model)
	assert.Empty(t, gen.calls[1].prior)
}
