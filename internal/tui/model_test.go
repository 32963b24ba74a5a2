package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/diogo/geminichat/internal/catalog"
	"github.com/diogo/geminichat/internal/chat"
	apierrors "github.com/diogo/geminichat/internal/errors"
	"github.com/diogo/geminichat/internal/models"
	"github.com/diogo/geminichat/internal/render"
)

type fakeGenerator struct {
	reply string
	err   error
}

func (f *fakeGenerator) Generate(ctx context.Context, model, prompt string, prior []models.Turn) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.reply, ctx.Err()
}

type fakeCatalog struct {
	entries []models.ModelInfo
	err     error
}

func (f *fakeCatalog) FetchModels(context.Context) ([]models.ModelInfo, error) {
	return f.entries, f.err
}

type testHarness struct {
	model   Model
	session *chat.Session
	copied  []string
}

func newHarness(t *testing.T, gen chat.Generator) *testHarness {
	t.Helper()
	msgs := models.MessagesFor(models.LocaleEnglish)
	h := &testHarness{session: chat.NewSession(gen, models.DefaultModel, chat.WithMessages(msgs))}
	copier := render.NewCopyAffordance(msgs, render.WithClipboardWriter(func(s string) error {
		h.copied = append(h.copied, s)
		return nil
	}))

	cat, err := catalog.Builtin()
	if err != nil {
		t.Fatalf("catalog.Builtin() error: %v", err)
	}

	m := NewChatModel(h.session, &fakeCatalog{entries: cat.Models},
		WithMessages(msgs),
		WithCopier(copier),
		WithRenderOptions(render.DefaultOptions().WithHighlight(false)),
	)
	h.model = h.update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	return h
}

func (h *testHarness) update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	typed, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return typed
}

// submit types input and presses enter.
func (h *testHarness) submit(t *testing.T, input string) tea.Cmd {
	t.Helper()
	h.model.textarea.SetValue(input)
	next, cmd := h.model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	h.model = next.(Model)
	return cmd
}

// exchange sends prompt and delivers the reply.
func (h *testHarness) exchange(t *testing.T, prompt string) {
	t.Helper()
	h.submit(t, prompt)
	if !h.model.loading {
		t.Fatalf("model should be loading after sending %q", prompt)
	}
	msg := h.model.sendMessage(context.Background(), func() {}, prompt)()
	h.model = h.update(t, h.model, msg)
}

func TestModel_Update_WindowSize(t *testing.T) {
	h := newHarness(t, &fakeGenerator{})

	if !h.model.ready {
		t.Error("Model should be ready after WindowSizeMsg")
	}
	if h.model.width != 100 || h.model.height != 40 {
		t.Errorf("dimensions = %dx%d, want 100x40", h.model.width, h.model.height)
	}
}

func TestModel_EnterIgnoresEmptyInput(t *testing.T) {
	h := newHarness(t, &fakeGenerator{})

	cmd := h.submit(t, "   ")
	if cmd != nil {
		t.Error("empty input should not produce a command")
	}
	if len(h.model.transcript) != 0 || h.model.loading {
		t.Error("empty input must not be sent")
	}
}

func TestModel_SendShowsUserMessageAndClearsInput(t *testing.T) {
	h := newHarness(t, &fakeGenerator{reply: "ok"})

	cmd := h.submit(t, "  hello  ")
	if cmd == nil {
		t.Fatal("expected a send command")
	}
	if !h.model.loading {
		t.Error("model should be loading")
	}
	if h.model.textarea.Value() != "" {
		t.Errorf("input = %q, want cleared", h.model.textarea.Value())
	}
	if len(h.model.transcript) != 1 || h.model.transcript[0].role != models.RoleUser {
		t.Fatalf("transcript = %+v, want one user message", h.model.transcript)
	}
	if got := h.model.transcript[0].fragment.Text(); got != "hello" {
		t.Errorf("user message = %q", got)
	}
	if !strings.Contains(h.model.View(), "Gemini is thinking") {
		t.Error("typing indicator should be shown while loading")
	}
}

func TestModel_ReplyIsRendered(t *testing.T) {
	h := newHarness(t, &fakeGenerator{reply: "**bold** reply"})

	h.exchange(t, "hi")

	if h.model.loading {
		t.Error("model should not be loading after reply")
	}
	if len(h.model.transcript) != 2 {
		t.Fatalf("transcript length = %d, want 2", len(h.model.transcript))
	}
	if got := h.model.transcript[1].fragment.Text(); got != "bold reply" {
		t.Errorf("reply text = %q", got)
	}
	if h.session.History().Len() != 2 {
		t.Errorf("history length = %d, want 2", h.session.History().Len())
	}
}

func TestModel_FailedReplyShowsApology(t *testing.T) {
	h := newHarness(t, &fakeGenerator{err: apierrors.NewGenerationError("m", errors.New("boom"))})

	h.exchange(t, "hi")

	last := h.model.transcript[len(h.model.transcript)-1]
	if !last.failed {
		t.Error("reply should be marked failed")
	}
	if got := last.fragment.Text(); got != "Sorry, something went wrong." {
		t.Errorf("apology = %q", got)
	}
	if h.session.History().Len() != 1 {
		t.Errorf("history length = %d, want only the user turn", h.session.History().Len())
	}
}

func TestModel_EscapeCancelsInFlightSend(t *testing.T) {
	h := newHarness(t, &fakeGenerator{reply: "late"})
	h.submit(t, "hi")

	canceled := false
	h.model.cancel = func() { canceled = true }

	h.model = h.update(t, h.model, tea.KeyMsg{Type: tea.KeyEscape})
	if !canceled {
		t.Error("escape should cancel the request")
	}
}

func TestModel_CtrlCQuits(t *testing.T) {
	h := newHarness(t, &fakeGenerator{})

	_, cmd := h.model.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c should quit")
	}
}

func TestModel_AnimationTick(t *testing.T) {
	h := newHarness(t, &fakeGenerator{})
	h.model.loading = true

	m := h.update(t, h.model, animationTickMsg(time.Now()))
	if m.animationFrame != 1 {
		t.Errorf("animationFrame = %d, want 1", m.animationFrame)
	}
}

func TestModel_CatalogLoaded(t *testing.T) {
	h := newHarness(t, &fakeGenerator{})
	cat, _ := catalog.Builtin()

	h.session.SetModel("gemini-2.0-flash")
	h.model = h.update(t, h.model, catalogLoadedMsg{entries: cat.Models})

	if h.model.selection.Groups[0].Label != models.PreferredGroupLabel {
		t.Errorf("first group = %q", h.model.selection.Groups[0].Label)
	}
	if h.session.Model() != "gemini-2.0-flash" {
		t.Errorf("a selectable configured model should be kept, got %q", h.session.Model())
	}
	if !strings.Contains(h.model.View(), "Gemini 2.0 Flash (Fast)") {
		t.Error("header should show the selected model label")
	}
}

func TestModel_CatalogUnknownModelFallsBack(t *testing.T) {
	h := newHarness(t, &fakeGenerator{})
	cat, _ := catalog.Builtin()

	h.session.SetModel("retired-model")
	h.model = h.update(t, h.model, catalogLoadedMsg{entries: cat.Models})

	if h.session.Model() != models.Model25Flash {
		t.Errorf("model = %q, want the first preferred model", h.session.Model())
	}
}

func TestModel_CatalogErrorShowsPlaceholder(t *testing.T) {
	h := newHarness(t, &fakeGenerator{})

	h.model = h.update(t, h.model, catalogLoadedMsg{err: apierrors.NewCatalogError(errors.New("down"))})

	opts := h.model.selection.Options()
	if len(opts) != 1 || !opts[0].Disabled || opts[0].Label != "Error loading models" {
		t.Errorf("selection = %+v, want one disabled placeholder", opts)
	}
	if h.session.Model() != models.DefaultModel {
		t.Errorf("session model = %q, want configured default kept", h.session.Model())
	}
}

func TestModel_ClearResetsSession(t *testing.T) {
	h := newHarness(t, &fakeGenerator{reply: "r"})
	h.exchange(t, "hi")
	oldID := h.session.History().ID()

	h.submit(t, "/clear")

	if len(h.model.transcript) != 0 {
		t.Error("transcript should be empty after /clear")
	}
	if h.session.History().Len() != 0 {
		t.Error("history should be empty after /clear")
	}
	if h.session.History().ID() == oldID {
		t.Error("/clear should start a new conversation")
	}
}

func TestModel_CopyBlock(t *testing.T) {
	h := newHarness(t, &fakeGenerator{reply: "first ```a < b``` then ```second```"})
	h.exchange(t, "code please")

	cmd := h.submit(t, "/copy 1")
	if cmd == nil {
		t.Fatal("a successful copy schedules the label reset")
	}
	if len(h.copied) != 1 || h.copied[0] != "a < b" {
		t.Errorf("clipboard = %q, want unescaped first block", h.copied)
	}
	if h.model.copier.Label(0) != "Copied!" {
		t.Errorf("label = %q", h.model.copier.Label(0))
	}
	if !strings.Contains(h.model.viewport.View(), "[Copied! 1]") {
		t.Error("viewport should show the confirmation label")
	}

	h.submit(t, "/copy")
	if h.copied[len(h.copied)-1] != "second" {
		t.Errorf("/copy without a number should copy the last block, got %q", h.copied)
	}
}

func TestModel_CopyUnknownBlock(t *testing.T) {
	h := newHarness(t, &fakeGenerator{reply: "no code"})
	h.exchange(t, "hi")

	h.submit(t, "/copy 3")
	if len(h.copied) != 0 {
		t.Error("nothing should be copied")
	}
	if h.model.notice != "No code block 3" {
		t.Errorf("notice = %q", h.model.notice)
	}
}

func TestModel_ModelCommand(t *testing.T) {
	h := newHarness(t, &fakeGenerator{})
	cat, _ := catalog.Builtin()
	h.model = h.update(t, h.model, catalogLoadedMsg{entries: cat.Models})

	h.submit(t, "/model gemini-2.5-pro")
	if h.session.Model() != "gemini-2.5-pro" {
		t.Errorf("model = %q", h.session.Model())
	}

	h.submit(t, "/model nope")
	if h.session.Model() != "gemini-2.5-pro" || !strings.Contains(h.model.notice, "Unknown model") {
		t.Errorf("unknown model should be rejected, notice %q", h.model.notice)
	}
}

func TestModel_ModelSelector(t *testing.T) {
	h := newHarness(t, &fakeGenerator{})
	cat, _ := catalog.Builtin()
	h.model = h.update(t, h.model, catalogLoadedMsg{entries: cat.Models})

	h.submit(t, "/model")
	if h.model.selector == nil {
		t.Fatal("/model should open the selector")
	}
	if !strings.Contains(h.model.View(), "Select Model") {
		t.Error("view should show the selector")
	}

	h.model = h.update(t, h.model, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("8b")})
	h.model = h.update(t, h.model, tea.KeyMsg{Type: tea.KeyEnter})

	if h.model.selector != nil {
		t.Error("selector should close after choosing")
	}
	if h.session.Model() != "gemini-1.5-flash-8b" {
		t.Errorf("model = %q, want gemini-1.5-flash-8b", h.session.Model())
	}
}

func TestModel_Export(t *testing.T) {
	h := newHarness(t, &fakeGenerator{reply: "answer"})
	h.exchange(t, "question")

	path := filepath.Join(t.TempDir(), "chat.md")
	h.submit(t, "/export "+path)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("export not written: %v", err)
	}
	if !strings.Contains(string(data), "question") || !strings.Contains(string(data), "answer") {
		t.Errorf("export missing turns:\n%s", data)
	}
	if !strings.HasPrefix(h.model.notice, "Exported to ") {
		t.Errorf("notice = %q", h.model.notice)
	}
}

func TestModel_ExitCommands(t *testing.T) {
	for _, input := range []string{"exit", "quit", "/exit", "/quit"} {
		t.Run(input, func(t *testing.T) {
			h := newHarness(t, &fakeGenerator{})
			cmd := h.submit(t, input)
			if cmd == nil {
				t.Fatal("expected quit command")
			}
			if _, ok := cmd().(tea.QuitMsg); !ok {
				t.Errorf("%q should quit", input)
			}
		})
	}
}

func TestModel_View_NotReady(t *testing.T) {
	m := NewChatModel(chat.NewSession(&fakeGenerator{}, models.DefaultModel), &fakeCatalog{})

	if !strings.Contains(m.View(), "Initializing") {
		t.Error("view should show initializing before the first size message")
	}
}

func TestModel_View_LoadingModelsLabel(t *testing.T) {
	h := newHarness(t, &fakeGenerator{})

	if !strings.Contains(h.model.View(), "Loading models...") {
		t.Error("header should show the loading label before the catalog arrives")
	}
}
