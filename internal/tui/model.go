package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/geminichat/internal/catalog"
	"github.com/diogo/geminichat/internal/chat"
	"github.com/diogo/geminichat/internal/history"
	"github.com/diogo/geminichat/internal/logger"
	"github.com/diogo/geminichat/internal/markup"
	"github.com/diogo/geminichat/internal/models"
	"github.com/diogo/geminichat/internal/render"
)

// CatalogSource lists the models the endpoint serves.
type CatalogSource interface {
	FetchModels(ctx context.Context) ([]models.ModelInfo, error)
}

// Animation tick message
type animationTickMsg time.Time

// Message types for the TUI
type (
	replyMsg struct {
		reply chat.Reply
		err   error
	}
	catalogLoadedMsg struct {
		entries []models.ModelInfo
		err     error
	}
	// copyExpiredMsg re-renders once a copy confirmation has run out
	copyExpiredMsg struct{}
)

// Model represents the TUI state
type Model struct {
	ctx        context.Context
	session    *chat.Session
	source     CatalogSource
	copier     *render.CopyAffordance
	messages   models.Messages
	renderOpts render.Options

	// UI components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	// State
	transcript     []chatMessage
	selection      catalog.Selection
	catalogLoaded  bool
	selector       *modelSelector
	loading        bool
	cancel         context.CancelFunc
	ready          bool
	notice         string
	animationFrame int

	// Dimensions
	width  int
	height int
}

// chatMessage is one displayed message. Replies keep their fragment; user
// messages and the apology are plain fragments.
type chatMessage struct {
	role     models.Role
	fragment markup.Fragment
	failed   bool
}

// ModelOption configures the chat model
type ModelOption func(*Model)

// WithMessages sets the fixed UI strings.
func WithMessages(msgs models.Messages) ModelOption {
	return func(m *Model) {
		m.messages = msgs
	}
}

// WithRenderOptions sets the terminal adapter options.
func WithRenderOptions(opts render.Options) ModelOption {
	return func(m *Model) {
		m.renderOpts = opts
	}
}

// WithCopier replaces the clipboard affordance.
func WithCopier(c *render.CopyAffordance) ModelOption {
	return func(m *Model) {
		m.copier = c
	}
}

// WithContext sets the parent context of every request.
func WithContext(ctx context.Context) ModelOption {
	return func(m *Model) {
		m.ctx = ctx
	}
}

// NewChatModel creates a new chat TUI model
func NewChatModel(session *chat.Session, source CatalogSource, opts ...ModelOption) Model {
	m := Model{
		ctx:        context.Background(),
		session:    session,
		source:     source,
		messages:   models.MessagesFor(models.LocaleBengali),
		renderOpts: render.DefaultOptions(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	if m.copier == nil {
		m.copier = render.NewCopyAffordance(m.messages)
	}

	ta := textarea.New()
	ta.Placeholder = m.messages.InputPlaceholder
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle
	m.textarea = ta

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle
	m.spinner = s

	return m
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
		m.loadCatalog(),
	)
}

func (m Model) loadCatalog() tea.Cmd {
	return func() tea.Msg {
		entries, err := m.source.FetchModels(m.ctx)
		return catalogLoadedMsg{entries: entries, err: err}
	}
}

// animationTick returns a command that sends animation tick messages
func animationTick() tea.Cmd {
	return tea.Tick(time.Millisecond*80, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	if key, ok := msg.(tea.KeyMsg); ok && m.selector != nil {
		return m.updateSelector(key)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 4
		inputHeight := 6
		statusHeight := 1
		padding := 2

		vpHeight := m.height - headerHeight - inputHeight - statusHeight - padding
		if vpHeight < 5 {
			vpHeight = 5
		}
		contentWidth := m.width - 4

		if !m.ready {
			m.viewport = viewport.New(contentWidth, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = contentWidth
			m.viewport.Height = vpHeight
		}
		m.textarea.SetWidth(contentWidth - 4)
		m.updateViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancelSend()
			return m, tea.Quit

		case "esc":
			if m.loading {
				m.cancelSend()
				return m, nil
			}
			return m, tea.Quit

		case "enter":
			if m.loading {
				return m, nil
			}
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}
			m.textarea.Reset()
			m.notice = ""
			return m.submit(input)
		}

	case catalogLoadedMsg:
		m.applyCatalog(msg)

	case replyMsg:
		m.loading = false
		m.cancel = nil
		if msg.err != nil && !msg.reply.Failed {
			m.notice = FormatError(msg.err)
			break
		}
		m.transcript = append(m.transcript, chatMessage{
			role:     models.RoleModel,
			fragment: msg.reply.Fragment,
			failed:   msg.reply.Failed,
		})
		m.updateViewport()
		m.viewport.GotoBottom()

	case copyExpiredMsg:
		m.updateViewport()

	case spinner.TickMsg:
		if m.loading {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case animationTickMsg:
		if m.loading {
			m.animationFrame++
			cmds = append(cmds, animationTick())
		}
	}

	// Only keys reach the textarea so escape sequences do not leak into it
	if !m.loading {
		if _, ok := msg.(tea.KeyMsg); ok {
			m.textarea, cmd = m.textarea.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// submit runs a chat command or sends input as a prompt.
func (m Model) submit(input string) (tea.Model, tea.Cmd) {
	command := parseCommand(input)
	switch command.kind {
	case cmdQuit:
		return m, tea.Quit
	case cmdClear:
		m.session.Reset()
		m.copier.Reset()
		m.transcript = nil
		m.updateViewport()
		return m, nil
	case cmdCopy:
		return m.copyBlock(command.arg)
	case cmdExport:
		m.export(command.arg)
		return m, nil
	case cmdModel:
		if command.arg != "" {
			m.chooseModel(command.arg)
			return m, nil
		}
		m.selector = newModelSelector(m.selection, m.session.Model())
		return m, nil
	}

	m.transcript = append(m.transcript, chatMessage{
		role:     models.RoleUser,
		fragment: markup.Plain(input),
	})
	m.updateViewport()
	m.viewport.GotoBottom()

	m.loading = true
	m.animationFrame = 0
	ctx, cancel := context.WithCancel(m.ctx)
	m.cancel = cancel

	return m, tea.Batch(
		m.sendMessage(ctx, cancel, input),
		m.spinner.Tick,
		animationTick(),
	)
}

// sendMessage creates a command that runs one exchange on the session
func (m Model) sendMessage(ctx context.Context, cancel context.CancelFunc, prompt string) tea.Cmd {
	session := m.session
	return func() tea.Msg {
		defer cancel()
		reply, err := session.Send(ctx, prompt)
		return replyMsg{reply: reply, err: err}
	}
}

func (m *Model) cancelSend() {
	if m.cancel != nil {
		m.cancel()
	}
}

func (m *Model) applyCatalog(msg catalogLoadedMsg) {
	m.catalogLoaded = true
	if msg.err != nil {
		logger.Named("tui").WithError(msg.err).Warn("failed to load model catalog")
		m.selection = catalog.ErrorSelection(m.messages.CatalogError)
		return
	}

	m.selection = catalog.BuildSelection(msg.entries)
	if !m.selection.Select(m.session.Model()) && m.selection.Selected != "" {
		m.session.SetModel(m.selection.Selected)
	}
}

func (m *Model) chooseModel(id string) {
	if !m.selection.Select(id) {
		m.notice = fmt.Sprintf("Unknown model %q", id)
		return
	}
	m.session.SetModel(id)
	m.notice = "Model: " + m.selection.Label(id)
}

func (m Model) updateSelector(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.selector.Update(key)
	if !m.selector.done {
		return m, nil
	}
	if !m.selector.cancelled {
		m.chooseModel(m.selector.chosen)
	}
	m.selector = nil
	return m, nil
}

// codeBlocks returns every reply code block in transcript order.
func (m Model) codeBlocks() []markup.CodeBlock {
	var blocks []markup.CodeBlock
	for _, msg := range m.transcript {
		if msg.role == models.RoleModel {
			blocks = append(blocks, msg.fragment.CodeBlocks()...)
		}
	}
	return blocks
}

func (m Model) copyBlock(arg string) (tea.Model, tea.Cmd) {
	blocks := m.codeBlocks()
	n, ok := blockNumber(arg, len(blocks))
	if !ok {
		m.notice = fmt.Sprintf("No code block %s", arg)
		return m, nil
	}

	// Failures are logged by the affordance and leave the label unchanged
	if err := m.copier.Copy(n-1, blocks[n-1]); err != nil {
		return m, nil
	}
	m.updateViewport()
	return m, tea.Tick(render.ConfirmDuration, func(time.Time) tea.Msg {
		return copyExpiredMsg{}
	})
}

func (m *Model) export(path string) {
	if path == "" {
		path = fmt.Sprintf("geminichat-%s.md", time.Now().Format("20060102-150405"))
	}
	t := m.session.History().Transcript(m.session.Model())
	if err := history.WriteExport(path, t); err != nil {
		logger.Named("tui").WithError(err).WithField("path", path).Warn("export failed")
		m.notice = FormatError(err)
		return
	}
	m.notice = "Exported to " + path
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	contentWidth := m.width - 4
	if m.selector != nil {
		return m.selector.View(contentWidth, m.height)
	}

	var sections []string

	headerContent := lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render("✦ Gemini Chat"),
		hintStyle.Render("  •  "),
		subtitleStyle.Render(m.modelLabel()),
	)
	sections = append(sections, headerStyle.Width(contentWidth).Render(headerContent))

	var messagesContent string
	if len(m.transcript) == 0 {
		messagesContent = m.renderWelcome()
	} else {
		messagesContent = m.viewport.View()
	}
	sections = append(sections, messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(messagesContent))

	var inputContent string
	if m.loading {
		inputContent = m.renderLoadingAnimation()
	} else {
		inputContent = lipgloss.JoinVertical(
			lipgloss.Left,
			inputLabelStyle.Render("You"),
			m.textarea.View(),
		)
	}
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(inputContent))

	if m.notice != "" {
		sections = append(sections, noticeStyle.Render(m.notice))
	}
	sections = append(sections, m.renderStatusBar(contentWidth))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) modelLabel() string {
	if !m.catalogLoaded {
		return m.messages.LoadingModels
	}
	return m.selection.Label(m.session.Model())
}

// renderWelcome renders the welcome screen when no messages exist
func (m Model) renderWelcome() string {
	width := m.viewport.Width - 4
	height := m.viewport.Height

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		"",
		welcomeIconStyle.Width(width).Render("✦"),
		"",
		welcomeTitleStyle.Width(width).Render("Welcome to Gemini Chat"),
		"",
		welcomeStyle.Width(width).Render("/model to switch models • /copy N copies a code block • /export saves the chat"),
		"",
	)

	topPadding := (height - lipgloss.Height(content)) / 2
	if topPadding < 0 {
		topPadding = 0
	}
	return strings.Repeat("\n", topPadding) + content
}

// renderLoadingAnimation renders the typing indicator
func (m Model) renderLoadingAnimation() string {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}
	barChars := []string{"█", "█", "█", "█", "█", "█", "█", "█", "▓", "▒", "░"}

	frame := m.animationFrame

	spinColor := gradientColors[frame%len(gradientColors)]
	spin := lipgloss.NewStyle().Foreground(spinColor).Bold(true).Render(chars[frame%len(chars)])

	barWidth := 20
	var bar strings.Builder
	for i := 0; i < barWidth; i++ {
		colorIdx := (i + frame) % len(gradientColors)
		charIdx := (i + frame/2) % len(barChars)
		bar.WriteString(lipgloss.NewStyle().Foreground(gradientColors[colorIdx]).Render(barChars[charIdx]))
	}

	var dots strings.Builder
	numDots := (frame / 3) % 4
	for i := 0; i < numDots; i++ {
		dotColor := gradientColors[(frame+i)%len(gradientColors)]
		dots.WriteString(lipgloss.NewStyle().Foreground(dotColor).Render("●"))
	}
	for i := numDots; i < 3; i++ {
		dots.WriteString(lipgloss.NewStyle().Foreground(colorTextMute).Render("○"))
	}

	text := lipgloss.NewStyle().Foreground(colorText).Render(" Gemini is thinking ")
	return fmt.Sprintf("%s %s %s %s", spin, bar.String(), text, dots.String())
}

// renderStatusBar renders the bottom status bar with shortcuts
func (m Model) renderStatusBar(width int) string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"/model", "Switch"},
		{"/copy N", "Copy"},
		{"/clear", "Reset"},
		{"Esc", "Quit"},
	}

	var items []string
	for _, s := range shortcuts {
		items = append(items, lipgloss.JoinHorizontal(
			lipgloss.Center,
			statusKeyStyle.Render(s.key),
			statusDescStyle.Render(" "+s.desc),
		))
	}

	bar := lipgloss.JoinHorizontal(lipgloss.Center, strings.Join(items, "  │  "))
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(bar)
}

// updateViewport refreshes the viewport content with styled messages. Code
// blocks are numbered across the transcript to match /copy N.
func (m *Model) updateViewport() {
	if !m.ready {
		return
	}
	var content strings.Builder
	bubbleWidth := m.viewport.Width - 6
	blocks := 0

	for i, msg := range m.transcript {
		if i > 0 {
			content.WriteString("\n")
		}

		opts := m.renderOpts.WithWidth(max(bubbleWidth-4, 20))
		if msg.role == models.RoleUser {
			text := render.Terminal(msg.fragment, opts, nil)
			content.WriteString(userLabelStyle.Render("● You") + "\n")
			content.WriteString(userBubbleStyle.Width(bubbleWidth).Render(text))
		} else {
			text := render.Terminal(msg.fragment, opts.WithBlockOffset(blocks), m.copier)
			blocks += len(msg.fragment.CodeBlocks())

			style := assistantBubbleStyle
			if msg.failed {
				style = failedBubbleStyle
			}
			content.WriteString(assistantLabelStyle.Render("✦ Gemini") + "\n")
			content.WriteString(style.Width(bubbleWidth).Render(text))
		}
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
}

// RunChat starts the chat TUI
func RunChat(session *chat.Session, source CatalogSource, opts ...ModelOption) error {
	m := NewChatModel(session, source, opts...)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
