package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/tidwall/gjson"
	"golang.org/x/term"

	"github.com/diogo/geminichat/internal/api"
	"github.com/diogo/geminichat/internal/chat"
	"github.com/diogo/geminichat/internal/config"
	apierrors "github.com/diogo/geminichat/internal/errors"
	"github.com/diogo/geminichat/internal/render"
)

// Gradient colors for animation
var gradientColors = []lipgloss.Color{
	lipgloss.Color("#ff6b6b"), // Red
	lipgloss.Color("#feca57"), // Yellow
	lipgloss.Color("#48dbfb"), // Cyan
	lipgloss.Color("#ff9ff3"), // Pink
	lipgloss.Color("#54a0ff"), // Blue
	lipgloss.Color("#5f27cd"), // Purple
	lipgloss.Color("#00d2d3"), // Teal
	lipgloss.Color("#1dd1a1"), // Green
}

var (
	colorText     = lipgloss.Color("#c0caf5")
	colorTextDim  = lipgloss.Color("#565f89")
	colorTextMute = lipgloss.Color("#3b4261")
	colorSuccess  = lipgloss.Color("#9ece6a")
	colorPrimary  = lipgloss.Color("#7aa2f7")
	colorError    = lipgloss.Color("#f7768e")
)

// Styles matching the chat TUI
var (
	assistantLabelStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	assistantBubbleStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary).
				Foreground(colorText).
				Padding(0, 1).
				MarginTop(1).
				MarginBottom(1)

	failedBubbleStyle = assistantBubbleStyle.
				BorderForeground(colorError).
				Foreground(colorError)
)

// spinner handles the animated loading indicator
type spinner struct {
	message string
	out     io.Writer
	stop    chan struct{}
	done    chan struct{}
	mu      sync.Mutex
	frame   int
	stopped bool // Flag to prevent double-close
}

// newSpinner creates a new animated spinner drawing on out
func newSpinner(out io.Writer, message string) *spinner {
	return &spinner{
		message: message,
		out:     out,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// start begins the animation
func (s *spinner) start() {
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		// Hide cursor
		fmt.Fprint(s.out, "\033[?25l")

		for {
			select {
			case <-s.stop:
				// Clear line and show cursor
				fmt.Fprint(s.out, "\r\033[K\033[?25h")
				return
			case <-ticker.C:
				s.mu.Lock()
				s.render()
				s.frame++
				s.mu.Unlock()
			}
		}
	}()
}

// render draws the current animation frame
func (s *spinner) render() {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}
	barChars := []string{"█", "█", "█", "█", "█", "█", "▓", "▒", "░"}

	spinIdx := s.frame % len(chars)
	spinColor := gradientColors[s.frame%len(gradientColors)]
	spinnerChar := lipgloss.NewStyle().Foreground(spinColor).Bold(true).Render(chars[spinIdx])

	barWidth := 16
	var bar strings.Builder
	for i := 0; i < barWidth; i++ {
		colorIdx := (i + s.frame) % len(gradientColors)
		charIdx := (i + s.frame/2) % len(barChars)
		style := lipgloss.NewStyle().Foreground(gradientColors[colorIdx])
		bar.WriteString(style.Render(barChars[charIdx]))
	}

	var dots strings.Builder
	numDots := (s.frame / 3) % 4
	for i := 0; i < 3; i++ {
		if i < numDots {
			dotColor := gradientColors[(s.frame+i)%len(gradientColors)]
			dots.WriteString(lipgloss.NewStyle().Foreground(dotColor).Render("●"))
		} else {
			dots.WriteString(lipgloss.NewStyle().Foreground(colorTextMute).Render("○"))
		}
	}

	msg := lipgloss.NewStyle().Foreground(colorText).Render(s.message)

	fmt.Fprintf(s.out, "\r\033[K%s %s %s %s", spinnerChar, bar.String(), msg, dots.String())
}

// stopOnce safely closes the stop channel only once
func (s *spinner) stopOnce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		close(s.stop)
		s.stopped = true
	}
}

// stopWithSuccess stops the spinner and shows success message
func (s *spinner) stopWithSuccess(message string) {
	s.stopOnce()
	<-s.done

	checkmark := lipgloss.NewStyle().Foreground(colorSuccess).Bold(true).Render("✓")
	msg := lipgloss.NewStyle().Foreground(colorSuccess).Render(message)
	fmt.Fprintf(s.out, "%s %s\n", checkmark, msg)
}

// stopWithError stops the spinner and shows error
func (s *spinner) stopWithError() {
	s.stopOnce()
	<-s.done
}

// queryOptions are the output switches of a one-shot query.
type queryOptions struct {
	model  string
	output string
	html   bool
	raw    bool
}

// decorated reports whether the reply is printed with spinner and bubble.
func (o queryOptions) decorated() bool {
	return !o.raw && !o.html
}

// newClient creates the backend client from the resolved configuration.
func newClient(cfg config.Config) (*api.Client, error) {
	client, err := api.NewClient(cfg.ServerURL,
		api.WithTimeoutSeconds(cfg.TimeoutSeconds),
		api.WithMaxHistoryTurns(cfg.API.MaxHistoryTurns),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}

// runQuery sends a single prompt through a fresh session and prints the
// reply as a terminal bubble, an HTML fragment or the raw text.
func runQuery(ctx context.Context, cfg config.Config, gen chat.Generator, prompt string, opts queryOptions, stdout, stderr io.Writer) error {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return fmt.Errorf("prompt cannot be empty")
	}

	mopts, err := markupOptions(cfg)
	if err != nil {
		return err
	}
	msgs := messagesFor(cfg)
	session := chat.NewSession(gen, opts.model,
		chat.WithMessages(msgs),
		chat.WithRenderOptions(mopts),
	)

	if cfg.Verbose && opts.decorated() {
		fmt.Fprintf(stderr, "[verbose] Model: %s\n", opts.model)
	}

	var spin *spinner
	if opts.decorated() {
		spin = newSpinner(stderr, "Generating response")
		spin.start()
	}

	startTime := time.Now()
	reply, err := session.Send(ctx, prompt)
	requestDuration := time.Since(startTime)

	if err != nil {
		if spin != nil {
			spin.stopWithError()
			width := bubbleWidth(getTerminalWidth())
			fmt.Fprintln(stdout, failedBubbleStyle.Width(width).Render(reply.Text))
		}
		return fmt.Errorf("generation failed: %w", err)
	}
	if spin != nil {
		spin.stopWithSuccess("Done")
	}

	if cfg.Verbose && opts.decorated() {
		fmt.Fprintf(stderr, "[verbose] Request took %s\n", requestDuration.Round(time.Millisecond))
	}

	ropts := render.LoadOptionsFromConfig(cfg)
	var out string
	switch {
	case opts.raw:
		out = reply.Text
	case opts.html:
		out = render.HTML(reply.Fragment, ropts)
	}

	if opts.output != "" {
		data := out
		if opts.decorated() {
			data = reply.Text
		}
		if err := os.WriteFile(opts.output, []byte(data), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if opts.decorated() {
			successMsg := lipgloss.NewStyle().Foreground(colorSuccess).Render(
				fmt.Sprintf("✓ Response saved to %s", opts.output),
			)
			fmt.Fprintln(stderr, successMsg)
		}
		return nil
	}

	if !opts.decorated() {
		fmt.Fprint(stdout, out)
		if opts.html {
			fmt.Fprintln(stdout)
		}
		return nil
	}

	width := bubbleWidth(getTerminalWidth())
	contentWidth := width - 4

	fmt.Fprintln(stderr)
	fmt.Fprintln(stdout, assistantLabelStyle.Render("✦ Gemini"))

	rendered := render.Terminal(reply.Fragment, ropts.WithWidth(contentWidth), nil)
	rendered = strings.TrimRight(rendered, "\n")
	fmt.Fprintln(stdout, assistantBubbleStyle.Width(width).Render(rendered))

	return nil
}

// bubbleWidth clamps the reply bubble to a readable width.
func bubbleWidth(termWidth int) int {
	return min(max(termWidth-4, 40), 120)
}

// getTerminalWidth returns the terminal width or a default value
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80 // default width
	}
	return width
}

// formatErrorMessage formats an error with additional context from structured errors
func formatErrorMessage(err error, context string) string {
	if err == nil {
		return ""
	}

	errorStyle := lipgloss.NewStyle().Foreground(colorError)
	dimStyle := lipgloss.NewStyle().Foreground(colorTextDim)

	var sb strings.Builder
	sb.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s: %v", context, err)))

	if status := apierrors.GetHTTPStatus(err); status > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  HTTP Status: %d", status)))
	}

	if endpoint := apierrors.GetEndpoint(err); endpoint != "" {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  Endpoint: %s", endpoint)))
	}

	// JSON bodies already produced the message above; anything else came
	// from a proxy or a crashed backend and is shown as is.
	if body := apierrors.GetResponseBody(err); body != "" && !gjson.Valid(body) {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n\n  %s", strings.ReplaceAll(body, "\n", "\n  "))))
	}

	switch {
	case apierrors.IsTimeoutError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Request timed out. Try again or raise timeout_seconds"))
	case apierrors.IsNetworkError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Check that the backend at server_url is running ('geminichat serve')"))
	case apierrors.GetHTTPStatus(err) == 400:
		sb.WriteString(dimStyle.Render("\n  Hint: Run 'geminichat models' to list valid model IDs"))
	}

	return sb.String()
}
