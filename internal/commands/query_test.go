package commands

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/diogo/geminichat/internal/config"
	apierrors "github.com/diogo/geminichat/internal/errors"
	"github.com/diogo/geminichat/internal/models"
)

// fakeGenerator answers every prompt with reply or fails with err.
type fakeGenerator struct {
	reply  string
	err    error
	model  string
	prompt string
	prior  []models.Turn
}

func (f *fakeGenerator) Generate(ctx context.Context, model, prompt string, prior []models.Turn) (string, error) {
	f.model, f.prompt, f.prior = model, prompt, prior
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func testConfig() config.Config {
	cfg := config.DefaultConfig()
	cfg.Locale = "en"
	return cfg
}

func TestRunQuery_Raw(t *testing.T) {
	gen := &fakeGenerator{reply: "**hi** <there>"}
	var stdout, stderr bytes.Buffer

	err := runQuery(context.Background(), testConfig(), gen, "  hello  ", queryOptions{model: "gemini-2.5-pro", raw: true}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("runQuery() error: %v", err)
	}

	if stdout.String() != "**hi** <there>" {
		t.Errorf("stdout = %q, raw output must be the reply text", stdout.String())
	}
	if stderr.Len() != 0 {
		t.Errorf("raw mode must not decorate stderr, got %q", stderr.String())
	}
	if gen.prompt != "hello" {
		t.Errorf("prompt = %q, want trimmed", gen.prompt)
	}
	if gen.model != "gemini-2.5-pro" {
		t.Errorf("model = %q", gen.model)
	}
	if len(gen.prior) != 0 {
		t.Errorf("a one-shot query has no prior turns, got %d", len(gen.prior))
	}
}

func TestRunQuery_HTML(t *testing.T) {
	gen := &fakeGenerator{reply: "**hi** <there>"}
	var stdout, stderr bytes.Buffer

	err := runQuery(context.Background(), testConfig(), gen, "hello", queryOptions{model: "m", html: true}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("runQuery() error: %v", err)
	}

	got := strings.TrimSpace(stdout.String())
	if got != "<ul><strong>hi</strong> &lt;there&gt;</ul>" {
		t.Errorf("stdout = %q", got)
	}
}

func TestRunQuery_HTMLRunsScope(t *testing.T) {
	cfg := testConfig()
	cfg.Render.ListScope = "runs"
	gen := &fakeGenerator{reply: "*x*"}
	var stdout bytes.Buffer

	if err := runQuery(context.Background(), cfg, gen, "hello", queryOptions{model: "m", html: true}, &stdout, &bytes.Buffer{}); err != nil {
		t.Fatalf("runQuery() error: %v", err)
	}
	if got := strings.TrimSpace(stdout.String()); got != "<em>x</em>" {
		t.Errorf("stdout = %q, want no list container without list items", got)
	}
}

func TestRunQuery_Decorated(t *testing.T) {
	gen := &fakeGenerator{reply: "Use ```fmt.Println(\"hi\")``` here"}
	var stdout, stderr bytes.Buffer

	err := runQuery(context.Background(), testConfig(), gen, "hello", queryOptions{model: "m"}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("runQuery() error: %v", err)
	}

	out := stdout.String()
	if !strings.Contains(out, "✦ Gemini") {
		t.Errorf("expected assistant label, got %q", out)
	}
	if !strings.Contains(out, "[Copy 1]") {
		t.Errorf("expected code block header, got %q", out)
	}
	if !strings.Contains(out, "Println") {
		t.Errorf("expected code in output, got %q", out)
	}
	if !strings.Contains(stderr.String(), "Done") {
		t.Errorf("expected spinner success on stderr, got %q", stderr.String())
	}
}

func TestRunQuery_Failure(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("connection refused")}
	var stdout, stderr bytes.Buffer

	err := runQuery(context.Background(), testConfig(), gen, "hello", queryOptions{model: "m"}, &stdout, &stderr)
	if !errors.Is(err, apierrors.ErrGenerationFailed) {
		t.Fatalf("expected generation failure, got %v", err)
	}
	if !strings.Contains(stdout.String(), "Sorry, something went wrong.") {
		t.Errorf("expected apology in output, got %q", stdout.String())
	}
}

func TestRunQuery_FailureRawPrintsNothing(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("boom")}
	var stdout bytes.Buffer

	err := runQuery(context.Background(), testConfig(), gen, "hello", queryOptions{model: "m", raw: true}, &stdout, &bytes.Buffer{})
	if err == nil {
		t.Fatal("expected error")
	}
	if stdout.Len() != 0 {
		t.Errorf("raw failure must leave stdout empty, got %q", stdout.String())
	}
}

func TestRunQuery_EmptyPrompt(t *testing.T) {
	gen := &fakeGenerator{reply: "x"}
	err := runQuery(context.Background(), testConfig(), gen, " \n\t ", queryOptions{model: "m"}, &bytes.Buffer{}, &bytes.Buffer{})
	if err == nil {
		t.Fatal("expected error for empty prompt")
	}
	if gen.prompt != "" {
		t.Error("empty prompt must not reach the generator")
	}
}

func TestRunQuery_OutputFile(t *testing.T) {
	tests := []struct {
		name string
		opts queryOptions
		want string
	}{
		{"decorated saves text", queryOptions{model: "m"}, "**a**"},
		{"raw saves text", queryOptions{model: "m", raw: true}, "**a**"},
		{"html saves fragment", queryOptions{model: "m", html: true}, "<ul><strong>a</strong></ul>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out.md")
			tt.opts.output = path
			var stdout bytes.Buffer

			err := runQuery(context.Background(), testConfig(), &fakeGenerator{reply: "**a**"}, "p", tt.opts, &stdout, &bytes.Buffer{})
			if err != nil {
				t.Fatalf("runQuery() error: %v", err)
			}

			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("ReadFile() error: %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("file = %q, want %q", data, tt.want)
			}
			if stdout.Len() != 0 {
				t.Errorf("stdout should be empty when saving, got %q", stdout.String())
			}
		})
	}
}

func TestBubbleWidth(t *testing.T) {
	tests := []struct {
		term, want int
	}{
		{20, 40},
		{80, 76},
		{300, 120},
	}
	for _, tt := range tests {
		if got := bubbleWidth(tt.term); got != tt.want {
			t.Errorf("bubbleWidth(%d) = %d, want %d", tt.term, got, tt.want)
		}
	}
}

func TestNewClient(t *testing.T) {
	cfg := testConfig()
	cfg.ServerURL = "http://localhost:9999/"
	client, err := newClient(cfg)
	if err != nil {
		t.Fatalf("newClient() error: %v", err)
	}
	if client.BaseURL() != "http://localhost:9999" {
		t.Errorf("BaseURL() = %s", client.BaseURL())
	}
}
