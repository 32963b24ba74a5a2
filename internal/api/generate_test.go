package api

import (
	"context"
	"errors"
	"testing"

	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/geminichat/internal/errors"
	"github.com/diogo/geminichat/internal/models"
)

func TestBuildPayload(t *testing.T) {
	tests := []struct {
		name        string
		prompt      string
		prior       []models.Turn
		wantHistory int
	}{
		{"no history", "Hello", nil, 0},
		{"with history", "Continue", []models.Turn{models.UserTurn("a"), models.ModelTurn("b")}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildPayload(tt.prompt, tt.prior)
			if err != nil {
				t.Fatalf("buildPayload() error: %v", err)
			}

			if gjson.GetBytes(got, "prompt").String() != tt.prompt {
				t.Errorf("prompt = %s", gjson.GetBytes(got, "prompt"))
			}
			hist := gjson.GetBytes(got, "history")
			if !hist.IsArray() {
				t.Fatalf("history should always be an array, got %s", hist.Raw)
			}
			if len(hist.Array()) != tt.wantHistory {
				t.Errorf("history length = %d, want %d", len(hist.Array()), tt.wantHistory)
			}
		})
	}
}

func TestGenerate(t *testing.T) {
	doer := &fakeDoer{status: 200, body: `{"output":"**hi** <there>"}`}
	c := newTestClient(t, doer)

	prior := []models.Turn{models.UserTurn("first"), models.ModelTurn("reply")}
	out, err := c.Generate(context.Background(), "gemini-2.5-flash", "second", prior)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if out != "**hi** <there>" {
		t.Errorf("Generate() = %q, reply must be returned untouched", out)
	}

	req, body := doer.last()
	if req.Method != "POST" {
		t.Errorf("Method = %s, want POST", req.Method)
	}
	if req.URL.Path != "/generate/gemini-2.5-flash" {
		t.Errorf("Path = %s", req.URL.Path)
	}
	if req.Header.Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %s", req.Header.Get("Content-Type"))
	}
	if gjson.Get(body, "prompt").String() != "second" {
		t.Errorf("prompt = %s", gjson.Get(body, "prompt"))
	}
	if gjson.Get(body, "history.0.role").String() != "user" ||
		gjson.Get(body, "history.0.parts.0.text").String() != "first" ||
		gjson.Get(body, "history.1.role").String() != "model" {
		t.Errorf("history wire shape wrong: %s", gjson.Get(body, "history").Raw)
	}
}

func TestGenerate_TrimsHistory(t *testing.T) {
	doer := &fakeDoer{status: 200, body: `{"output":"ok"}`}
	c := newTestClient(t, doer, WithMaxHistoryTurns(1))

	prior := []models.Turn{models.UserTurn("old"), models.ModelTurn("newest")}
	if _, err := c.Generate(context.Background(), "gemini-2.5-flash", "p", prior); err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	_, body := doer.last()
	hist := gjson.Get(body, "history").Array()
	if len(hist) != 1 || hist[0].Get("parts.0.text").String() != "newest" {
		t.Errorf("history = %s, want only the newest turn", gjson.Get(body, "history").Raw)
	}
	if len(prior) != 2 {
		t.Error("caller's history must not be modified")
	}
}

func TestGenerate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		doer   *fakeDoer
		model  string
		status int
	}{
		{"server error", &fakeDoer{status: 500, body: `{"error":"An internal server error occurred."}`}, "gemini-2.5-pro", 500},
		{"bad request", &fakeDoer{status: 400, body: `{"error":"Invalid model specified."}`}, "nope", 400},
		{"transport", &fakeDoer{err: errConnRefused}, "gemini-2.5-pro", 0},
		{"missing output", &fakeDoer{status: 200, body: `{"text":"x"}`}, "gemini-2.5-pro", 0},
		{"empty model", &fakeDoer{status: 200, body: `{"output":"x"}`}, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.doer)
			_, err := c.Generate(context.Background(), tt.model, "p", nil)
			if !errors.Is(err, apierrors.ErrGenerationFailed) {
				t.Fatalf("expected generation failure, got %v", err)
			}
			if apierrors.GetHTTPStatus(err) != tt.status {
				t.Errorf("GetHTTPStatus() = %d, want %d", apierrors.GetHTTPStatus(err), tt.status)
			}
		})
	}
}

func TestRenderHTML(t *testing.T) {
	doer := &fakeDoer{status: 200, body: `{"html":"<ul><strong>x</strong></ul>"}`}
	c := newTestClient(t, doer)

	html, err := c.RenderHTML(context.Background(), "**x**")
	if err != nil {
		t.Fatalf("RenderHTML() error: %v", err)
	}
	if html != "<ul><strong>x</strong></ul>" {
		t.Errorf("RenderHTML() = %q", html)
	}

	req, body := doer.last()
	if req.URL.Path != "/render" || gjson.Get(body, "text").String() != "**x**" {
		t.Errorf("unexpected request %s %s", req.URL.Path, body)
	}
}
