package api

import (
	"context"
	"errors"
	"testing"

	apierrors "github.com/diogo/geminichat/internal/errors"
)

func TestNewClient(t *testing.T) {
	if _, err := NewClient(""); err == nil {
		t.Error("expected error for empty server URL")
	}

	c := newTestClient(t, &fakeDoer{status: 200})
	if c.BaseURL() != "http://backend.test" {
		t.Errorf("BaseURL() = %q, trailing slash should be trimmed", c.BaseURL())
	}
}

func TestNewClient_DefaultTransport(t *testing.T) {
	c, err := NewClient("http://127.0.0.1:5000", WithTimeoutSeconds(5))
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	if c.httpClient == nil {
		t.Error("expected a default tls-client transport")
	}
}

func TestHealth(t *testing.T) {
	doer := &fakeDoer{status: 200, body: "ok"}
	c := newTestClient(t, doer)

	if err := c.Health(context.Background()); err != nil {
		t.Fatalf("Health() error: %v", err)
	}

	req, _ := doer.last()
	if req.URL.String() != "http://backend.test/healthz" {
		t.Errorf("URL = %s", req.URL)
	}
	if req.Header.Get("X-Request-ID") == "" {
		t.Error("expected a request ID header")
	}
}

func TestDo_ErrorStatus(t *testing.T) {
	doer := &fakeDoer{status: 400, body: `{"error":"Prompt is required"}`}
	c := newTestClient(t, doer)

	err := c.Health(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *apierrors.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.StatusCode != 400 || apiErr.Message != "Prompt is required" {
		t.Errorf("APIError = %+v", apiErr)
	}
}

func TestDo_ErrorStatusWithoutJSON(t *testing.T) {
	doer := &fakeDoer{status: 502, body: "bad gateway"}
	c := newTestClient(t, doer)

	err := c.Health(context.Background())
	if apierrors.GetHTTPStatus(err) != 502 {
		t.Errorf("GetHTTPStatus() = %d, want 502", apierrors.GetHTTPStatus(err))
	}
	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) && apiErr.Body != "bad gateway" {
		t.Errorf("Body = %q", apiErr.Body)
	}
}

func TestDo_NetworkError(t *testing.T) {
	doer := &fakeDoer{err: errConnRefused}
	c := newTestClient(t, doer)

	err := c.Health(context.Background())
	if !apierrors.IsNetworkError(err) {
		t.Fatalf("expected network error, got %v", err)
	}
	if !errors.Is(err, errConnRefused) {
		t.Error("cause should be reachable")
	}
}

func TestDo_CanceledContext(t *testing.T) {
	doer := &fakeDoer{err: errConnRefused}
	c := newTestClient(t, doer)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Health(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
