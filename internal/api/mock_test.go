package api

import (
	"bytes"
	"errors"
	"io"
	"sync"

	http "github.com/bogdanfinn/fhttp"
)

// fakeDoer records requests and answers with a canned response.
type fakeDoer struct {
	mu       sync.Mutex
	status   int
	body     string
	err      error
	requests []*http.Request
	bodies   []string
}

func (f *fakeDoer) Do(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, req)
	if req.Body != nil {
		data, _ := io.ReadAll(req.Body)
		f.bodies = append(f.bodies, string(data))
	} else {
		f.bodies = append(f.bodies, "")
	}

	if f.err != nil {
		return nil, f.err
	}
	return &http.Response{
		StatusCode: f.status,
		Body:       io.NopCloser(bytes.NewBufferString(f.body)),
		Header:     make(http.Header),
	}, nil
}

func (f *fakeDoer) last() (*http.Request, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return nil, ""
	}
	return f.requests[len(f.requests)-1], f.bodies[len(f.bodies)-1]
}

var errConnRefused = errors.New("connection refused")

func newTestClient(t interface{ Fatalf(string, ...any) }, doer *fakeDoer, opts ...ClientOption) *Client {
	opts = append([]ClientOption{WithHTTPClient(doer)}, opts...)
	c, err := NewClient("http://backend.test/", opts...)
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	return c
}
