// Package server is the HTTP generation backend: it serves the model catalog
// and forwards prompts with their history to a Generator.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/diogo/geminichat/internal/catalog"
	"github.com/diogo/geminichat/internal/logger"
	"github.com/diogo/geminichat/internal/markup"
	"github.com/diogo/geminichat/internal/models"
	"github.com/diogo/geminichat/internal/render"
)

// Error bodies returned to clients.
const (
	msgPromptRequired = "Prompt is required"
	msgInvalidModel   = "Invalid model specified. Available models are: "
	msgInvalidJSON    = "Invalid JSON body"
	msgTextRequired   = "Text is required"
	msgInternal       = "An internal server error occurred. Please check server logs for details."
)

// Generator produces a reply for prompt given the prior turns.
type Generator interface {
	Generate(ctx context.Context, model string, prior []models.Turn, prompt string) (string, error)
}

// Server serves the catalog, generation and render endpoints.
type Server struct {
	catalog    *catalog.Catalog
	gen        Generator
	markupOpts markup.Options
	renderOpts render.Options
	log        *logger.LogEntry
}

// Option configures a Server
type Option func(*Server)

// WithMarkupOptions sets the options used by POST /render.
func WithMarkupOptions(opts markup.Options) Option {
	return func(s *Server) {
		s.markupOpts = opts
	}
}

// WithRenderOptions sets the HTML adapter options used by POST /render.
func WithRenderOptions(opts render.Options) Option {
	return func(s *Server) {
		s.renderOpts = opts
	}
}

// New creates a Server for cat backed by gen.
func New(cat *catalog.Catalog, gen Generator, opts ...Option) *Server {
	s := &Server{
		catalog:    cat,
		gen:        gen,
		markupOpts: markup.DefaultOptions(),
		renderOpts: render.DefaultOptions(),
		log:        logger.Named("server"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router returns an http.Handler with registered routes.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+models.EndpointHealth, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET "+models.EndpointModels, s.handleModels)
	mux.HandleFunc("POST "+models.EndpointGenerate+"{model}", s.handleGenerate)
	mux.HandleFunc("POST "+models.EndpointRender, s.handleRender)

	return chainMiddlewares(mux, s.withLogging, withCORS, withRequestID)
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	model := r.PathValue("model")

	var req models.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, msgInvalidJSON)
		return
	}
	if req.Prompt == "" {
		badRequest(w, msgPromptRequired)
		return
	}
	if _, ok := s.catalog.Lookup(model); !ok {
		badRequest(w, msgInvalidModel+strings.Join(s.catalog.IDs(), ", "))
		return
	}

	output, err := s.gen.Generate(r.Context(), model, req.History, req.Prompt)
	if err != nil {
		s.log.WithFields(logger.Fields{
			"request_id": requestIDFrom(r.Context()),
			"model":      model,
			"prompt_len": len(req.Prompt),
		}).WithError(err).Error("failed to generate content")
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, models.GenerateResponse{Output: output})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req models.RenderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, msgInvalidJSON)
		return
	}
	if req.Text == "" {
		badRequest(w, msgTextRequired)
		return
	}

	f := markup.RenderWithOptions(req.Text, s.markupOpts)
	writeJSON(w, http.StatusOK, models.RenderResponse{HTML: render.SanitizedHTML(f, s.renderOpts)})
}

// Serve runs handler on addr until ctx is cancelled, then waits for
// in-flight requests to finish.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{Addr: addr, Handler: handler}

	done := make(chan struct{})
	shutdown := make(chan error, 1)
	go func() {
		select {
		case <-ctx.Done():
			shutdown <- srv.Shutdown(context.Background())
		case <-done:
		}
	}()

	err := srv.ListenAndServe()
	close(done)
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-shutdown
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: msg})
}

func internalError(w http.ResponseWriter) {
	writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: msgInternal})
}
