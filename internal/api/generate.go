package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	http "github.com/bogdanfinn/fhttp"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/geminichat/internal/errors"
	"github.com/diogo/geminichat/internal/history"
	"github.com/diogo/geminichat/internal/models"
)

// Generate sends prompt with the prior turns to POST /generate/{model} and
// returns the reply text untouched. Every failure is a GenerationError.
func (c *Client) Generate(ctx context.Context, model, prompt string, prior []models.Turn) (string, error) {
	if strings.TrimSpace(model) == "" {
		return "", apierrors.NewGenerationError(model, fmt.Errorf("model is required"))
	}

	payload, err := buildPayload(prompt, history.Tail(prior, c.historyLimit()))
	if err != nil {
		return "", apierrors.NewGenerationError(model, fmt.Errorf("failed to build payload: %w", err))
	}

	path := models.EndpointGenerate + url.PathEscape(model)
	data, err := c.do(ctx, http.MethodPost, path, bytes.NewReader(payload))
	if err != nil {
		return "", apierrors.NewGenerationError(model, err)
	}

	output := gjson.GetBytes(data, "output")
	if !output.Exists() || output.Type != gjson.String {
		return "", apierrors.NewGenerationError(model, apierrors.NewParseError("missing output", "output"))
	}
	return output.String(), nil
}

// buildPayload encodes {prompt, history}; history is always an array.
func buildPayload(prompt string, prior []models.Turn) ([]byte, error) {
	if prior == nil {
		prior = []models.Turn{}
	}
	return json.Marshal(models.GenerateRequest{Prompt: prompt, History: prior})
}

// RenderHTML asks the backend to render text as an HTML fragment.
func (c *Client) RenderHTML(ctx context.Context, text string) (string, error) {
	payload, err := json.Marshal(models.RenderRequest{Text: text})
	if err != nil {
		return "", err
	}
	data, err := c.do(ctx, http.MethodPost, models.EndpointRender, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	html := gjson.GetBytes(data, "html")
	if !html.Exists() {
		return "", apierrors.NewParseError("missing html", "html")
	}
	return html.String(), nil
}
