package server

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/diogo/geminichat/internal/models"
)

// GeminiGenerator generates replies with the Gemini API.
type GeminiGenerator struct {
	client *genai.Client
}

// NewGeminiGenerator creates a generator authenticated with apiKey.
func NewGeminiGenerator(ctx context.Context, apiKey string) (*GeminiGenerator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("serve.api_key is required (GEMINICHAT_SERVE_API_KEY)")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}
	return &GeminiGenerator{client: client}, nil
}

// Generate implements Generator. Text parts of the first candidate are
// joined with newlines.
func (g *GeminiGenerator) Generate(ctx context.Context, model string, prior []models.Turn, prompt string) (string, error) {
	res, err := g.client.Models.GenerateContent(ctx, model, buildContents(prior, prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return "", errors.New("gemini returned no candidates")
	}

	var parts []string
	for _, p := range res.Candidates[0].Content.Parts {
		if p != nil && p.Text != "" && !p.Thought {
			parts = append(parts, p.Text)
		}
	}
	if len(parts) == 0 {
		return "", errors.New("gemini returned empty text")
	}
	return strings.Join(parts, "\n"), nil
}

// buildContents maps the history onto Gemini contents followed by prompt.
func buildContents(prior []models.Turn, prompt string) []*genai.Content {
	contents := make([]*genai.Content, 0, len(prior)+1)
	for _, t := range prior {
		role := genai.RoleUser
		if t.Role == models.RoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(t.Text, role))
	}
	return append(contents, genai.NewContentFromText(prompt, genai.RoleUser))
}
