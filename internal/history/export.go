package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/diogo/geminichat/internal/models"
)

// ExportFormat represents the format for exporting conversations
type ExportFormat string

const (
	ExportFormatMarkdown ExportFormat = "markdown"
	ExportFormatJSON     ExportFormat = "json"
)

// Transcript is a point-in-time copy of a conversation prepared for export.
type Transcript struct {
	ID         string        `json:"id"`
	Model      string        `json:"model"`
	CreatedAt  time.Time     `json:"created_at"`
	ExportedAt time.Time     `json:"exported_at"`
	Turns      []models.Turn `json:"turns"`
}

// Transcript snapshots c for export.
func (c *Conversation) Transcript(model string) Transcript {
	c.mu.RLock()
	id, created := c.id, c.createdAt
	c.mu.RUnlock()
	return Transcript{
		ID:         id,
		Model:      model,
		CreatedAt:  created,
		ExportedAt: time.Now(),
		Turns:      c.Snapshot(),
	}
}

// ExportToMarkdown renders the transcript as Markdown. Reply text is written
// verbatim since it already is lightly marked-up text.
func ExportToMarkdown(t Transcript) string {
	var sb strings.Builder

	sb.WriteString("# Conversation ")
	sb.WriteString(t.ID)
	sb.WriteString("\n\n")

	sb.WriteString("**Model:** ")
	sb.WriteString(t.Model)
	sb.WriteString("\n")
	sb.WriteString("**Started:** ")
	sb.WriteString(t.CreatedAt.Format("2006-01-02 15:04:05"))
	sb.WriteString("\n")
	sb.WriteString("**Turns:** ")
	sb.WriteString(fmt.Sprintf("%d", len(t.Turns)))
	sb.WriteString("\n\n---\n\n")

	for i, turn := range t.Turns {
		role := "User"
		if turn.Role == models.RoleModel {
			role = "Model"
		}
		sb.WriteString("## ")
		sb.WriteString(role)
		sb.WriteString("\n\n")
		sb.WriteString(turn.Text)
		sb.WriteString("\n")

		if i < len(t.Turns)-1 {
			sb.WriteString("\n---\n\n")
		}
	}

	return sb.String()
}

// ExportToJSON encodes the transcript; turns use the generation API shape.
func ExportToJSON(t Transcript) ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

// FormatFromPath picks the export format from the file extension.
func FormatFromPath(path string) ExportFormat {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ExportFormatJSON
	}
	return ExportFormatMarkdown
}

// WriteExport writes t to path in the format implied by its extension.
func WriteExport(path string, t Transcript) error {
	var data []byte
	switch FormatFromPath(path) {
	case ExportFormatJSON:
		var err error
		if data, err = ExportToJSON(t); err != nil {
			return fmt.Errorf("failed to encode transcript: %w", err)
		}
	default:
		data = []byte(ExportToMarkdown(t))
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}
	return nil
}
