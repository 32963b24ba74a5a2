// Package models contains data types and constants shared by the chat client
// and the generation backend.
package models

// Endpoints exposed by the generation backend.
const (
	DefaultServerURL = "http://127.0.0.1:5000"
	EndpointModels   = "/models"
	EndpointGenerate = "/generate/"
	EndpointRender   = "/render"
	EndpointHealth   = "/healthz"
)

// Model IDs the selector pins to the top of the catalog.
const (
	Model25Flash     = "gemini-2.5-flash"
	Model25FlashLite = "gemini-2.5-flash-lite"
	Model25Pro       = "gemini-2.5-pro"
)

// DefaultModel is selected when nothing else has been chosen.
const DefaultModel = Model25Flash

// PreferredGroupLabel is the heading of the pinned catalog group.
const PreferredGroupLabel = "Preferred Models"

// PreferredModel is a model pinned at the top of the selector with its
// display name and speed label.
type PreferredModel struct {
	ID    string
	Name  string
	Speed string
}

// PreferredModels returns the pinned models in display order.
func PreferredModels() []PreferredModel {
	return []PreferredModel{
		{ID: Model25Flash, Name: "Gemini 2.5 Flash", Speed: "Faster"},
		{ID: Model25FlashLite, Name: "Gemini 2.5 Flash Lite", Speed: "Fastest"},
		{ID: Model25Pro, Name: "Gemini 2.5 Pro", Speed: "Fast"},
	}
}

// IsPreferred reports whether id is one of the pinned models.
func IsPreferred(id string) bool {
	for _, p := range PreferredModels() {
		if p.ID == id {
			return true
		}
	}
	return false
}

// ModelInfo describes one catalog entry.
type ModelInfo struct {
	ID          string `json:"-" toml:"id"`
	Name        string `json:"name" toml:"name"`
	Description string `json:"description" toml:"description"`
	Speed       string `json:"speed" toml:"speed"`
	Category    string `json:"category" toml:"category"`
}

// Label returns the selector label, "Name (Speed)".
func (m ModelInfo) Label() string {
	if m.Speed == "" {
		return m.Name
	}
	return m.Name + " (" + m.Speed + ")"
}
