package models

import (
	"encoding/json"
	"fmt"
)

// Role identifies the author of a turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Valid reports whether r is one of the two known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleModel
}

// Turn is one exchange unit in the conversation history. The text is stored
// exactly as typed or as received, never in rendered form.
type Turn struct {
	Role Role
	Text string
}

// UserTurn creates a turn authored by the user.
func UserTurn(text string) Turn {
	return Turn{Role: RoleUser, Text: text}
}

// ModelTurn creates a turn authored by the model.
func ModelTurn(text string) Turn {
	return Turn{Role: RoleModel, Text: text}
}

type turnPart struct {
	Text string `json:"text"`
}

type turnWire struct {
	Role  Role       `json:"role"`
	Parts []turnPart `json:"parts,omitempty"`
	Text  *string    `json:"text,omitempty"`
}

// MarshalJSON encodes the turn in the content shape the generation API
// expects: {"role":"user","parts":[{"text":"..."}]}.
func (t Turn) MarshalJSON() ([]byte, error) {
	return json.Marshal(turnWire{
		Role:  t.Role,
		Parts: []turnPart{{Text: t.Text}},
	})
}

// UnmarshalJSON accepts both the parts form and a flat {"role","text"} form.
func (t *Turn) UnmarshalJSON(data []byte) error {
	var w turnWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if !w.Role.Valid() {
		return fmt.Errorf("invalid turn role %q", w.Role)
	}
	t.Role = w.Role
	switch {
	case len(w.Parts) > 0:
		t.Text = ""
		for _, p := range w.Parts {
			t.Text += p.Text
		}
	case w.Text != nil:
		t.Text = *w.Text
	default:
		t.Text = ""
	}
	return nil
}

// Message represents a chat message for TUI display
type Message struct {
	Role    Role
	Content string
	Failed  bool // true when Content is the apology shown after a failed request
}
