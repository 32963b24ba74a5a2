// Package catalog owns the list of models the backend serves and the grouped
// selection the clients build from it.
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/diogo/geminichat/internal/models"
)

//go:embed catalog.toml
var builtinCatalog []byte

// Catalog is an ordered list of models.
type Catalog struct {
	Models []models.ModelInfo `toml:"models"`
}

// Builtin returns the embedded catalog.
func Builtin() (*Catalog, error) {
	return Parse(builtinCatalog)
}

// LoadFile reads a catalog from a TOML file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes a TOML catalog and rejects entries without an ID or name and
// duplicate IDs.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	seen := make(map[string]bool, len(c.Models))
	for i, m := range c.Models {
		if m.ID == "" || m.Name == "" {
			return nil, fmt.Errorf("catalog entry %d: id and name are required", i)
		}
		if seen[m.ID] {
			return nil, fmt.Errorf("catalog entry %d: duplicate id %q", i, m.ID)
		}
		seen[m.ID] = true
	}
	return &c, nil
}

// Lookup finds a model by ID.
func (c *Catalog) Lookup(id string) (models.ModelInfo, bool) {
	for _, m := range c.Models {
		if m.ID == id {
			return m, true
		}
	}
	return models.ModelInfo{}, false
}

// IDs returns the model IDs in catalog order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.Models))
	for i, m := range c.Models {
		ids[i] = m.ID
	}
	return ids
}

// MarshalJSON encodes the catalog as an object keyed by model ID, keeping
// catalog order so clients can group categories in first-seen order.
func (c *Catalog) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range c.Models {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(m.ID)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(m)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
