package catalog

import "github.com/diogo/geminichat/internal/models"

// Option is one selectable model.
type Option struct {
	ID       string
	Label    string
	Disabled bool
}

// Group is a labelled run of options.
type Group struct {
	Label   string
	Options []Option
}

// Selection is the grouped model list plus the current choice.
type Selection struct {
	Groups   []Group
	Selected string
}

// BuildSelection groups entries for a selector. The preferred models always
// come first under their own heading and are left out of the other groups.
// Other categories keep the order in which they first appear and empty
// groups are dropped. The first preferred model is selected.
func BuildSelection(entries []models.ModelInfo) Selection {
	prefs := models.PreferredModels()

	preferred := Group{Label: models.PreferredGroupLabel}
	for _, p := range prefs {
		info := models.ModelInfo{ID: p.ID, Name: p.Name, Speed: p.Speed}
		preferred.Options = append(preferred.Options, Option{ID: p.ID, Label: info.Label()})
	}

	var order []string
	byCategory := make(map[string]*Group)
	for _, e := range entries {
		g, ok := byCategory[e.Category]
		if !ok {
			g = &Group{Label: e.Category}
			byCategory[e.Category] = g
			order = append(order, e.Category)
		}
		if models.IsPreferred(e.ID) {
			continue
		}
		g.Options = append(g.Options, Option{ID: e.ID, Label: e.Label()})
	}

	sel := Selection{Groups: []Group{preferred}}
	for _, cat := range order {
		if g := byCategory[cat]; len(g.Options) > 0 {
			sel.Groups = append(sel.Groups, *g)
		}
	}
	if len(prefs) > 0 {
		sel.Selected = prefs[0].ID
	}
	return sel
}

// ErrorSelection is shown when the catalog cannot be loaded: one disabled
// placeholder and nothing selected.
func ErrorSelection(placeholder string) Selection {
	return Selection{
		Groups: []Group{{Options: []Option{{Label: placeholder, Disabled: true}}}},
	}
}

// Options returns every option in display order.
func (s Selection) Options() []Option {
	var out []Option
	for _, g := range s.Groups {
		out = append(out, g.Options...)
	}
	return out
}

// Has reports whether id is a selectable option.
func (s Selection) Has(id string) bool {
	for _, o := range s.Options() {
		if o.ID == id && !o.Disabled {
			return true
		}
	}
	return false
}

// Select changes the choice when id is selectable and reports whether it did.
func (s *Selection) Select(id string) bool {
	if !s.Has(id) {
		return false
	}
	s.Selected = id
	return true
}

// Label returns the label of the option with id, or id itself.
func (s Selection) Label(id string) string {
	for _, o := range s.Options() {
		if o.ID == id {
			return o.Label
		}
	}
	return id
}
