package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"

	"github.com/diogo/geminichat/internal/catalog"
)

// selectorRow is one visible line of the model selector.
type selectorRow struct {
	group  string
	option catalog.Option
}

// modelSelector is the grouped model picker opened with /model.
type modelSelector struct {
	selection catalog.Selection
	current   string
	filter    string
	cursor    int

	// Result
	chosen    string
	done      bool
	cancelled bool
}

func newModelSelector(sel catalog.Selection, current string) *modelSelector {
	s := &modelSelector{selection: sel, current: current}
	rows := s.rows()
	for i, r := range rows {
		if r.option.ID == current {
			s.cursor = i
			return s
		}
	}
	s.cursor = s.firstEnabled(rows)
	return s
}

// rows returns the options in display order, or the fuzzy matches of the
// filter ranked best first.
func (s *modelSelector) rows() []selectorRow {
	var all []selectorRow
	for _, g := range s.selection.Groups {
		for _, o := range g.Options {
			all = append(all, selectorRow{group: g.Label, option: o})
		}
	}

	query := strings.ToLower(strings.TrimSpace(s.filter))
	if query == "" {
		return all
	}

	keys := make([]string, len(all))
	for i, r := range all {
		keys[i] = strings.ToLower(r.option.Label + " " + r.option.ID)
	}
	var out []selectorRow
	for _, m := range fuzzy.Find(query, keys) {
		if !all[m.Index].option.Disabled {
			out = append(out, all[m.Index])
		}
	}
	return out
}

func (s *modelSelector) firstEnabled(rows []selectorRow) int {
	for i, r := range rows {
		if !r.option.Disabled {
			return i
		}
	}
	return 0
}

// move steps the cursor by delta, skipping disabled options and wrapping.
func (s *modelSelector) move(delta int) {
	rows := s.rows()
	if len(rows) == 0 {
		return
	}
	i := s.cursor
	for range rows {
		i = (i + delta + len(rows)) % len(rows)
		if !rows[i].option.Disabled {
			s.cursor = i
			return
		}
	}
}

func (s *modelSelector) setFilter(filter string) {
	s.filter = filter
	s.cursor = s.firstEnabled(s.rows())
}

// Update handles a key while the selector is open.
func (s *modelSelector) Update(msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		s.done, s.cancelled = true, true
	case tea.KeyUp, tea.KeyShiftTab:
		s.move(-1)
	case tea.KeyDown, tea.KeyTab:
		s.move(1)
	case tea.KeyEnter:
		rows := s.rows()
		if s.cursor < len(rows) && !rows[s.cursor].option.Disabled {
			s.chosen = rows[s.cursor].option.ID
			s.done = true
		}
	case tea.KeyBackspace:
		if r := []rune(s.filter); len(r) > 0 {
			s.setFilter(string(r[:len(r)-1]))
		}
	case tea.KeyRunes, tea.KeySpace:
		s.setFilter(s.filter + string(msg.Runes))
	}
}

// View renders the selector within width columns and about height rows.
func (s *modelSelector) View(width, height int) string {
	inner := width - 6
	if inner < 20 {
		inner = 20
	}

	lines := []string{
		selectorTitleStyle.Render("Select Model"),
		hintStyle.Render("Filter: ") + s.filter + selectorCursorStyle.Render("▏"),
	}

	rows := s.rows()
	if len(rows) == 0 {
		lines = append(lines, "", hintStyle.Render("  No matching models"))
	}

	maxRows := height - 10
	if maxRows < 5 {
		maxRows = 5
	}
	start := 0
	if s.cursor >= maxRows {
		start = s.cursor - maxRows + 1
	}
	end := min(start+maxRows, len(rows))

	lastGroup := "\x00"
	for i := start; i < end; i++ {
		r := rows[i]
		if s.filter == "" && r.group != lastGroup {
			if r.group != "" {
				lines = append(lines, selectorGroupStyle.Render(r.group))
			}
			lastGroup = r.group
		}
		lines = append(lines, s.renderRow(i, r, inner))
	}
	if end < len(rows) {
		lines = append(lines, hintStyle.Render("  ..."))
	}

	lines = append(lines, "", hintStyle.Render("↑↓ navigate • type to filter • enter select • esc cancel"))
	return selectorPanelStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (s *modelSelector) renderRow(i int, r selectorRow, width int) string {
	label := runewidth.Truncate(r.option.Label, width-4, "…")

	cursor := "  "
	style := selectorItemStyle
	switch {
	case r.option.Disabled:
		style = selectorDisabledStyle
	case i == s.cursor:
		cursor = selectorCursorStyle.Render("> ")
		style = selectorSelectedStyle
	}

	line := cursor + style.Render(label)
	if r.option.ID != "" && r.option.ID == s.current {
		line += selectorCurrentStyle.Render(" ●")
	}
	return line
}

