package report

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoSelection is returned when a session has no group to act on.
var ErrNoSelection = errors.New("no group selected")

// Session holds the current model and group selection for a consumer that
// browses a report, such as a viewer. It is not safe for concurrent use.
type Session struct {
	parser   *Parser
	model    *Result
	selected int
}

// NewSession creates an empty session. A nil parser means the default one.
func NewSession(p *Parser) *Session {
	if p == nil {
		p = defaultParser
	}
	return &Session{parser: p, model: &Result{Selected: -1}, selected: -1}
}

// Load parses text and replaces the session model. The previous model stays
// in place until the new one is complete. Selection resets to the parser's
// default (the last group).
func (s *Session) Load(ctx context.Context, text string) (*Result, error) {
	result, err := s.parser.ParseContext(ctx, text)
	if err != nil {
		return nil, err
	}
	s.model = result
	s.selected = result.Selected
	return result, nil
}

// Model returns the current model.
func (s *Session) Model() *Result {
	return s.model
}

// Select makes the group at index i current.
func (s *Session) Select(i int) error {
	if i < 0 || i >= len(s.model.Groups) {
		return fmt.Errorf("group index %d out of range [0, %d)", i, len(s.model.Groups))
	}
	s.selected = i
	return nil
}

// SelectByName selects the first group with the given name.
func (s *Session) SelectByName(name string) error {
	for i, g := range s.model.Groups {
		if g.Name == name {
			s.selected = i
			return nil
		}
	}
	return fmt.Errorf("group %q not found", name)
}

// Selected returns the current group, or nil if there is none.
func (s *Session) Selected() *Group {
	if s.selected < 0 || s.selected >= len(s.model.Groups) {
		return nil
	}
	return s.model.Groups[s.selected]
}

// SelectedIndex returns the index of the current group, or -1.
func (s *Session) SelectedIndex() int {
	if s.Selected() == nil {
		return -1
	}
	return s.selected
}

// Sort reorders the entries of the current group.
func (s *Session) Sort(field SortField, ascending bool) error {
	g := s.Selected()
	if g == nil {
		return ErrNoSelection
	}
	Reorder(g, field, ascending)
	return nil
}
