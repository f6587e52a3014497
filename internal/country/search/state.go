package search

import "atlas/internal/country/models"

// State is an immutable snapshot of the search box. Update methods return a
// new State; the record set is shared and never mutated.
type State struct {
	records     []models.Country
	field       Field
	query       string
	focused     bool
	suggestions []models.Country
}

// NewState starts an empty, unfocused search over records.
func NewState(records []models.Country) State {
	return State{records: records, field: FieldName}
}

func (s State) Field() Field                  { return s.field }
func (s State) Query() string                 { return s.query }
func (s State) Focused() bool                 { return s.focused }
func (s State) Suggestions() []models.Country { return s.suggestions }

// Visible reports whether the suggestion list should be displayed.
func (s State) Visible() bool {
	return s.focused && len([]rune(s.query)) >= MinQueryLength
}

// WithQuery records a keystroke and recomputes suggestions.
func (s State) WithQuery(query string) State {
	s.query = query
	s.suggestions = Suggest(s.records, s.field, query)
	return s
}

// WithField switches the searched field and clears the query.
func (s State) WithField(field Field) State {
	s.field = field
	return s.WithQuery("")
}

// Focus marks the input as focused.
func (s State) Focus() State {
	s.focused = true
	return s
}

// Blur clears the query when the input loses focus.
func (s State) Blur() State {
	s.focused = false
	return s.WithQuery("")
}
