package service

import (
	"context"
	"unicode/utf8"

	"atlas/internal/country/models"
	"atlas/internal/country/pagination"
	"atlas/internal/country/search"
)

// Suggestion is one autocomplete entry.
type Suggestion struct {
	Code  string `json:"code"`
	Label string `json:"label"`
	Href  string `json:"href"`
}

// ListingView is one page of the homepage.
type ListingView struct {
	Countries    []models.Country
	Cards        []models.Card
	Page         int
	TotalPages   int
	TotalRecords int
	Window       []pagination.Slot
	Field        search.Field
	Query        string
	Suggestions  []Suggestion
}

// Listing loads the full set, slices page out of it and attaches
// suggestions for query. Pages past the end are empty; the window is
// computed for the page clamped into range.
func (s *Service) Listing(ctx context.Context, page int, field search.Field, query string) (*ListingView, error) {
	if page < 1 {
		page = 1
	}
	if field == "" {
		field = search.FieldName
	}
	countries, err := s.directory.All(ctx)
	if err != nil {
		return nil, translate(err, "countries")
	}

	total := len(countries)
	totalPages := pagination.TotalPages(total, s.pageSize)
	visible := pagination.Page(countries, page, s.pageSize)

	state := search.NewState(countries).WithField(field).Focus().WithQuery(query)

	return &ListingView{
		Countries:    visible,
		Cards:        models.NewCards(visible, false),
		Page:         page,
		TotalPages:   totalPages,
		TotalRecords: total,
		Window:       pagination.Window(total, s.pageSize, pagination.Clamp(page, totalPages)),
		Field:        state.Field(),
		Query:        state.Query(),
		Suggestions:  suggestionsFrom(state),
	}, nil
}

// Suggestions returns autocomplete entries for query on field. Short
// queries return an empty list without touching the directory.
func (s *Service) Suggestions(ctx context.Context, field search.Field, query string) ([]Suggestion, error) {
	if utf8.RuneCountInString(query) < search.MinQueryLength {
		return []Suggestion{}, nil
	}
	countries, err := s.directory.All(ctx)
	if err != nil {
		return nil, translate(err, "countries")
	}
	return suggestionsFrom(search.NewState(countries).WithField(field).Focus().WithQuery(query)), nil
}

func suggestionsFrom(state search.State) []Suggestion {
	out := []Suggestion{}
	if !state.Visible() {
		return out
	}
	for _, c := range state.Suggestions() {
		out = append(out, Suggestion{
			Code:  c.Code,
			Label: search.Label(c, state.Field()),
			Href:  models.Href(c.Code),
		})
	}
	return out
}
