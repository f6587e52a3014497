// Package search implements incremental prefix search over the full country set.
package search

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"atlas/internal/country/models"
)

// MinQueryLength is the number of characters a query needs before
// suggestions are computed.
const MinQueryLength = 2

// Field selects which country attribute a query is matched against.
type Field string

const (
	FieldName    Field = "name"
	FieldCapital Field = "capital"
)

// Fields lists the selectable fields in menu order.
var Fields = []Field{FieldName, FieldCapital}

// Label is the menu label for the field.
func (f Field) Label() string {
	if f == FieldCapital {
		return "capital"
	}
	return "country"
}

// ParseField accepts a field name or its menu label. Empty means name.
func ParseField(s string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "name", "country":
		return FieldName, nil
	case "capital":
		return FieldCapital, nil
	default:
		return "", fmt.Errorf("unknown search field %q", s)
	}
}

// Value returns the country's value for the field.
func (f Field) Value(c models.Country) string {
	if f == FieldCapital {
		return c.Capital
	}
	return c.Name
}

// Suggest returns, in source order, every record whose field value starts
// with query, ignoring case. Queries shorter than MinQueryLength yield nil.
func Suggest(records []models.Country, field Field, query string) []models.Country {
	if utf8.RuneCountInString(query) < MinQueryLength {
		return nil
	}
	prefix := strings.ToLower(query)
	var out []models.Country
	for _, c := range records {
		if strings.HasPrefix(strings.ToLower(field.Value(c)), prefix) {
			out = append(out, c)
		}
	}
	return out
}

// Label is the text shown for a suggestion: the matched field, or the name
// when the field is empty.
func Label(c models.Country, field Field) string {
	if v := field.Value(c); v != "" {
		return v
	}
	return c.Name
}
