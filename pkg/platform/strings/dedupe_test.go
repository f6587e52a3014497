package strings

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupe(t *testing.T) {
	tests := []struct {
		name      string
		input     []string
		normalize func(string) string
		expected  []string
	}{
		{name: "nil slice", input: nil, expected: []string{}},
		{name: "keeps order", input: []string{"DEU", "FRA", "ESP"}, expected: []string{"DEU", "FRA", "ESP"}},
		{name: "drops blanks and repeats", input: []string{" DEU ", "", "DEU", "  "}, expected: []string{"DEU"}},
		{name: "normalizes before comparing", input: []string{"deu", "DEU", "fra"}, normalize: strings.ToUpper, expected: []string{"DEU", "FRA"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Dedupe(tt.input, tt.normalize))
		})
	}
}

func TestDedupeUpper(t *testing.T) {
	assert.Equal(t, []string{"BEL", "LUX"}, DedupeUpper([]string{"bel", " lux", "BEL"}))
}
