package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"atlas/internal/country/models"
)

var sample = []models.Country{
	{Name: "France", Capital: "Paris", Code: "FRA"},
	{Name: "Francistan", Capital: "Frankfurt", Code: "FRC"},
	{Name: "Germany", Capital: "Berlin", Code: "DEU"},
	{Name: "Fr", Capital: "", Code: "FRX"},
	{Name: "Åland Islands", Capital: "Mariehamn", Code: "ALA"},
	{Name: "Antarctica", Capital: "", Code: "ATA"},
}

type SuggestSuite struct {
	suite.Suite
}

func TestSuggestSuite(t *testing.T) {
	suite.Run(t, new(SuggestSuite))
}

func (s *SuggestSuite) TestShortQueriesYieldNothing() {
	for _, q := range []string{"", "F", "å"} {
		s.Empty(Suggest(sample, FieldName, q), "query %q", q)
	}
}

func (s *SuggestSuite) TestPrefixMatchIsCaseInsensitive() {
	got := Suggest(sample, FieldName, "fRa")
	s.Equal([]string{"FRA", "FRC"}, codes(got))
}

func (s *SuggestSuite) TestFieldSelectsAttribute() {
	s.Run("capital match does not leak into name search", func() {
		got := Suggest(sample, FieldName, "frank")
		s.Empty(got)
	})

	s.Run("capital search finds frankfurt", func() {
		got := Suggest(sample, FieldCapital, "frank")
		s.Equal([]string{"FRC"}, codes(got))
	})
}

func (s *SuggestSuite) TestValuesShorterThanQueryNeverMatch() {
	got := Suggest(sample, FieldName, "Fra")
	s.NotContains(codes(got), "FRX")
}

func (s *SuggestSuite) TestMissingCapitalIsNonMatch() {
	got := Suggest(sample, FieldCapital, "an")
	s.Empty(got)
}

func (s *SuggestSuite) TestMultibyteQuery() {
	got := Suggest(sample, FieldName, "ål")
	s.Equal([]string{"ALA"}, codes(got))
}

func (s *SuggestSuite) TestResultPartitionsRecords() {
	for _, field := range Fields {
		for _, q := range []string{"fr", "Fra", "ge", "an", "zz", "Paris"} {
			got := Suggest(sample, field, q)
			returned := map[string]bool{}
			for _, c := range got {
				returned[c.Code] = true
			}
			for _, c := range sample {
				matches := strings.HasPrefix(strings.ToLower(field.Value(c)), strings.ToLower(q))
				s.Equal(matches, returned[c.Code], "field=%s q=%q code=%s", field, q, c.Code)
			}
		}
	}
}

func TestParseField(t *testing.T) {
	for in, want := range map[string]Field{
		"":         FieldName,
		"name":     FieldName,
		"Country":  FieldName,
		"capital":  FieldCapital,
		" CAPITAL": FieldCapital,
	} {
		got, err := ParseField(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseField("region")
	assert.Error(t, err)
}

func TestLabelFallsBackToName(t *testing.T) {
	assert.Equal(t, "Paris", Label(sample[0], FieldCapital))
	assert.Equal(t, "Antarctica", Label(sample[5], FieldCapital))
	assert.Equal(t, "country", FieldName.Label())
	assert.Equal(t, "capital", FieldCapital.Label())
}

func TestState(t *testing.T) {
	st := NewState(sample).Focus()

	st = st.WithQuery("F")
	assert.False(t, st.Visible(), "one character is not enough")

	st = st.WithQuery("Fr")
	assert.True(t, st.Visible())
	assert.Equal(t, []string{"FRA", "FRC", "FRX"}, codes(st.Suggestions()))

	switched := st.WithField(FieldCapital)
	assert.Empty(t, switched.Query(), "changing field clears the query")
	assert.Empty(t, switched.Suggestions())
	assert.Equal(t, FieldCapital, switched.Field())
	assert.Equal(t, "Fr", st.Query(), "previous snapshot is untouched")

	blurred := st.Blur()
	assert.False(t, blurred.Visible())
	assert.Empty(t, blurred.Query())
}

func codes(cs []models.Country) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Code)
	}
	return out
}
