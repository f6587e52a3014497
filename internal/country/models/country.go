package models

import (
	"regexp"
	"strings"
)

// Country is one record as returned by the country directory.
// JSON tags follow the directory's v2 wire format.
type Country struct {
	Name       string     `json:"name"`
	Capital    string     `json:"capital"`
	Code       string     `json:"alpha3Code"`
	Alpha2     string     `json:"alpha2Code"`
	Region     string     `json:"region"`
	Population int64      `json:"population"`
	Flag       string     `json:"flag"`
	Currencies []Currency `json:"currencies"`
	Languages  []Language `json:"languages"`
	Borders    []string   `json:"borders"`
}

type Currency struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

type Language struct {
	Name       string `json:"name"`
	NativeName string `json:"nativeName"`
	ISO639_1   string `json:"iso639_1"`
	ISO639_2   string `json:"iso639_2"`
}

// Codes lists the keys the country can be looked up by: alpha-3 first,
// then alpha-2 when known.
func (c Country) Codes() []string {
	codes := make([]string, 0, 2)
	if c.Code != "" {
		codes = append(codes, c.Code)
	}
	if c.Alpha2 != "" && c.Alpha2 != c.Code {
		codes = append(codes, c.Alpha2)
	}
	return codes
}

// HasCode reports whether code is the country's alpha-3 or alpha-2 code.
func (c Country) HasCode(code string) bool {
	return code != "" && (code == c.Code || code == c.Alpha2)
}

// CurrencyCodes lists currency codes in source order, skipping blanks.
func (c Country) CurrencyCodes() []string {
	codes := make([]string, 0, len(c.Currencies))
	for _, cur := range c.Currencies {
		if cur.Code != "" {
			codes = append(codes, cur.Code)
		}
	}
	return codes
}

// LanguageNames lists language names in source order.
func (c Country) LanguageNames() []string {
	names := make([]string, 0, len(c.Languages))
	for _, l := range c.Languages {
		if l.Name != "" {
			names = append(names, l.Name)
		}
	}
	return names
}

var codePattern = regexp.MustCompile(`^[A-Z]{2,3}$`)

// NormalizeCode upper-cases and trims a country code and reports whether it
// has the shape of an ISO 3166-1 alpha-2 or alpha-3 code.
func NormalizeCode(code string) (string, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	return code, codePattern.MatchString(code)
}
