package models

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// InfoItem is one labelled line on a card.
type InfoItem struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Card is the presentation of a country in listings and border strips.
type Card struct {
	Href  string     `json:"href"`
	Image string     `json:"image"`
	Alt   string     `json:"alt"`
	Title string     `json:"title"`
	Info  []InfoItem `json:"info"`
	Small bool       `json:"small,omitempty"`
}

var printer = message.NewPrinter(language.English)

// FormatPopulation renders a population with thousands separators.
func FormatPopulation(n int64) string {
	return printer.Sprintf("%d", n)
}

// Href is the detail page path for a country.
func Href(code string) string {
	return "/country/" + code
}

// NewCard builds the card shown for c. Small cards are used for borders.
func NewCard(c Country, small bool) Card {
	return Card{
		Href:  Href(c.Code),
		Image: c.Flag,
		Alt:   "country flag",
		Title: c.Name,
		Info: []InfoItem{
			{Label: "Capital City", Value: c.Capital},
			{Label: "Population", Value: FormatPopulation(c.Population)},
			{Label: "Region", Value: c.Region},
		},
		Small: small,
	}
}

// NewCards maps NewCard over countries.
func NewCards(countries []Country, small bool) []Card {
	cards := make([]Card, 0, len(countries))
	for _, c := range countries {
		cards = append(cards, NewCard(c, small))
	}
	return cards
}
