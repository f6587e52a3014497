package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"atlas/internal/country/models"
	"atlas/internal/country/pagination"
	"atlas/internal/country/search"
	"atlas/pkg/platform/httputil"
)

type pageSlot struct {
	Page    int  `json:"page"`
	Gap     bool `json:"gap"`
	Current bool `json:"current"`
}

type listResponse struct {
	Page         int           `json:"page"`
	TotalPages   int           `json:"total_pages"`
	TotalRecords int           `json:"total_records"`
	Countries    []models.Card `json:"countries"`
	Pagination   []pageSlot    `json:"pagination"`
}

type suggestionItem struct {
	Code  string `json:"code"`
	Label string `json:"label"`
	Href  string `json:"href"`
}

type suggestionsResponse struct {
	Field       search.Field     `json:"field"`
	Query       string           `json:"query"`
	Suggestions []suggestionItem `json:"suggestions"`
}

type detailResponse struct {
	Country        models.Country `json:"country"`
	Population     string         `json:"population"`
	Currencies     []string       `json:"currencies"`
	Languages      []string       `json:"languages"`
	Borders        []models.Card  `json:"borders"`
	MissingBorders []string       `json:"missing_borders,omitempty"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func toSlots(window []pagination.Slot) []pageSlot {
	out := make([]pageSlot, 0, len(window))
	for _, s := range window {
		out = append(out, pageSlot{Page: s.Number, Gap: s.IsGap(), Current: s.Current})
	}
	return out
}

func (h *Handler) handleListCountries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	view, err := h.countries.Listing(ctx, parsePage(r), search.FieldName, "")
	if err != nil {
		h.logFailure(ctx, "failed to list countries", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, listResponse{
		Page:         view.Page,
		TotalPages:   view.TotalPages,
		TotalRecords: view.TotalRecords,
		Countries:    cardsOrEmpty(view.Cards),
		Pagination:   toSlots(view.Window),
	})
}

func (h *Handler) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	field, err := parseField(r)
	if err != nil {
		h.logFailure(ctx, "invalid suggestion request", err)
		httputil.WriteError(w, err)
		return
	}
	query := r.URL.Query().Get("q")

	suggestions, err := h.countries.Suggestions(ctx, field, query)
	if err != nil {
		h.logFailure(ctx, "failed to compute suggestions", err)
		httputil.WriteError(w, err)
		return
	}

	items := make([]suggestionItem, 0, len(suggestions))
	for _, s := range suggestions {
		items = append(items, suggestionItem{Code: s.Code, Label: s.Label, Href: s.Href})
	}
	httputil.WriteJSON(w, http.StatusOK, suggestionsResponse{
		Field:       field,
		Query:       query,
		Suggestions: items,
	})
}

func (h *Handler) handleGetCountry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	view, err := h.countries.Detail(ctx, chi.URLParam(r, "code"))
	if err != nil {
		h.logFailure(ctx, "failed to load country", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, detailResponse{
		Country:        view.Country,
		Population:     models.FormatPopulation(view.Country.Population),
		Currencies:     view.Currencies,
		Languages:      view.Languages,
		Borders:        cardsOrEmpty(view.BorderCards),
		MissingBorders: view.MissingBorders,
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(h.checks))}
	status := http.StatusOK

	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.logger.WarnContext(ctx, "health check failed", "check", name, "error", err)
			resp.Checks[name] = err.Error()
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}
	if status == http.StatusOK && h.degraded != nil && h.degraded() {
		resp.Status = "degraded"
	}

	httputil.WriteJSON(w, status, resp)
}
