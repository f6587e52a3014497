package handler

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"atlas/internal/country/models"
	"atlas/internal/country/search"
	"atlas/internal/country/service"
	"atlas/pkg/platform/httputil"
)

type fieldOption struct {
	Value    search.Field
	Label    string
	Selected bool
}

type indexPage struct {
	Title  string
	View   *service.ListingView
	Fields []fieldOption
}

type detailPage struct {
	Title      string
	View       *service.DetailView
	Card       models.Card
	Population string
	BackHref   string
}

type errorPage struct {
	Title   string
	Status  int
	Code    string
	Message string
}

func fieldOptions(selected search.Field) []fieldOption {
	opts := make([]fieldOption, 0, len(search.Fields))
	for _, f := range search.Fields {
		opts = append(opts, fieldOption{Value: f, Label: f.Label(), Selected: f == selected})
	}
	return opts
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	field, err := parseField(r)
	if err != nil {
		h.renderError(ctx, w, "invalid search field", err)
		return
	}

	view, err := h.countries.Listing(ctx, parsePage(r), field, r.URL.Query().Get("q"))
	if err != nil {
		h.renderError(ctx, w, "failed to list countries", err)
		return
	}

	h.renderPage(ctx, w, http.StatusOK, "index.html", indexPage{
		Title:  "Where in the world?",
		View:   view,
		Fields: fieldOptions(view.Field),
	})
}

func (h *Handler) handleDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	view, err := h.countries.Detail(ctx, chi.URLParam(r, "code"))
	if err != nil {
		h.renderError(ctx, w, "failed to load country", err)
		return
	}

	h.renderPage(ctx, w, http.StatusOK, "detail.html", detailPage{
		Title:      view.Country.Name,
		View:       view,
		Card:       models.NewCard(view.Country, false),
		Population: models.FormatPopulation(view.Country.Population),
		BackHref:   backHref(r),
	})
}

// backHref is the listing page the visitor came from when the referrer is a
// listing on this host, and the first page otherwise.
func backHref(r *http.Request) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Host != r.Host || ref.Path != "/" || ref.RawQuery == "" {
		return "/"
	}
	return "/?" + ref.RawQuery
}

func (h *Handler) renderError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	h.logFailure(ctx, msg, err)
	status, code, description := httputil.ErrorResponse(err)
	if description == "" {
		description = http.StatusText(status)
	}
	h.renderPage(ctx, w, status, "error.html", errorPage{
		Title:   http.StatusText(status),
		Status:  status,
		Code:    code,
		Message: description,
	})
}

func (h *Handler) renderPage(ctx context.Context, w http.ResponseWriter, status int, page string, data any) {
	if err := h.pages.render(w, status, page, data); err != nil {
		h.logger.ErrorContext(ctx, "failed to render page", "page", page, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
