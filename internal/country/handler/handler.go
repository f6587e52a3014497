package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"atlas/internal/country/models"
	"atlas/internal/country/search"
	"atlas/internal/country/service"
	"atlas/internal/platform/metrics"
	"atlas/internal/platform/middleware"
	dErrors "atlas/pkg/domain-errors"
	"atlas/pkg/platform/middleware/metadata"
	"atlas/pkg/platform/middleware/requesttime"
)

// Service defines the country browsing operations the handler renders.
type Service interface {
	Listing(ctx context.Context, page int, field search.Field, query string) (*service.ListingView, error)
	Suggestions(ctx context.Context, field search.Field, query string) ([]service.Suggestion, error)
	Detail(ctx context.Context, code string) (*service.DetailView, error)
}

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

// Handler serves the HTML pages and the JSON API.
type Handler struct {
	logger         *slog.Logger
	countries      Service
	metrics        *metrics.Metrics
	pages          *renderer
	requestTimeout time.Duration
	checks         map[string]HealthCheck
	degraded       func() bool
}

// Option configures a Handler.
type Option func(*Handler)

// WithRequestTimeout bounds each request handled by the country routes.
func WithRequestTimeout(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.requestTimeout = d
		}
	}
}

// WithHealthCheck adds a named dependency check to /healthz.
func WithHealthCheck(name string, check HealthCheck) Option {
	return func(h *Handler) {
		if check != nil {
			h.checks[name] = check
		}
	}
}

// WithDegraded reports stale-data mode on /healthz.
func WithDegraded(fn func() bool) Option {
	return func(h *Handler) {
		h.degraded = fn
	}
}

// New creates a new country Handler.
func New(countries Service, logger *slog.Logger, metrics *metrics.Metrics, opts ...Option) *Handler {
	h := &Handler{
		logger:         logger,
		countries:      countries,
		metrics:        metrics,
		pages:          newRenderer(),
		requestTimeout: 30 * time.Second,
		checks:         make(map[string]HealthCheck),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register registers the country routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	countryRouter := chi.NewRouter()
	countryRouter.Use(middleware.Recovery(h.logger))
	countryRouter.Use(middleware.RequestID)
	countryRouter.Use(metadata.ClientMetadata)
	countryRouter.Use(requesttime.Middleware)
	countryRouter.Use(middleware.Logger(h.logger))
	countryRouter.Use(middleware.Timeout(h.requestTimeout))
	countryRouter.Use(middleware.LatencyMiddleware(h.metrics))

	countryRouter.Get("/", h.handleIndex)
	countryRouter.Get("/country/{code}", h.handleDetail)

	countryRouter.Get("/api/countries", h.handleListCountries)
	countryRouter.Get("/api/countries/{code}", h.handleGetCountry)
	countryRouter.Get("/api/suggestions", h.handleSuggestions)

	countryRouter.Get("/healthz", h.handleHealth)

	r.Mount("/", countryRouter)
}

// parsePage reads the page query parameter. Anything that is not a positive
// integer means the first page.
func parsePage(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func parseField(r *http.Request) (search.Field, error) {
	field, err := search.ParseField(r.URL.Query().Get("field"))
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeBadRequest, "field must be name or capital")
	}
	return field, nil
}

// logFailure logs at warn for client and upstream errors and at error for
// internal ones.
func (h *Handler) logFailure(ctx context.Context, msg string, err error) {
	requestID := middleware.GetRequestID(ctx)
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, msg, "request_id", requestID, "error", err)
		return
	}
	if _, ok := dErrors.As(err); !ok {
		h.logger.ErrorContext(ctx, msg, "request_id", requestID, "error", err)
		return
	}
	h.logger.WarnContext(ctx, msg, "request_id", requestID, "error", err)
}

// cardsOrEmpty keeps JSON arrays from encoding as null.
func cardsOrEmpty(cards []models.Card) []models.Card {
	if cards == nil {
		return []models.Card{}
	}
	return cards
}
