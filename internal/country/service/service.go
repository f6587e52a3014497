// Package service assembles listing, suggestion and detail views from the
// country directory.
package service

import (
	"context"
	"errors"
	"log/slog"

	"atlas/internal/country/directory"
	"atlas/internal/country/metrics"
	"atlas/internal/country/models"
	"atlas/internal/platform/config"
	dErrors "atlas/pkg/domain-errors"
	"atlas/pkg/platform/sentinel"
)

// Directory is the read side of the country directory (usually cached).
type Directory interface {
	All(ctx context.Context) ([]models.Country, error)
	ByCode(ctx context.Context, code string) (*models.Country, error)
}

// Service is request-scoped and stateless; all shared state lives behind
// Directory.
type Service struct {
	directory         Directory
	logger            *slog.Logger
	metrics           *metrics.Metrics
	pageSize          int
	borderConcurrency int
	strictBorders     bool
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithPageSize overrides the listing page size. Used by tests.
func WithPageSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithBorderConcurrency bounds parallel border lookups per detail page.
func WithBorderConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.borderConcurrency = n
		}
	}
}

// WithStrictBorders makes any failed border lookup fail the detail view
// instead of omitting that border.
func WithStrictBorders(strict bool) Option {
	return func(s *Service) {
		s.strictBorders = strict
	}
}

// New creates a Service over dir.
func New(dir Directory, opts ...Option) *Service {
	s := &Service{
		directory:         dir,
		logger:            slog.Default(),
		pageSize:          config.PageSize,
		borderConcurrency: 8,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Country returns one country by alpha-2 or alpha-3 code.
func (s *Service) Country(ctx context.Context, code string) (*models.Country, error) {
	normalized, ok := models.NormalizeCode(code)
	if !ok {
		return nil, dErrors.New(dErrors.CodeBadRequest, "country code must be 2 or 3 letters")
	}
	country, err := s.directory.ByCode(ctx, normalized)
	if err != nil {
		return nil, translate(err, "country "+normalized)
	}
	return country, nil
}

// translate maps directory and cache failures onto domain errors.
func translate(err error, subject string) error {
	if _, ok := dErrors.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, subject+" not found")
	case directory.GetCategory(err) == directory.ErrorTimeout:
		return dErrors.Wrap(err, dErrors.CodeTimeout, "country directory timed out")
	case errors.Is(err, sentinel.ErrUnavailable), directory.GetCategory(err) == directory.ErrorCanceled:
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "country directory unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "request timed out")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load "+subject)
	}
}
