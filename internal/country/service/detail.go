package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"atlas/internal/country/models"
	dErrors "atlas/pkg/domain-errors"
	platformstrings "atlas/pkg/platform/strings"
)

// DetailView is a country page: the record, its currency and language
// summaries and its resolved neighbours in border order.
type DetailView struct {
	Country        models.Country
	Currencies     []string
	Languages      []string
	Borders        []models.Country
	BorderCards    []models.Card
	MissingBorders []string
}

// Detail resolves code and every border code concurrently. Failed border
// lookups are omitted and listed in MissingBorders unless strict borders are
// enabled, in which case the first failure fails the view.
func (s *Service) Detail(ctx context.Context, code string) (*DetailView, error) {
	country, err := s.Country(ctx, code)
	if err != nil {
		return nil, err
	}

	borders, missing, err := s.resolveBorders(ctx, country.Borders)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		s.logger.WarnContext(ctx, "omitting unresolved border countries",
			"code", country.Code,
			"missing", missing,
		)
	}

	return &DetailView{
		Country:        *country,
		Currencies:     country.CurrencyCodes(),
		Languages:      country.LanguageNames(),
		Borders:        borders,
		BorderCards:    models.NewCards(borders, true),
		MissingBorders: missing,
	}, nil
}

func (s *Service) resolveBorders(ctx context.Context, codes []string) ([]models.Country, []string, error) {
	codes = platformstrings.DedupeUpper(codes)
	if len(codes) == 0 {
		return []models.Country{}, nil, nil
	}
	start := time.Now()
	defer func() { s.metrics.ObserveBorderFanout(time.Since(start)) }()

	resolved := make([]*models.Country, len(codes))
	failures := make([]error, len(codes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.borderConcurrency)
	for i, code := range codes {
		g.Go(func() error {
			country, err := s.Country(gctx, code)
			if err != nil {
				if s.strictBorders {
					return fmt.Errorf("border %s: %w", code, err)
				}
				failures[i] = err
				return nil
			}
			resolved[i] = country
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.metrics.IncBorderFailures(1)
		s.logger.ErrorContext(ctx, "border lookup failed", "error", err)
		return nil, nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to resolve bordering countries")
	}

	borders := make([]models.Country, 0, len(codes))
	var missing []string
	for i, country := range resolved {
		if country == nil {
			missing = append(missing, codes[i])
			s.logger.DebugContext(ctx, "border lookup failed", "border", codes[i], "error", failures[i])
			continue
		}
		borders = append(borders, *country)
	}
	s.metrics.IncBorderFailures(len(missing))
	return borders, missing, nil
}
