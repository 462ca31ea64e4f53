package airquality

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/i474232898/aqi-dashboard/internal/logger"
)

// Service runs the per-query pipeline: geocode, fetch, format.
type Service struct {
	geocoder  Geocoder
	fetcher   Fetcher
	formatter *Formatter
}

// NewService creates a new Service.
func NewService(geocoder Geocoder, fetcher Fetcher, formatter *Formatter) *Service {
	if formatter == nil {
		formatter = NewFormatter(nil)
	}
	return &Service{
		geocoder:  geocoder,
		fetcher:   fetcher,
		formatter: formatter,
	}
}

// Report resolves city, fetches its current reading and formats it. Each call
// issues exactly one geocoding request and, when the city resolves, exactly
// one air-quality request.
func (s *Service) Report(ctx context.Context, city string) (Report, error) {
	if city == "" {
		return Report{}, ErrEmptyCity
	}

	log := logger.WithFields(logrus.Fields{"city": city})

	loc, err := s.geocoder.Resolve(ctx, city)
	if err != nil {
		if !errors.Is(err, ErrUnresolvedLocation) {
			log.WithError(err).Error("geocoding failed")
		}
		return Report{}, fmt.Errorf("resolve %q: %w", city, err)
	}

	reading, err := s.fetcher.Fetch(ctx, loc)
	if err != nil {
		if !errors.Is(err, ErrEmptyReading) {
			log.WithError(err).Error("air quality fetch failed")
		}
		return Report{}, fmt.Errorf("fetch air quality for %q: %w", city, err)
	}

	report := s.formatter.Format(loc, reading, city)
	log.WithFields(logrus.Fields{
		"aqi":        reading.Index,
		"pollutants": len(report.Concentrations),
	}).Debug("report built")

	return report, nil
}
