package airquality

import (
	"context"
	"errors"
)

//go:generate mockgen -source=provider.go -destination=mock/mock.go -package=mock

var (
	// ErrEmptyCity is returned when the query has no city name.
	ErrEmptyCity = errors.New("city name is required")

	// ErrUnresolvedLocation is returned when geocoding yields no candidates.
	ErrUnresolvedLocation = errors.New("city not found")

	// ErrEmptyReading is returned when the service has no reading for valid coordinates.
	ErrEmptyReading = errors.New("no air quality data for location")

	// ErrServiceUnavailable wraps transport failures, non-2xx statuses and
	// malformed payloads from upstream services.
	ErrServiceUnavailable = errors.New("upstream service unavailable")
)

// Geocoder resolves a free-text place name to coordinates.
type Geocoder interface {
	Resolve(ctx context.Context, city string) (Location, error)
}

// Fetcher retrieves the current air-quality reading for coordinates.
type Fetcher interface {
	Fetch(ctx context.Context, loc Location) (Reading, error)
}

// UserMessage maps a pipeline error to the text shown to the end user.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyCity):
		return "Please enter a city name."
	case errors.Is(err, ErrUnresolvedLocation):
		return "City not found. Please enter a valid city name."
	case errors.Is(err, ErrEmptyReading):
		return "No air quality data found for this location."
	case errors.Is(err, ErrServiceUnavailable):
		return "Air quality service is unavailable. Please try again later."
	default:
		return "Something went wrong while fetching air quality data."
	}
}
