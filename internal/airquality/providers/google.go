package providers

import (
	"context"
	"fmt"
	"sync"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/aqi-dashboard/internal/airquality"
	"github.com/i474232898/aqi-dashboard/internal/common"
)

// geocoderMu guards the package-level API key of kelvins/geocoder.
var geocoderMu sync.Mutex

// GoogleGeocoder implements airquality.Geocoder with the Google Geocoding API.
type GoogleGeocoder struct {
	name   string
	apiKey string

	// lookup is swapped in tests.
	lookup func(geocoder.Address) (geocoder.Location, error)
}

// NewGoogleGeocoder creates a geocoder backed by Google.
func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	return &GoogleGeocoder{
		name:   "google-geocoding",
		apiKey: apiKey,
		lookup: geocoder.Geocoding,
	}
}

func (g *GoogleGeocoder) Name() string {
	return g.name
}

// Resolve looks up city. The library does not take a context, so cancellation
// is only honoured before the call.
func (g *GoogleGeocoder) Resolve(ctx context.Context, city string) (airquality.Location, error) {
	if g.apiKey == "" {
		return airquality.Location{}, fmt.Errorf("google geocoder api key is not configured")
	}
	if err := ctx.Err(); err != nil {
		return airquality.Location{}, unavailable(g.name, err)
	}

	geocoderMu.Lock()
	geocoder.ApiKey = g.apiKey
	loc, err := g.lookup(geocoder.Address{City: city})
	geocoderMu.Unlock()

	if err != nil {
		if common.HasAny(err.Error(), "No results") {
			return airquality.Location{}, airquality.ErrUnresolvedLocation
		}
		return airquality.Location{}, unavailable(g.name, err)
	}

	return airquality.Location{
		Lat:  loc.Latitude,
		Lon:  loc.Longitude,
		Name: city,
	}, nil
}
