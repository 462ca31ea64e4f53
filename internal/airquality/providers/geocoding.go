package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/i474232898/aqi-dashboard/internal/airquality"
)

// OpenWeatherGeocoder implements airquality.Geocoder with the OpenWeatherMap
// direct geocoding API.
type OpenWeatherGeocoder struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewOpenWeatherGeocoder creates a geocoder. An empty baseURL uses DefaultBaseURL.
func NewOpenWeatherGeocoder(cfg HTTPClientConfig, baseURL, apiKey string) *OpenWeatherGeocoder {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &OpenWeatherGeocoder{
		name:    "openweather-geocoding",
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/") + "/geo/1.0/direct",
		httpCfg: cfg,
		circuit: newCircuitBreaker("openweather-geocoding"),
	}
}

func (g *OpenWeatherGeocoder) Name() string {
	return g.name
}

// Resolve returns the first candidate for city. The name is passed through
// unmodified.
func (g *OpenWeatherGeocoder) Resolve(ctx context.Context, city string) (airquality.Location, error) {
	if g.apiKey == "" {
		return airquality.Location{}, fmt.Errorf("openweather api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("q", city)
		values.Set("limit", "1")
		values.Set("appid", g.apiKey)

		u := fmt.Sprintf("%s?%s", g.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, g.httpCfg, g.circuit, buildRequest)
	if err != nil {
		return airquality.Location{}, unavailable(g.name, err)
	}
	defer resp.Body.Close()

	var payload []struct {
		Name    string  `json:"name"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
		Country string  `json:"country"`
		State   string  `json:"state"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return airquality.Location{}, unavailable(g.name, fmt.Errorf("decode response: %w", err))
	}

	if len(payload) == 0 {
		return airquality.Location{}, airquality.ErrUnresolvedLocation
	}

	first := payload[0]
	return airquality.Location{
		Lat:     first.Lat,
		Lon:     first.Lon,
		Name:    first.Name,
		State:   first.State,
		Country: first.Country,
	}, nil
}
