package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/aqi-dashboard/internal/airquality"
)

// OpenWeatherAirPollution implements airquality.Fetcher with the
// OpenWeatherMap current air pollution API.
type OpenWeatherAirPollution struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewOpenWeatherAirPollution creates a fetcher. An empty baseURL uses DefaultBaseURL.
func NewOpenWeatherAirPollution(cfg HTTPClientConfig, baseURL, apiKey string) *OpenWeatherAirPollution {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &OpenWeatherAirPollution{
		name:    "openweather-air-pollution",
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/") + "/data/2.5/air_pollution",
		httpCfg: cfg,
		circuit: newCircuitBreaker("openweather-air-pollution"),
	}
}

func (p *OpenWeatherAirPollution) Name() string {
	return p.name
}

// Fetch returns the first reading of the service's list.
func (p *OpenWeatherAirPollution) Fetch(ctx context.Context, loc airquality.Location) (airquality.Reading, error) {
	if p.apiKey == "" {
		return airquality.Reading{}, fmt.Errorf("openweather api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("lat", strconv.FormatFloat(loc.Lat, 'f', -1, 64))
		values.Set("lon", strconv.FormatFloat(loc.Lon, 'f', -1, 64))
		values.Set("appid", p.apiKey)

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return airquality.Reading{}, unavailable(p.name, err)
	}
	defer resp.Body.Close()

	var payload struct {
		Coord *struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"coord"`
		List []struct {
			Dt   int64 `json:"dt"`
			Main struct {
				AQI int `json:"aqi"`
			} `json:"main"`
			Components map[string]float64 `json:"components"`
		} `json:"list"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return airquality.Reading{}, unavailable(p.name, fmt.Errorf("decode response: %w", err))
	}

	if len(payload.List) == 0 {
		return airquality.Reading{}, airquality.ErrEmptyReading
	}

	first := payload.List[0]

	pollutants := make(map[airquality.Pollutant]float64, len(first.Components))
	for key, value := range first.Components {
		code, ok := airquality.ParseComponent(key)
		if !ok {
			continue
		}
		pollutants[code] = value
	}

	reading := airquality.Reading{
		Index:      first.Main.AQI,
		Pollutants: pollutants,
		ObservedAt: time.Unix(first.Dt, 0).UTC(),
	}
	if payload.Coord != nil {
		reading.Station = &airquality.Location{Lat: payload.Coord.Lat, Lon: payload.Coord.Lon}
	}

	return reading, nil
}
