package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/aqi-dashboard/internal/airquality"
	"github.com/i474232898/aqi-dashboard/internal/logger"
)

const (
	GeocoderOpenWeather = "openweather"
	GeocoderGoogle      = "google"
)

var errMissingAPIKey = errors.New("OPENWEATHER_API_KEY is required")

type AppConfig struct {
	OpenWeatherAPIKey  string
	OpenWeatherBaseURL string

	// Geocoder selects the geocoding backend: "openweather" or "google".
	Geocoder             string
	GoogleGeocoderAPIKey string

	HTTPTimeout        time.Duration
	UpstreamMaxRetries int

	// DisplayZone is the fixed offset used for timestamps and export names.
	DisplayZone *time.Location
	DefaultCity string

	// Dashboard report cache.
	ReportCacheSize     int
	ReportCacheTTL      time.Duration
	ReportPruneInterval time.Duration

	LogLevel string
	Port     string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		logger.Infof("no .env file found or error loading it: %v", err)
	}
	return fromEnv()
}

func fromEnv() (*AppConfig, error) {
	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = strings.TrimSpace(os.Getenv("OPENWEATHER_API_KEY"))
	if cfg.OpenWeatherAPIKey == "" {
		return nil, errMissingAPIKey
	}
	cfg.OpenWeatherBaseURL = getenvDefault("OPENWEATHER_BASE_URL", "https://api.openweathermap.org")

	cfg.Geocoder = strings.ToLower(getenvDefault("GEOCODER", GeocoderOpenWeather))
	switch cfg.Geocoder {
	case GeocoderOpenWeather:
	case GeocoderGoogle:
		cfg.GoogleGeocoderAPIKey = os.Getenv("GOOGLE_GEOCODER_API_KEY")
		if cfg.GoogleGeocoderAPIKey == "" {
			return nil, fmt.Errorf("GOOGLE_GEOCODER_API_KEY is required when GEOCODER=%s", GeocoderGoogle)
		}
	default:
		return nil, fmt.Errorf("invalid GEOCODER %q (allowed: %s, %s)", cfg.Geocoder, GeocoderOpenWeather, GeocoderGoogle)
	}

	timeout, err := time.ParseDuration(getenvDefault("HTTP_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	// No retries by default: one upstream call per pipeline step.
	cfg.UpstreamMaxRetries = getenvInt("UPSTREAM_MAX_RETRIES", 0)
	if cfg.UpstreamMaxRetries < 0 {
		return nil, fmt.Errorf("invalid UPSTREAM_MAX_RETRIES: must be >= 0")
	}

	zone, err := airquality.ParseOffset(getenvDefault("DISPLAY_UTC_OFFSET", "+05:30"))
	if err != nil {
		return nil, fmt.Errorf("invalid DISPLAY_UTC_OFFSET: %w", err)
	}
	cfg.DisplayZone = zone
	cfg.DefaultCity = getenvDefault("DEFAULT_CITY", "Bengaluru")

	cfg.ReportCacheSize = getenvInt("REPORT_CACHE_SIZE", 100)

	ttl, err := time.ParseDuration(getenvDefault("REPORT_CACHE_TTL", "30m"))
	if err != nil {
		return nil, fmt.Errorf("invalid REPORT_CACHE_TTL: %w", err)
	}
	cfg.ReportCacheTTL = ttl

	prune, err := time.ParseDuration(getenvDefault("REPORT_PRUNE_INTERVAL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid REPORT_PRUNE_INTERVAL: %w", err)
	}
	cfg.ReportPruneInterval = prune

	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")
	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
