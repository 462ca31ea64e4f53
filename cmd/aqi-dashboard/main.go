package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/i474232898/aqi-dashboard/internal/airquality"
	"github.com/i474232898/aqi-dashboard/internal/airquality/providers"
	httpapi "github.com/i474232898/aqi-dashboard/internal/api/http"
	"github.com/i474232898/aqi-dashboard/internal/config"
	"github.com/i474232898/aqi-dashboard/internal/logger"
	"github.com/i474232898/aqi-dashboard/internal/scheduler"
	"github.com/i474232898/aqi-dashboard/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal(fmt.Errorf("failed to load config: %w", err))
	}
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		logger.Fatal(err)
	}

	// Shared HTTP client for outbound calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}
	httpCfg := providers.NewHTTPClientConfig(httpClient, cfg.UpstreamMaxRetries)

	var geocoder airquality.Geocoder
	switch cfg.Geocoder {
	case config.GeocoderGoogle:
		geocoder = providers.NewGoogleGeocoder(cfg.GoogleGeocoderAPIKey)
	default:
		geocoder = providers.NewOpenWeatherGeocoder(httpCfg, cfg.OpenWeatherBaseURL, cfg.OpenWeatherAPIKey)
	}
	fetcher := providers.NewOpenWeatherAirPollution(httpCfg, cfg.OpenWeatherBaseURL, cfg.OpenWeatherAPIKey)

	service := airquality.NewService(geocoder, fetcher, airquality.NewFormatter(cfg.DisplayZone))

	// Reports rendered on the dashboard, kept for chart/CSV re-render only.
	reports := store.NewMemoryStore(cfg.ReportCacheSize, cfg.ReportCacheTTL)

	sched := scheduler.New(reports, cfg.ReportPruneInterval)
	if err := sched.Start(); err != nil {
		logger.Fatal(fmt.Errorf("failed to start scheduler: %w", err))
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "aqi-dashboard",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	app.Use(fiberlogger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "aqi-dashboard",
		})
	})

	httpapi.RegisterRoutes(app, service, reports, cfg.DefaultCity)

	go func() {
		logger.Infof("starting aqi-dashboard on port %s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Error(fmt.Errorf("fiber server stopped: %w", err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error(fmt.Errorf("error during shutdown: %w", err))
	}
}
