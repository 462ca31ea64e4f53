package httpapi

import (
	"bytes"
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/aqi-dashboard/internal/airquality"
	"github.com/i474232898/aqi-dashboard/internal/chart"
	"github.com/i474232898/aqi-dashboard/internal/logger"
	"github.com/i474232898/aqi-dashboard/internal/store"
)

var validate = validator.New()

// ReportService builds a fresh report for a city.
type ReportService interface {
	Report(ctx context.Context, city string) (airquality.Report, error)
}

// ReportCache keeps rendered reports so a page's chart and export can be
// served again without another upstream query.
type ReportCache interface {
	Save(report airquality.Report) string
	Get(id string) (airquality.Report, error)
}

type handler struct {
	service     ReportService
	cache       ReportCache
	defaultCity string
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service ReportService, cache ReportCache, defaultCity string) {
	h := &handler{service: service, cache: cache, defaultCity: defaultCity}

	app.Get("/", h.dashboard)

	v1 := app.Group("/api/v1")
	v1.Get("/air-quality", h.report)
	v1.Get("/air-quality/chart.png", h.chart)
	v1.Get("/air-quality/export.csv", h.export)
	v1.Get("/reports/:id/chart.png", h.cachedChart)
	v1.Get("/reports/:id/export.csv", h.cachedExport)
}

// cityQuery holds the query parameter identifying the city.
type cityQuery struct {
	City string `validate:"required,max=200"`
}

func parseCityQuery(c *fiber.Ctx) (cityQuery, error) {
	q := cityQuery{City: c.Query("city")}
	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}

func (h *handler) dashboard(c *fiber.Ctx) error {
	city := c.Query("city", h.defaultCity)
	data := dashboardData{City: city}
	status := fiber.StatusOK

	report, err := h.service.Report(c.UserContext(), city)
	if err != nil {
		status = statusFor(err)
		data.Message = airquality.UserMessage(err)
	} else {
		data.Report = &report
		data.ReportID = h.cache.Save(report)
	}

	var buf bytes.Buffer
	if err := renderDashboard(&buf, data); err != nil {
		logger.Error(err)
		return fiber.NewError(fiber.StatusInternalServerError, "failed to render dashboard")
	}

	c.Type("html", "utf-8")
	return c.Status(status).Send(buf.Bytes())
}

func (h *handler) report(c *fiber.Ctx) error {
	report, err := h.fetch(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"headline": report.Headline(),
		"report":   report,
	})
}

func (h *handler) chart(c *fiber.Ctx) error {
	report, err := h.fetch(c)
	if err != nil {
		return err
	}
	return sendChart(c, report)
}

func (h *handler) export(c *fiber.Ctx) error {
	report, err := h.fetch(c)
	if err != nil {
		return err
	}
	return sendExport(c, report)
}

func (h *handler) cachedChart(c *fiber.Ctx) error {
	report, err := h.cached(c)
	if err != nil {
		return err
	}
	return sendChart(c, report)
}

func (h *handler) cachedExport(c *fiber.Ctx) error {
	report, err := h.cached(c)
	if err != nil {
		return err
	}
	return sendExport(c, report)
}

func (h *handler) fetch(c *fiber.Ctx) (airquality.Report, error) {
	q, err := parseCityQuery(c)
	if err != nil {
		return airquality.Report{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	report, err := h.service.Report(c.UserContext(), q.City)
	if err != nil {
		return airquality.Report{}, fiber.NewError(statusFor(err), airquality.UserMessage(err))
	}
	return report, nil
}

func (h *handler) cached(c *fiber.Ctx) (airquality.Report, error) {
	report, err := h.cache.Get(c.Params("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return airquality.Report{}, fiber.NewError(fiber.StatusNotFound, "report expired or unknown; reload the dashboard")
		}
		return airquality.Report{}, fiber.NewError(fiber.StatusInternalServerError, "failed to load report")
	}
	return report, nil
}

func sendChart(c *fiber.Ctx, report airquality.Report) error {
	img, err := chart.RenderPNG(report)
	if err != nil {
		logger.Error(err)
		return fiber.NewError(fiber.StatusInternalServerError, "failed to render chart")
	}

	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(img)
}

func sendExport(c *fiber.Ctx, report airquality.Report) error {
	record := airquality.NewExportRecord(report)

	var buf bytes.Buffer
	if err := record.WriteCSV(&buf); err != nil {
		logger.Error(err)
		return fiber.NewError(fiber.StatusInternalServerError, "failed to build export")
	}

	c.Attachment(record.FileName)
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	return c.Send(buf.Bytes())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, airquality.ErrEmptyCity):
		return fiber.StatusBadRequest
	case errors.Is(err, airquality.ErrUnresolvedLocation), errors.Is(err, airquality.ErrEmptyReading):
		return fiber.StatusNotFound
	case errors.Is(err, airquality.ErrServiceUnavailable):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
