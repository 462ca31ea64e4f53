package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/tj/assert"

	"github.com/i474232898/aqi-dashboard/internal/airquality"
	"github.com/i474232898/aqi-dashboard/internal/store"
)

type stubService struct {
	calls   []string
	reports map[string]airquality.Report
	err     error
}

func (s *stubService) Report(_ context.Context, city string) (airquality.Report, error) {
	s.calls = append(s.calls, city)
	if s.err != nil {
		return airquality.Report{}, s.err
	}
	r, ok := s.reports[city]
	if !ok {
		return airquality.Report{}, airquality.ErrUnresolvedLocation
	}
	return r, nil
}

func bengaluruReport() airquality.Report {
	reading := airquality.Reading{
		Index: 3,
		Pollutants: map[airquality.Pollutant]float64{
			airquality.PollutantCO: 200.5,
			airquality.PollutantO3: 45.2,
		},
		ObservedAt: time.Unix(1700000000, 0).UTC(),
	}
	loc := airquality.Location{Lat: 12.97, Lon: 77.59, Name: "Bengaluru", Country: "IN"}
	return airquality.NewFormatter(nil).Format(loc, reading, "Bengaluru")
}

func newTestApp(svc ReportService) (*fiber.App, *store.MemoryStore) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	cache := store.NewMemoryStore(10, time.Hour)
	RegisterRoutes(app, svc, cache, "Bengaluru")
	return app, cache
}

func doGet(t *testing.T, app *fiber.App, target string) (*http.Response, []byte) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil), -1)
	assert.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	_ = resp.Body.Close()
	return resp, body
}

func TestReportJSON(t *testing.T) {
	svc := &stubService{reports: map[string]airquality.Report{"Bengaluru": bengaluruReport()}}
	app, _ := newTestApp(svc)

	resp, body := doGet(t, app, "/api/v1/air-quality?city=Bengaluru")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Headline string            `json:"headline"`
		Report   airquality.Report `json:"report"`
	}
	assert.NoError(t, json.Unmarshal(body, &payload))
	assert.Equal(t, "AQI for Bengaluru: 3 (Moderate)", payload.Headline)
	assert.Equal(t, "2023-11-15 03:43:20 AM", payload.Report.Timestamp)
	assert.Len(t, payload.Report.Concentrations, 2)
}

func TestReportErrors(t *testing.T) {
	cases := []struct {
		name           string
		target         string
		err            error
		expectedStatus int
		expectedMsg    string
		expectCall     bool
	}{
		{
			name:           "missing city",
			target:         "/api/v1/air-quality",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unresolved city",
			target:         "/api/v1/air-quality?city=Xyzzyplex",
			err:            fmt.Errorf("resolve: %w", airquality.ErrUnresolvedLocation),
			expectedStatus: http.StatusNotFound,
			expectedMsg:    "City not found. Please enter a valid city name.",
			expectCall:     true,
		},
		{
			name:           "empty reading",
			target:         "/api/v1/air-quality/chart.png?city=Bengaluru",
			err:            airquality.ErrEmptyReading,
			expectedStatus: http.StatusNotFound,
			expectedMsg:    "No air quality data found for this location.",
			expectCall:     true,
		},
		{
			name:           "upstream down",
			target:         "/api/v1/air-quality/export.csv?city=Bengaluru",
			err:            fmt.Errorf("%w: timeout", airquality.ErrServiceUnavailable),
			expectedStatus: http.StatusBadGateway,
			expectedMsg:    "Air quality service is unavailable. Please try again later.",
			expectCall:     true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubService{err: tc.err}
			app, _ := newTestApp(svc)

			resp, body := doGet(t, app, tc.target)
			assert.Equal(t, tc.expectedStatus, resp.StatusCode)
			assert.Equal(t, tc.expectCall, len(svc.calls) == 1)

			var payload struct {
				Error   bool   `json:"error"`
				Message string `json:"message"`
			}
			assert.NoError(t, json.Unmarshal(body, &payload))
			assert.True(t, payload.Error)
			if tc.expectedMsg != "" {
				assert.Equal(t, tc.expectedMsg, payload.Message)
			}
		})
	}
}

func TestChartPNG(t *testing.T) {
	svc := &stubService{reports: map[string]airquality.Report{"Bengaluru": bengaluruReport()}}
	app, _ := newTestApp(svc)

	resp, body := doGet(t, app, "/api/v1/air-quality/chart.png?city=Bengaluru")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get(fiber.HeaderContentType))

	_, err := png.DecodeConfig(bytes.NewReader(body))
	assert.NoError(t, err)
}

func TestExportCSV(t *testing.T) {
	svc := &stubService{reports: map[string]airquality.Report{"Bengaluru": bengaluruReport()}}
	app, _ := newTestApp(svc)

	resp, body := doGet(t, app, "/api/v1/air-quality/export.csv?city=Bengaluru")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), "text/csv"))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "air_quality_Bengaluru_2023-11-15_03-43-20_AM.csv")
	assert.Equal(t, "City,Timestamp,CO,O3\nBengaluru,2023-11-15 03:43:20 AM,200.5,45.2\n", string(body))
}

var reportIDPattern = regexp.MustCompile(`/api/v1/reports/([0-9a-f-]+)/chart\.png`)

func TestDashboardServesCachedArtifacts(t *testing.T) {
	svc := &stubService{reports: map[string]airquality.Report{"Bengaluru": bengaluruReport()}}
	app, cache := newTestApp(svc)

	resp, body := doGet(t, app, "/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"Bengaluru"}, svc.calls)
	assert.Contains(t, string(body), "AQI for Bengaluru: 3 (Moderate)")
	assert.Equal(t, 1, cache.Len())

	m := reportIDPattern.FindStringSubmatch(string(body))
	assert.Len(t, m, 2)
	id := m[1]

	resp, _ = doGet(t, app, "/api/v1/reports/"+id+"/chart.png")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doGet(t, app, "/api/v1/reports/"+id+"/export.csv")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(string(body), "City,Timestamp,CO,O3\n"))

	// Re-rendering from the cache does not query upstream again.
	assert.Len(t, svc.calls, 1)

	resp, _ = doGet(t, app, "/api/v1/reports/unknown/export.csv")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDashboardShowsMessage(t *testing.T) {
	svc := &stubService{}
	app, cache := newTestApp(svc)

	resp, body := doGet(t, app, "/?city=Xyzzyplex")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(body), "City not found. Please enter a valid city name.")
	assert.Equal(t, 0, cache.Len())
}

func TestChartWithoutRecognizedPollutants(t *testing.T) {
	reading := airquality.Reading{
		Index:      2,
		Pollutants: map[airquality.Pollutant]float64{},
		ObservedAt: time.Unix(1700000000, 0).UTC(),
	}
	bare := airquality.NewFormatter(nil).Format(airquality.Location{Lat: 1, Lon: 2}, reading, "Nowhere")
	svc := &stubService{reports: map[string]airquality.Report{"Nowhere": bare}}
	app, _ := newTestApp(svc)

	resp, body := doGet(t, app, "/?city=Nowhere")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "AQI for Nowhere: 2 (Fair)")

	m := reportIDPattern.FindStringSubmatch(string(body))
	assert.Len(t, m, 2)

	for _, target := range []string{
		"/api/v1/reports/" + m[1] + "/chart.png",
		"/api/v1/air-quality/chart.png?city=Nowhere",
	} {
		resp, body = doGet(t, app, target)
		assert.Equal(t, http.StatusOK, resp.StatusCode, target)
		assert.Equal(t, "image/png", resp.Header.Get(fiber.HeaderContentType))
		_, err := png.DecodeConfig(bytes.NewReader(body))
		assert.NoError(t, err)
	}

	resp, body = doGet(t, app, "/api/v1/air-quality/export.csv?city=Nowhere")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "City,Timestamp\nNowhere,2023-11-15 03:43:20 AM\n", string(body))
}
