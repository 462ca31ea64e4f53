package httpapi

import (
	"embed"
	"html/template"
	"io"

	"github.com/i474232898/aqi-dashboard/internal/airquality"
)

//go:embed templates/*.html
var viewsFS embed.FS

var dashboardTmpl = template.Must(template.ParseFS(viewsFS, "templates/dashboard.html"))

// dashboardData is the view model of the dashboard page.
type dashboardData struct {
	City     string
	Message  string
	Report   *airquality.Report
	ReportID string
}

func renderDashboard(w io.Writer, data dashboardData) error {
	return dashboardTmpl.ExecuteTemplate(w, "dashboard.html", data)
}
