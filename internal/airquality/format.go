package airquality

import (
	"fmt"
	"strings"
	"time"

	"github.com/umahmood/haversine"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// TimestampLayout renders local times as "2006-01-02 03:04:05 PM".
	TimestampLayout = "2006-01-02 03:04:05 PM"

	fileTimestampLayout = "2006-01-02_03-04-05_PM"
)

// DefaultZone is the fixed display offset (UTC+05:30, no DST).
var DefaultZone = time.FixedZone("UTC+05:30", 5*60*60+30*60)

var categories = map[int]string{
	1: "Good",
	2: "Fair",
	3: "Moderate",
	4: "Poor",
	5: "Very Poor",
}

// CategoryLabel returns the fixed label for an AQI index, or "Unknown".
func CategoryLabel(index int) string {
	if label, ok := categories[index]; ok {
		return label
	}
	return "Unknown"
}

const maxOffset = 14 * 60 * 60

// ParseOffset parses a fixed UTC offset such as "+05:30" or "-03:00".
func ParseOffset(s string) (*time.Location, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse("-07:00", s)
	if err != nil {
		return nil, fmt.Errorf("offset %q must look like +05:30: %w", s, err)
	}
	_, secs := t.Zone()
	if secs > maxOffset || secs < -maxOffset {
		return nil, fmt.Errorf("offset %q is out of range", s)
	}
	return time.FixedZone("UTC"+s, secs), nil
}

// TitleCase capitalizes each word of a city name for display.
func TitleCase(city string) string {
	return cases.Title(language.Und).String(city)
}

// Formatter turns raw readings into display-ready reports.
type Formatter struct {
	zone *time.Location
}

// NewFormatter creates a Formatter rendering times in zone. A nil zone falls
// back to DefaultZone.
func NewFormatter(zone *time.Location) *Formatter {
	if zone == nil {
		zone = DefaultZone
	}
	return &Formatter{zone: zone}
}

// Zone returns the display zone.
func (f *Formatter) Zone() *time.Location {
	return f.zone
}

// Format builds a Report. It never fails: unknown indexes become "Unknown" and
// absent pollutants are omitted.
func (f *Formatter) Format(loc Location, reading Reading, city string) Report {
	local := reading.ObservedAt.In(f.zone)

	concentrations := make([]Concentration, 0, len(reading.Pollutants))
	for _, code := range CanonicalOrder {
		v, ok := reading.Pollutants[code]
		if !ok {
			continue
		}
		concentrations = append(concentrations, Concentration{
			Code:        code,
			Value:       v,
			Description: code.Description(),
		})
	}

	var distance float64
	if reading.Station != nil {
		_, distance = haversine.Distance(
			haversine.Coord{Lat: loc.Lat, Lon: loc.Lon},
			haversine.Coord{Lat: reading.Station.Lat, Lon: reading.Station.Lon},
		)
	}

	return Report{
		City:              city,
		DisplayCity:       TitleCase(city),
		Location:          loc,
		Reading:           reading,
		Category:          CategoryLabel(reading.Index),
		LocalTime:         local,
		Timestamp:         local.Format(TimestampLayout),
		Concentrations:    concentrations,
		StationDistanceKm: distance,
	}
}

// Headline is the summary line shown above the chart.
func (r Report) Headline() string {
	return fmt.Sprintf("AQI for %s: %d (%s)", r.DisplayCity, r.Reading.Index, r.Category)
}
