package airquality

import (
	"time"
)

// Pollutant is the display code of a measured airborne substance.
type Pollutant string

const (
	PollutantCO   Pollutant = "CO"
	PollutantNO   Pollutant = "NO"
	PollutantNO2  Pollutant = "NO2"
	PollutantO3   Pollutant = "O3"
	PollutantSO2  Pollutant = "SO2"
	PollutantPM25 Pollutant = "PM2.5"
	PollutantPM10 Pollutant = "PM10"
	PollutantNH3  Pollutant = "NH3"
)

// CanonicalOrder is the fixed display order of pollutants in charts and exports.
var CanonicalOrder = []Pollutant{
	PollutantCO,
	PollutantNO,
	PollutantNO2,
	PollutantO3,
	PollutantSO2,
	PollutantPM25,
	PollutantPM10,
	PollutantNH3,
}

var descriptions = map[Pollutant]string{
	PollutantCO:   "Carbon Monoxide - from fuel combustion",
	PollutantNO:   "Nitric Oxide - from vehicles & industry",
	PollutantNO2:  "Nitrogen Dioxide - causes respiratory issues",
	PollutantO3:   "Ozone - harmful at ground level",
	PollutantSO2:  "Sulfur Dioxide - from burning fossil fuels",
	PollutantPM25: "Fine Particles (<2.5µm) - health hazard",
	PollutantPM10: "Coarse Particles (<10µm) - dust, pollen",
	PollutantNH3:  "Ammonia - from agriculture & waste",
}

// Description returns the static legend text for the pollutant.
func (p Pollutant) Description() string {
	return descriptions[p]
}

// componentCodes maps OpenWeatherMap component keys to display codes.
var componentCodes = map[string]Pollutant{
	"co":    PollutantCO,
	"no":    PollutantNO,
	"no2":   PollutantNO2,
	"o3":    PollutantO3,
	"so2":   PollutantSO2,
	"pm2_5": PollutantPM25,
	"pm10":  PollutantPM10,
	"nh3":   PollutantNH3,
}

// ParseComponent maps an upstream component key (e.g. "pm2_5") to its Pollutant.
func ParseComponent(key string) (Pollutant, bool) {
	p, ok := componentCodes[key]
	return p, ok
}

// Location is a resolved geographic point.
type Location struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Name    string  `json:"name,omitempty"`
	State   string  `json:"state,omitempty"`
	Country string  `json:"country,omitempty"`
}

// Reading is a single air-quality observation as returned by the upstream service.
// Concentrations are in μg/m³ and are never converted.
type Reading struct {
	Index      int                   `json:"aqi"`
	Pollutants map[Pollutant]float64 `json:"pollutants"`
	ObservedAt time.Time             `json:"observedAt"` // always UTC

	// Station is the grid point the service reported the reading for, if any.
	Station *Location `json:"station,omitempty"`
}

// Concentration is one pollutant value ready for display.
type Concentration struct {
	Code        Pollutant `json:"code"`
	Value       float64   `json:"value"`
	Description string    `json:"description"`
}

// Report is the display-oriented view of a single query. It is recomputed on
// every request.
type Report struct {
	City           string          `json:"city"`
	DisplayCity    string          `json:"displayCity"`
	Location       Location        `json:"location"`
	Reading        Reading         `json:"reading"`
	Category       string          `json:"category"`
	LocalTime      time.Time       `json:"localTime"`
	Timestamp      string          `json:"timestamp"`
	Concentrations []Concentration `json:"concentrations"`

	// StationDistanceKm is the distance between the geocoded point and the
	// reading's grid point. Zero when the service did not report one.
	StationDistanceKm float64 `json:"stationDistanceKm"`
}
