package weather

import (
	"encoding/json"
	"math"
	"strings"
)

// Location is a geocoded place candidate. Optional upstream fields stay nil when absent.
type Location struct {
	ID          *int64   `json:"id,omitempty"`
	Name        string   `json:"name"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	Country     *string  `json:"country,omitempty"`
	CountryCode *string  `json:"countryCode,omitempty"`
	Admin1      *string  `json:"admin1,omitempty"`
	Timezone    *string  `json:"timezone,omitempty"`
	Population  *int64   `json:"population,omitempty"`
	Elevation   *float64 `json:"elevation,omitempty"`
}

// ValidCoordinates reports whether the location can be used for forecasting.
func (l Location) ValidCoordinates() bool {
	return validLatitude(l.Latitude) && validLongitude(l.Longitude)
}

func validLatitude(lat float64) bool {
	return !math.IsNaN(lat) && !math.IsInf(lat, 0) && lat >= -90 && lat <= 90
}

func validLongitude(lon float64) bool {
	return !math.IsNaN(lon) && !math.IsInf(lon, 0) && lon >= -180 && lon <= 180
}

// DailyForecast summarises one calendar day in the location's local time.
type DailyForecast struct {
	Date           string  `json:"date"`
	TemperatureMax float64 `json:"temperatureMax"`
	TemperatureMin float64 `json:"temperatureMin"`
	Precipitation  float64 `json:"precipitation"`
	WeatherCode    Code    `json:"weatherCode"`
}

// MarshalJSON adds the derived weatherDescription label.
func (d DailyForecast) MarshalJSON() ([]byte, error) {
	type plain DailyForecast
	return json.Marshal(struct {
		plain
		WeatherDescription string `json:"weatherDescription"`
	}{plain: plain(d), WeatherDescription: d.WeatherCode.Description()})
}

// Code is a WMO weather interpretation code.
type Code int

// IsSnow reports snow fall (71-77) and snow showers (85, 86).
func (c Code) IsSnow() bool {
	return (c >= 71 && c <= 77) || c == 85 || c == 86
}

// IsClear reports clear sky, mainly clear and partly cloudy.
func (c Code) IsClear() bool {
	return c >= 0 && c <= 2
}

// Description returns a human readable label for the code.
func (c Code) Description() string {
	switch {
	case c == 0:
		return "Clear sky"
	case c == 1:
		return "Mainly clear"
	case c == 2:
		return "Partly cloudy"
	case c == 3:
		return "Overcast"
	case c == 45:
		return "Fog"
	case c == 48:
		return "Depositing rime fog"
	case c >= 51 && c <= 57:
		return "Drizzle"
	case c >= 61 && c <= 67:
		return "Rain"
	case c >= 71 && c <= 77:
		return "Snow"
	case c >= 80 && c <= 82:
		return "Rain showers"
	case c == 85 || c == 86:
		return "Snow showers"
	case c == 95:
		return "Thunderstorm"
	case c >= 96 && c <= 99:
		return "Thunderstorm with hail"
	default:
		return "Unknown"
	}
}

// SanitizeQuery trims the query and caps it at MaxQueryLength runes.
func SanitizeQuery(query string) string {
	trimmed := strings.TrimSpace(query)
	runes := []rune(trimmed)
	if len(runes) > MaxQueryLength {
		trimmed = strings.TrimSpace(string(runes[:MaxQueryLength]))
	}
	return trimmed
}
