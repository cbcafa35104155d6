package openmeteo

import (
	"context"
	"net/url"
	"strconv"

	"github.com/yanqian/travel-planner/internal/domain/weather"
	apperrors "github.com/yanqian/travel-planner/pkg/errors"
)

type geocodingResponse struct {
	apiError
	Results []place `json:"results"`
}

type place struct {
	ID          *int64   `json:"id"`
	Name        string   `json:"name"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Elevation   *float64 `json:"elevation"`
	Country     *string  `json:"country"`
	CountryCode *string  `json:"country_code"`
	Admin1      *string  `json:"admin1"`
	Timezone    *string  `json:"timezone"`
	Population  *int64   `json:"population"`
}

// Search queries the geocoding API once.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]weather.Location, error) {
	params := url.Values{
		"name":     {query},
		"count":    {strconv.Itoa(limit)},
		"language": {"en"},
		"format":   {"json"},
	}

	var raw geocodingResponse
	if err := c.get(ctx, c.geocodingLimiter, c.geocodingURL, params, &raw); err != nil {
		return nil, err
	}
	if reason, failed := raw.reason(); failed {
		return nil, apperrors.UpstreamLogic("api error: "+reason, nil)
	}
	return normalizePlaces(raw.Results), nil
}

// normalizePlaces drops entries that cannot be located on a map; optional
// metadata is passed through untouched.
func normalizePlaces(places []place) []weather.Location {
	out := make([]weather.Location, 0, len(places))
	for _, p := range places {
		if p.Name == "" || p.Latitude == nil || p.Longitude == nil {
			continue
		}
		out = append(out, weather.Location{
			ID:          p.ID,
			Name:        p.Name,
			Latitude:    *p.Latitude,
			Longitude:   *p.Longitude,
			Country:     p.Country,
			CountryCode: p.CountryCode,
			Admin1:      p.Admin1,
			Timezone:    p.Timezone,
			Population:  p.Population,
			Elevation:   p.Elevation,
		})
	}
	return out
}
