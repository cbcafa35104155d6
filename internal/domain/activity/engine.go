// Package activity turns a forecast window into ranked activity suitability scores.
package activity

import (
	"sort"

	"github.com/yanqian/travel-planner/internal/domain/weather"
	"github.com/yanqian/travel-planner/pkg/util"
)

const neutralScore = 50

type conditions struct {
	avgTemp    float64
	avgPrecip  float64
	hasSnow    bool
	clearRatio float64
}

// Rank scores every activity for the given forecast window. It has no side
// effects; NaN inputs propagate into the scores.
func Rank(forecasts []weather.DailyForecast) []Score {
	if len(forecasts) == 0 {
		return DefaultRankings()
	}

	c := analyze(forecasts)
	scores := []Score{
		newScore(Skiing, scoreSkiing(c)),
		newScore(Surfing, scoreSurfing(c)),
		newScore(IndoorSightseeing, scoreIndoor(c)),
		newScore(OutdoorSightseeing, scoreOutdoor(c)),
	}
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].Activity < scores[j].Activity
	})
	return scores
}

// DefaultRankings is the neutral result used when no forecast is available.
func DefaultRankings() []Score {
	kinds := Kinds()
	out := make([]Score, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, newScore(k, neutralScore))
	}
	return out
}

func newScore(kind Kind, raw float64) Score {
	score := util.ClampFloat(raw, 0, 100)
	return Score{Activity: kind, Score: score, Suitability: BandFor(score)}
}

func analyze(forecasts []weather.DailyForecast) conditions {
	var (
		tempSum, precipSum float64
		clearDays          int
		hasSnow            bool
	)
	for _, f := range forecasts {
		tempSum += (f.TemperatureMax + f.TemperatureMin) / 2
		precipSum += f.Precipitation
		if f.WeatherCode.IsSnow() {
			hasSnow = true
		}
		if f.WeatherCode.IsClear() {
			clearDays++
		}
	}
	n := float64(len(forecasts))
	return conditions{
		avgTemp:    tempSum / n,
		avgPrecip:  precipSum / n,
		hasSnow:    hasSnow,
		clearRatio: float64(clearDays) / n,
	}
}

func scoreSkiing(c conditions) float64 {
	var score float64
	switch {
	case c.avgTemp < -5:
		score += 40
	case c.avgTemp < 0:
		score += 30
	case c.avgTemp < 5:
		score += 15
	}
	if c.hasSnow {
		score += 40
	}
	switch {
	case c.avgPrecip > 5 && c.avgPrecip < 20:
		score += 20
	case c.avgPrecip >= 20:
		score += 10
	}
	return score
}

func scoreSurfing(c conditions) float64 {
	var score float64
	switch {
	case c.avgTemp >= 18 && c.avgTemp <= 28:
		score += 40
	case c.avgTemp >= 15 && c.avgTemp < 18:
		score += 30
	case c.avgTemp >= 12:
		score += 15
	}
	score += c.clearRatio * 30
	switch {
	case c.avgPrecip < 5:
		score += 30
	case c.avgPrecip < 10:
		score += 15
	}
	return score
}

func scoreIndoor(c conditions) float64 {
	score := float64(neutralScore)
	switch {
	case c.avgPrecip > 10:
		score += 25
	case c.avgPrecip > 5:
		score += 15
	}
	switch {
	case c.avgTemp < 0 || c.avgTemp > 32:
		score += 25
	case c.avgTemp < 5 || c.avgTemp > 28:
		score += 10
	}
	return score
}

func scoreOutdoor(c conditions) float64 {
	var score float64
	switch {
	case c.avgTemp >= 15 && c.avgTemp <= 25:
		score += 40
	case c.avgTemp >= 10 && c.avgTemp < 15:
		score += 25
	case c.avgTemp >= 8 && c.avgTemp < 28:
		score += 15
	}
	score += c.clearRatio * 40
	switch {
	case c.avgPrecip < 2:
		score += 20
	case c.avgPrecip < 5:
		score += 10
	}
	return score
}
