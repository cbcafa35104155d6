package activity

import "fmt"

// Kind is the closed set of activities the engine scores. The numeric order
// is the tie-break priority.
type Kind int

const (
	Skiing Kind = iota
	Surfing
	IndoorSightseeing
	OutdoorSightseeing
)

// Kinds lists every activity in priority order.
func Kinds() []Kind {
	return []Kind{Skiing, Surfing, IndoorSightseeing, OutdoorSightseeing}
}

func (k Kind) String() string {
	switch k {
	case Skiing:
		return "SKIING"
	case Surfing:
		return "SURFING"
	case IndoorSightseeing:
		return "INDOOR_SIGHTSEEING"
	case OutdoorSightseeing:
		return "OUTDOOR_SIGHTSEEING"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// MarshalText renders the wire name.
func (k Kind) MarshalText() ([]byte, error) {
	switch k {
	case Skiing, Surfing, IndoorSightseeing, OutdoorSightseeing:
		return []byte(k.String()), nil
	default:
		return nil, fmt.Errorf("unknown activity kind %d", int(k))
	}
}

// UnmarshalText parses a wire name.
func (k *Kind) UnmarshalText(text []byte) error {
	for _, candidate := range Kinds() {
		if candidate.String() == string(text) {
			*k = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown activity %q", string(text))
}

// Band is the qualitative suitability label.
type Band string

const (
	Excellent Band = "EXCELLENT"
	Good      Band = "GOOD"
	Fair      Band = "FAIR"
	Poor      Band = "POOR"
)

// Score is one ranked activity.
type Score struct {
	Activity    Kind    `json:"activity"`
	Score       float64 `json:"score"`
	Suitability Band    `json:"suitability"`
}

// BandFor maps a score to its band.
func BandFor(score float64) Band {
	switch {
	case score >= 75:
		return Excellent
	case score >= 55:
		return Good
	case score >= 35:
		return Fair
	default:
		return Poor
	}
}
