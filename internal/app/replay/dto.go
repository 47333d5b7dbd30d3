package replay

import (
	"time"

	"outpost/internal/app/ports"
)

type Request struct {
	PersonID string
	Topic    string
	Since    time.Time
	Limit    int
}

// Summary is rebuilt from the returned events only.
type Summary struct {
	Clicks    map[string]int `json:"clicks"`
	Arrivals  int            `json:"arrivals"`
	Deaths    []string       `json:"deaths"`
	Incidents []string       `json:"incidents"`
	Log       []string       `json:"log"`
	Outcome   string         `json:"outcome,omitempty"`
}

type Response struct {
	Events  []ports.Event `json:"events"`
	Summary Summary       `json:"summary"`
}
