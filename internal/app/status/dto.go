package status

import "outpost/internal/app/game"

type Request struct{}

type Response struct {
	State       game.View `json:"state"`
	HourSeconds float64   `json:"hour_seconds"`
}
