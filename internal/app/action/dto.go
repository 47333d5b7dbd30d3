package action

import "outpost/internal/domain/survival"

type Request struct {
	PersonID string
	ActionID string
	OptionID string
}

type Response struct {
	Click survival.Click `json:"click"`
}
