package survival

import (
	"errors"
	"time"

	"outpost/internal/domain/bus"
	"outpost/internal/domain/content"
	"outpost/internal/domain/ledger"
	"outpost/internal/domain/timer"
)

var (
	ErrBusy           = errors.New("person is busy")
	ErrLocked         = errors.New("action is locked")
	ErrOptionRequired = errors.New("action needs an option")
	ErrUnknownAction  = errors.New("unknown action")
	ErrDead           = errors.New("person is dead")
)

type Gender string

const (
	GenderFemale Gender = "female"
	GenderMale   Gender = "male"
	GenderOther  Gender = "other"
)

type DeathCause string

const (
	DeathCauseUnknown    DeathCause = "unknown"
	DeathCauseStarvation DeathCause = "starvation"
	DeathCauseThirst     DeathCause = "thirst"
	DeathCauseExhaustion DeathCause = "exhaustion"
	DeathCauseAcid       DeathCause = "acid"
)

// Deps are the services shared by every person of one game.
type Deps struct {
	Catalog      *content.Catalog
	Bus          *bus.Bus
	Timers       *timer.Scheduler
	Ledger       *ledger.Ledger
	Env          content.Env
	HourDuration time.Duration
	// PerkAvailable reports whether no one holds the perk yet.
	PerkAvailable func(id string) bool
	// Retired reports a unique action that was completed and is never granted again.
	Retired func(id string) bool
	// CancelBuild releases a construction abandoned before completion.
	CancelBuild func(id string)
}

// Click is the payload of the click topic.
type Click struct {
	PersonID string           `json:"personId"`
	ActionID string           `json:"actionId"`
	OptionID string           `json:"optionId,omitempty"`
	Name     string           `json:"name"`
	Hours    float64          `json:"hours"`
	Consume  []content.Amount `json:"consume,omitempty"`
	Build    string           `json:"build,omitempty"`
}

// ActionEnd is the payload of the action-end topic.
type ActionEnd struct {
	PersonID string           `json:"personId"`
	ActionID string           `json:"actionId"`
	OptionID string           `json:"optionId,omitempty"`
	Give     []content.Amount `json:"give,omitempty"`
	Build    string           `json:"build,omitempty"`
	Unique   bool             `json:"unique,omitempty"`
	Log      string           `json:"log"`
}

// PerkGranted is the payload of the perk topic.
type PerkGranted struct {
	PersonID string `json:"personId"`
	PerkID   string `json:"perkId"`
}

// Death is the payload of the lose-someone topic.
type Death struct {
	PersonID string     `json:"personId"`
	Name     string     `json:"name"`
	Cause    DeathCause `json:"cause"`
}
