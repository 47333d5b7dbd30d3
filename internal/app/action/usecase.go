package action

import (
	"context"
	"errors"
	"strings"

	"outpost/internal/app/game"
	"outpost/internal/app/ports"
	"outpost/internal/domain/survival"
)

var ErrInvalidRequest = errors.New("invalid action request")

type UseCase struct {
	Game    ports.GameRunner
	Metrics ports.ActionMetrics
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	req.PersonID = strings.TrimSpace(req.PersonID)
	req.ActionID = strings.TrimSpace(req.ActionID)
	req.OptionID = strings.TrimSpace(req.OptionID)
	if req.PersonID == "" || req.ActionID == "" {
		return Response{}, ErrInvalidRequest
	}

	var out Response
	err := u.Game.Do(ctx, func(g *game.Game) error {
		click, err := g.Click(req.PersonID, req.ActionID, req.OptionID)
		if err != nil {
			return err
		}
		out.Click = click
		return nil
	})
	u.record(req.ActionID, err)
	if err != nil {
		return Response{}, err
	}
	return out, nil
}

func (u UseCase) record(actionID string, err error) {
	if u.Metrics == nil {
		return
	}
	switch {
	case err == nil:
		u.Metrics.RecordSuccess(actionID)
	case IsRejection(err):
		u.Metrics.RecordConflict()
	default:
		u.Metrics.RecordFailure()
	}
}

// IsRejection reports whether err is a normal refusal of the click rather
// than a bad request.
func IsRejection(err error) bool {
	return errors.Is(err, survival.ErrBusy) ||
		errors.Is(err, survival.ErrLocked) ||
		errors.Is(err, survival.ErrDead) ||
		errors.Is(err, game.ErrPaused) ||
		errors.Is(err, game.ErrGameOver)
}
