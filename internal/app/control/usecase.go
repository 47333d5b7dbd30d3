package control

import (
	"context"
	"errors"
	"strings"
	"time"

	"outpost/internal/app/game"
	"outpost/internal/app/ports"
	"outpost/internal/domain/incident"
)

var ErrInvalidRequest = errors.New("invalid control request")

type Op string

const (
	OpPause  Op = "pause"
	OpResume Op = "resume"
	OpSave   Op = "save"
	OpDecide Op = "decide"
)

type Request struct {
	Op  Op
	Yes bool
}

type Response struct {
	Paused   bool               `json:"paused"`
	Changed  bool               `json:"changed"`
	Incident *incident.Instance `json:"incident,omitempty"`
}

type Saver interface {
	Save(ctx context.Context) error
}

type UseCase struct {
	Game  ports.GameRunner
	Saver Saver
	Now   func() time.Time
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	nowFn := u.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	var out Response
	switch Op(strings.ToLower(strings.TrimSpace(string(req.Op)))) {
	case OpPause:
		err := u.Game.Do(ctx, func(g *game.Game) error {
			out.Changed = g.Pause(nowFn())
			out.Paused = g.Paused()
			return nil
		})
		return out, err
	case OpResume:
		err := u.Game.Do(ctx, func(g *game.Game) error {
			out.Changed = g.Resume(nowFn())
			out.Paused = g.Paused()
			return nil
		})
		return out, err
	case OpDecide:
		err := u.Game.Do(ctx, func(g *game.Game) error {
			inst, err := g.Decide(req.Yes)
			if err != nil {
				return err
			}
			out.Changed = true
			out.Incident = &inst
			out.Paused = g.Paused()
			return nil
		})
		if err != nil {
			return Response{}, err
		}
		return out, nil
	case OpSave:
		if u.Saver == nil {
			return Response{}, ports.ErrNotFound
		}
		if err := u.Saver.Save(ctx); err != nil {
			return Response{}, err
		}
		out.Changed = true
		out.Paused = u.Game.View().Paused
		return out, nil
	default:
		return Response{}, ErrInvalidRequest
	}
}
