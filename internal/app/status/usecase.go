package status

import (
	"context"
	"time"

	"outpost/internal/app/ports"
)

type UseCase struct {
	Game         ports.GameRunner
	HourDuration time.Duration
}

func (u UseCase) Execute(_ context.Context, _ Request) (Response, error) {
	return Response{State: u.Game.View(), HourSeconds: u.HourDuration.Seconds()}, nil
}
