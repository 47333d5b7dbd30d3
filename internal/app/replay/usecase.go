package replay

import (
	"context"
	"errors"
	"strings"

	"outpost/internal/app/ports"
	"outpost/internal/domain/bus"
)

var ErrInvalidRequest = errors.New("invalid replay request")

const maxLimit = 1000

type UseCase struct {
	Events ports.Journal
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	req.PersonID = strings.TrimSpace(req.PersonID)
	req.Topic = strings.TrimSpace(req.Topic)
	if req.Limit < 0 || (req.Topic != "" && !bus.Known(bus.Topic(req.Topic))) {
		return Response{}, ErrInvalidRequest
	}
	if req.Limit == 0 || req.Limit > maxLimit {
		req.Limit = maxLimit
	}
	events, err := u.Events.List(ctx, ports.JournalQuery{
		PersonID: req.PersonID,
		Topic:    req.Topic,
		Since:    req.Since,
		Limit:    req.Limit,
	})
	if err != nil {
		return Response{}, err
	}
	return Response{Events: events, Summary: reconstruct(events)}, nil
}

func reconstruct(events []ports.Event) Summary {
	s := Summary{Clicks: map[string]int{}}
	for _, evt := range events {
		switch bus.Topic(evt.Topic) {
		case bus.TopicClick:
			if id, ok := evt.Payload["actionId"].(string); ok {
				s.Clicks[id]++
			}
		case bus.TopicActionEnd:
			if line, ok := evt.Payload["log"].(string); ok && line != "" {
				s.Log = append(s.Log, line)
			}
		case bus.TopicArrival:
			s.Arrivals++
		case bus.TopicLoseSomeone:
			name, _ := evt.Payload["name"].(string)
			s.Deaths = append(s.Deaths, name)
		case bus.TopicIncidentStart:
			if id, ok := evt.Payload["id"].(string); ok {
				s.Incidents = append(s.Incidents, id)
			}
		case bus.TopicWin:
			s.Outcome = "won"
		case bus.TopicLose:
			s.Outcome = "lost"
		}
	}
	return s
}
