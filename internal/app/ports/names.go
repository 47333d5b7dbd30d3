package ports

import (
	"context"

	"outpost/internal/domain/survival"
)

type Name struct {
	Name   string
	Gender survival.Gender
}

type NameProvider interface {
	Fetch(ctx context.Context, count int) ([]Name, error)
}
