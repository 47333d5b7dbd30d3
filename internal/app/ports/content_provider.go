package ports

import (
	"context"

	"outpost/internal/domain/content"
)

type ContentProvider interface {
	Tables(ctx context.Context) (content.Tables, error)
}
