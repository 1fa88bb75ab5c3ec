package layers

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, l *Layer) error
	GetByID(ctx context.Context, id uuid.UUID) (*Layer, error)
	GetByName(ctx context.Context, name string) (*Layer, error)
	Update(ctx context.Context, l *Layer) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Layer, int, error)
}
