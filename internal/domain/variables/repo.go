package variables

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, v *Variable) error
	GetByID(ctx context.Context, id uuid.UUID) (*Variable, error)
	Update(ctx context.Context, v *Variable) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Variable, int, error)
	ListByLayer(ctx context.Context, layerID uuid.UUID, limit, offset int) ([]*Variable, int, error)
}
