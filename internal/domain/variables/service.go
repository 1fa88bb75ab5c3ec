package variables

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var validTypes = map[string]bool{
	TypeText: true, TypeNumber: true, TypeBoolean: true, TypeDate: true, TypeOption: true,
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) validate(v *Variable) error {
	if v.LayerID == uuid.Nil {
		return fmt.Errorf("layer_id is required")
	}
	if strings.TrimSpace(v.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if v.Type == "" {
		v.Type = TypeText
	}
	if !validTypes[v.Type] {
		return fmt.Errorf("invalid type: %s", v.Type)
	}
	if v.Type == TypeOption && len(v.Options) == 0 {
		return fmt.Errorf("option-typed variables require at least one option")
	}
	if v.Type != TypeOption && len(v.Options) > 0 {
		return fmt.Errorf("options are only valid for option-typed variables")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, v *Variable) error {
	if err := s.validate(v); err != nil {
		return err
	}
	return s.repo.Create(ctx, v)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Variable, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, v *Variable) error {
	if err := s.validate(v); err != nil {
		return err
	}
	return s.repo.Update(ctx, v)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Variable, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ListByLayer(ctx context.Context, layerID uuid.UUID, limit, offset int) ([]*Variable, int, error) {
	return s.repo.ListByLayer(ctx, layerID, limit, offset)
}
