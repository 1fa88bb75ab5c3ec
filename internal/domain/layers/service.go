package layers

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) validate(l *Layer) error {
	if strings.TrimSpace(l.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if l.BossEmail != "" && !strings.Contains(l.BossEmail, "@") {
		return fmt.Errorf("invalid boss email: %s", l.BossEmail)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, l *Layer) error {
	if err := s.validate(l); err != nil {
		return err
	}
	if existing, err := s.repo.GetByName(ctx, l.Name); err == nil && existing != nil {
		return fmt.Errorf("layer %q already exists", l.Name)
	}
	return s.repo.Create(ctx, l)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Layer, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, l *Layer) error {
	if err := s.validate(l); err != nil {
		return err
	}
	return s.repo.Update(ctx, l)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Layer, int, error) {
	return s.repo.List(ctx, limit, offset)
}
