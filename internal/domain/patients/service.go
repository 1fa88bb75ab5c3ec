package patients

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

var validIdentificationTypes = map[string]bool{
	"cc": true, "ti": true, "ce": true, "pasaporte": true, "registro_civil": true,
}

var validGenders = map[string]bool{
	"masculino": true, "femenino": true, "otro": true, "": true,
}

func (s *Service) validate(p *Patient) error {
	if p.IdentificationNumber <= 0 {
		return fmt.Errorf("identification_number must be a positive integer")
	}
	if p.IdentificationType == "" {
		p.IdentificationType = "cc"
	}
	if !validIdentificationTypes[p.IdentificationType] {
		return fmt.Errorf("invalid identification_type: %s", p.IdentificationType)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if !validGenders[p.Gender] {
		return fmt.Errorf("invalid gender: %s", p.Gender)
	}
	if p.Email != "" && !strings.Contains(p.Email, "@") {
		return fmt.Errorf("invalid email: %s", p.Email)
	}
	if p.Caregiver != nil && p.Caregiver.Name != "" && p.Caregiver.IdentificationNumber <= 0 {
		return fmt.Errorf("caregiver identification_number must be a positive integer")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, p *Patient) error {
	if err := s.validate(p); err != nil {
		return err
	}
	if existing, err := s.repo.GetByIdentification(ctx, p.IdentificationNumber); err == nil && existing != nil {
		return fmt.Errorf("patient with identification number %d already exists", p.IdentificationNumber)
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByIdentification(ctx context.Context, identificationNumber int64) (*Patient, error) {
	if identificationNumber <= 0 {
		return nil, fmt.Errorf("identification_number must be a positive integer")
	}
	return s.repo.GetByIdentification(ctx, identificationNumber)
}

func (s *Service) Update(ctx context.Context, p *Patient) error {
	if err := s.validate(p); err != nil {
		return err
	}
	return s.repo.Update(ctx, p)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Patient, int, error) {
	return s.repo.Search(ctx, params, limit, offset)
}
