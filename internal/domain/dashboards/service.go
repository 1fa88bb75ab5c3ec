package dashboards

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// embedTokenTTL bounds how long an issued embed token stays valid. The
// frontend re-requests a token each time a dashboard is opened.
const embedTokenTTL = 5 * time.Minute

type Service struct {
	repo       Repository
	signingKey []byte
}

func NewService(repo Repository, signingKey []byte) *Service {
	return &Service{repo: repo, signingKey: signingKey}
}

func (s *Service) validate(d *Dashboard) error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if strings.TrimSpace(d.EmbedID) == "" {
		return fmt.Errorf("embed_id is required")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, d *Dashboard) error {
	if err := s.validate(d); err != nil {
		return err
	}
	return s.repo.Create(ctx, d)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Dashboard, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, d *Dashboard) error {
	if err := s.validate(d); err != nil {
		return err
	}
	return s.repo.Update(ctx, d)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Dashboard, int, error) {
	return s.repo.List(ctx, limit, offset)
}

type embedClaims struct {
	jwt.RegisteredClaims
	EmbedID   string `json:"embed_id"`
	UserEmail string `json:"user_email"`
}

// MintEmbedToken issues a short-lived guest token for one dashboard embed,
// bound to the requesting user.
func (s *Service) MintEmbedToken(ctx context.Context, dashboardID uuid.UUID, userEmail string) (*EmbedToken, error) {
	if len(s.signingKey) == 0 {
		return nil, fmt.Errorf("embed signing key is not configured")
	}
	if userEmail == "" {
		return nil, fmt.Errorf("user email is required")
	}

	d, err := s.repo.GetByID(ctx, dashboardID)
	if err != nil {
		return nil, fmt.Errorf("dashboard not found")
	}

	now := time.Now()
	expires := now.Add(embedTokenTTL)
	claims := embedClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userEmail,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		EmbedID:   d.EmbedID,
		UserEmail: userEmail,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return nil, fmt.Errorf("sign embed token: %w", err)
	}
	return &EmbedToken{Token: token, EmbedID: d.EmbedID, ExpiresAt: expires}, nil
}
