package users

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/clinres/console/internal/platform/auth"
)

type mockRepo struct {
	byID    map[uuid.UUID]*User
	byEmail map[string]*User
}

func newMockRepo() *mockRepo {
	return &mockRepo{byID: make(map[uuid.UUID]*User), byEmail: make(map[string]*User)}
}

func (m *mockRepo) Create(ctx context.Context, u *User) error {
	u.ID = uuid.New()
	m.byID[u.ID] = u
	m.byEmail[u.Email] = u
	return nil
}

func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return u, nil
}

func (m *mockRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return u, nil
}

func (m *mockRepo) Update(ctx context.Context, u *User) error {
	if _, ok := m.byID[u.ID]; !ok {
		return fmt.Errorf("not found")
	}
	m.byID[u.ID] = u
	m.byEmail[u.Email] = u
	return nil
}

func (m *mockRepo) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	u, ok := m.byID[id]
	if !ok {
		return fmt.Errorf("not found")
	}
	u.PasswordHash = hash
	return nil
}

func (m *mockRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(m.byID, id)
	return nil
}

func (m *mockRepo) List(ctx context.Context, limit, offset int) ([]*User, int, error) {
	var items []*User
	for _, u := range m.byID {
		items = append(items, u)
	}
	return items, len(items), nil
}

func validRequest() CreateRequest {
	return CreateRequest{
		Email:    "Ana@Console.Local",
		Name:     "Ana García",
		Password: "s3cure-enough",
		Roles:    []string{auth.RoleResearcher},
	}
}

func TestCreateUser(t *testing.T) {
	svc := NewService(newMockRepo())

	u, err := svc.Create(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Email != "ana@console.local" {
		t.Errorf("expected normalized email, got %s", u.Email)
	}
	if !u.Active {
		t.Error("expected new users to be active")
	}
	if u.PasswordHash == "" || strings.Contains(u.PasswordHash, "s3cure") {
		t.Error("expected a bcrypt hash, not the plaintext password")
	}
}

func TestCreateUser_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateRequest)
	}{
		{"bad email", func(r *CreateRequest) { r.Email = "not-an-email" }},
		{"missing name", func(r *CreateRequest) { r.Name = " " }},
		{"short password", func(r *CreateRequest) { r.Password = "short" }},
		{"no roles", func(r *CreateRequest) { r.Roles = nil }},
		{"unknown role", func(r *CreateRequest) { r.Roles = []string{"superuser"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(newMockRepo())
			req := validRequest()
			tt.mutate(&req)
			if _, err := svc.Create(context.Background(), req); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestCreateUser_Duplicate(t *testing.T) {
	svc := NewService(newMockRepo())

	if _, err := svc.Create(context.Background(), validRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Create(context.Background(), validRequest()); err == nil {
		t.Fatal("expected duplicate email error")
	}
}

func TestVerifyPassword(t *testing.T) {
	svc := NewService(newMockRepo())

	created, err := svc.Create(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	u, err := svc.VerifyPassword(context.Background(), "ana@console.local", "s3cure-enough")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID != created.ID {
		t.Error("unexpected user returned")
	}

	if _, err := svc.VerifyPassword(context.Background(), "ana@console.local", "wrong"); err == nil {
		t.Error("expected invalid credentials error")
	}
}

func TestVerifyPassword_DeactivatedAccount(t *testing.T) {
	svc := NewService(newMockRepo())

	u, err := svc.Create(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.SetActive(context.Background(), u.ID, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.VerifyPassword(context.Background(), "ana@console.local", "s3cure-enough"); err == nil {
		t.Error("expected error for deactivated account")
	}
}

func TestChangePassword(t *testing.T) {
	svc := NewService(newMockRepo())

	u, err := svc.Create(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.ChangePassword(context.Background(), u.ID, "tiny"); err == nil {
		t.Error("expected error for short password")
	}
	if err := svc.ChangePassword(context.Background(), u.ID, "another-long-one"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.VerifyPassword(context.Background(), "ana@console.local", "another-long-one"); err != nil {
		t.Errorf("new password rejected: %v", err)
	}
}
