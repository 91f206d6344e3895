package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"wallet-api/internal/dto"
	"wallet-api/internal/models"
	"wallet-api/pkg/auth"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type memUsers struct {
	rows []*models.User
}

func (m *memUsers) Create(ctx context.Context, user *models.User) error {
	m.rows = append(m.rows, user)
	return nil
}

func (m *memUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range m.rows {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memUsers) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	for _, u := range m.rows {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func TestAuthService_StoresOnlyTheHash(t *testing.T) {
	users := &memUsers{}
	svc := NewAuthService(users, auth.NewJWTManager("test-secret", time.Hour, 24*time.Hour), zap.NewNop())
	ctx := context.Background()

	resp, err := svc.Register(ctx, &dto.RegisterRequest{Username: "ana", Email: " Ana@Example.com ", Password: "segredo123"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if resp.User.Email != "ana@example.com" || resp.AccessToken == "" {
		t.Fatalf("unexpected response %+v", resp)
	}

	stored := users.rows[0]
	if stored.PasswordHash == "segredo123" || !auth.CheckPasswordHash("segredo123", stored.PasswordHash) {
		t.Fatalf("expected a bcrypt hash of the password, got %q", stored.PasswordHash)
	}

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"right password", "ana@example.com", "segredo123", nil},
		{"email is case-insensitive", "ANA@example.com", "segredo123", nil},
		{"wrong password", "ana@example.com", "segredo", ErrInvalidCredentials},
		{"unknown email", "bia@example.com", "segredo123", ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, &dto.LoginRequest{Email: tt.email, Password: tt.password})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestAuthService_RegisterRejects(t *testing.T) {
	users := &memUsers{}
	svc := NewAuthService(users, auth.NewJWTManager("test-secret", time.Hour, 24*time.Hour), zap.NewNop())
	ctx := context.Background()
	if _, err := svc.Register(ctx, &dto.RegisterRequest{Email: "ana@example.com", Password: "segredo123"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	tests := []struct {
		name    string
		req     dto.RegisterRequest
		wantErr error
	}{
		{"duplicate email", dto.RegisterRequest{Email: "ana@example.com", Password: "outra123"}, ErrUserExists},
		{"invalid email", dto.RegisterRequest{Email: "ana", Password: "segredo123"}, ErrInvalidInput},
		{"short password", dto.RegisterRequest{Email: "bia@example.com", Password: "123"}, ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Register(ctx, &tt.req); !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
