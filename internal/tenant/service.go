// Package tenant handles host-side accounts: registration, login, and
// token issuance. Guests never authenticate; they are scoped by the
// tenant id in the chat URL.
package tenant

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"guestdesk/internal/model"
	"guestdesk/internal/pkg/jwtutil"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrUsernameExists    = errors.New("username already exists")
	ErrInvalidCredential = errors.New("invalid username or password")
)

// Store is the persistence surface the service needs.
type Store interface {
	Create(tenant *model.Tenant) error
	GetByUsername(username string) (*model.Tenant, error)
	GetByID(id uint) (*model.Tenant, error)
}

type Service struct {
	store         Store
	jwtSecret     string
	jwtExpiration time.Duration
}

type RegisterInput struct {
	Username    string
	Password    string
	DisplayName string
}

type LoginInput struct {
	Username string
	Password string
}

type AuthResult struct {
	Token  string
	Tenant *model.Tenant
}

func NewService(store Store, jwtSecret string, jwtExpiration time.Duration) *Service {
	return &Service{
		store:         store,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

func (s *Service) Register(input RegisterInput) (*AuthResult, error) {
	username := strings.TrimSpace(input.Username)
	password := strings.TrimSpace(input.Password)
	displayName := strings.TrimSpace(input.DisplayName)

	if username == "" || password == "" || len(password) < 8 {
		return nil, ErrInvalidInput
	}
	if displayName == "" {
		displayName = username
	}

	existing, err := s.store.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password failed: %w", err)
	}

	tenant := &model.Tenant{
		Username:     username,
		PasswordHash: string(hash),
		DisplayName:  displayName,
	}
	if err := s.store.Create(tenant); err != nil {
		return nil, err
	}

	token, err := jwtutil.GenerateToken(s.jwtSecret, s.jwtExpiration, tenant.ID, tenant.Username)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, Tenant: tenant}, nil
}

func (s *Service) Login(input LoginInput) (*AuthResult, error) {
	username := strings.TrimSpace(input.Username)
	password := strings.TrimSpace(input.Password)
	if username == "" || password == "" {
		return nil, ErrInvalidInput
	}

	tenant, err := s.store.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, ErrInvalidCredential
	}

	if err := bcrypt.CompareHashAndPassword([]byte(tenant.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredential
	}

	token, err := jwtutil.GenerateToken(s.jwtSecret, s.jwtExpiration, tenant.ID, tenant.Username)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, Tenant: tenant}, nil
}

func (s *Service) GetByID(id uint) (*model.Tenant, error) {
	if id == 0 {
		return nil, ErrInvalidInput
	}
	return s.store.GetByID(id)
}
