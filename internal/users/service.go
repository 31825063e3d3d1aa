package users

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/fleetdesk/fleetdesk/internal/platform/httpx"
	"github.com/fleetdesk/fleetdesk/internal/shared"
)

// Service wraps user management rules. All operations are company-scoped
// and, except for Get, Admin-only.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns every user of the principal's company. Company-wide
// listing is an Admin right.
func (s *Service) List(ctx context.Context, p shared.Principal) ([]User, error) {
	if !p.IsAdmin() {
		return nil, httpx.ErrForbidden
	}
	return s.repo.ListByCompany(ctx, p.CompanyID)
}

// Get returns a single user. A user outside the principal's company is
// reported as not found, never as forbidden.
func (s *Service) Get(ctx context.Context, p shared.Principal, id int64) (*User, error) {
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.CompanyID != p.CompanyID {
		return nil, httpx.ErrNotFound
	}
	return u, nil
}

// Create adds a user to the principal's company.
func (s *Service) Create(ctx context.Context, p shared.Principal, req CreateUserRequest) (*User, error) {
	if !p.IsAdmin() {
		return nil, httpx.ErrForbidden
	}
	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		RoleID:       req.RoleID,
		CompanyID:    p.CompanyID,
	})
}

// Update applies a partial update to a company user.
func (s *Service) Update(ctx context.Context, p shared.Principal, id int64, req UpdateUserRequest) (*User, error) {
	if !p.IsAdmin() {
		return nil, httpx.ErrForbidden
	}
	u, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if req.Username != nil {
		u.Username = *req.Username
	}
	if req.Email != nil {
		u.Email = *req.Email
	}
	if req.Password != nil {
		hash, err := HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hash
	}
	if req.RoleID != nil {
		u.RoleID = *req.RoleID
	}
	return s.repo.Update(ctx, *u)
}

// Delete removes a company user.
func (s *Service) Delete(ctx context.Context, p shared.Principal, id int64) error {
	if !p.IsAdmin() {
		return httpx.ErrForbidden
	}
	if _, err := s.Get(ctx, p, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// HashPassword derives a bcrypt hash for storage.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("users: hash password: %w", err)
	}
	return string(hash), nil
}
