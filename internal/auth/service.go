package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/fleetdesk/fleetdesk/internal/companies"
	"github.com/fleetdesk/fleetdesk/internal/platform/db"
	"github.com/fleetdesk/fleetdesk/internal/platform/httpx"
	"github.com/fleetdesk/fleetdesk/internal/shared"
	"github.com/fleetdesk/fleetdesk/internal/users"
)

// Service wraps authentication and tenant bootstrap rules.
type Service struct {
	pool      *pgxpool.Pool
	users     users.Repository
	companies companies.Repository
	tokens    *TokenManager
	store     *TokenStore
}

// NewService constructs a new Service.
func NewService(pool *pgxpool.Pool, userRepo users.Repository, companyRepo companies.Repository, tokens *TokenManager, store *TokenStore) *Service {
	return &Service{
		pool:      pool,
		users:     userRepo,
		companies: companyRepo,
		tokens:    tokens,
		store:     store,
	}
}

// Authenticate validates username/password credentials. Unknown user
// and wrong password both return ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*users.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// Login exchanges credentials for a signed bearer token.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return "", err
	}
	return s.tokens.Issue(user.ID, user.Role, user.CompanyID)
}

// RegisterCompany bootstraps a tenant: the company and its first Admin
// user are created in one transaction, so a failed user insert cannot
// leave an orphaned company behind. Registration is open to anyone as
// long as the company name, username and email are all unused.
func (s *Service) RegisterCompany(ctx context.Context, req RegisterCompanyRequest) (*users.User, error) {
	hash, err := users.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	var created *users.User
	err = db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		companyRepo := s.companies.WithTx(tx)
		userRepo := s.users.WithTx(tx)

		company, err := companyRepo.Create(ctx, companies.Company{Name: req.CompanyName})
		if err != nil {
			if errors.Is(err, httpx.ErrDuplicate) {
				return fmt.Errorf("%w: company name already registered", httpx.ErrDuplicate)
			}
			return fmt.Errorf("create company: %w", err)
		}

		role, err := userRepo.GetRoleByName(ctx, shared.RoleAdmin)
		if err != nil {
			if errors.Is(err, httpx.ErrNotFound) {
				return errors.New("auth: admin role missing from roles table")
			}
			return fmt.Errorf("resolve admin role: %w", err)
		}

		created, err = userRepo.Create(ctx, users.User{
			Username:     req.Username,
			Email:        req.Email,
			PasswordHash: hash,
			RoleID:       role.ID,
			CompanyID:    company.ID,
		})
		if err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ResolvePrincipal turns a bearer token into a principal. A missing or
// malformed token, a revoked token, or a token whose subject has been
// deleted since issuance all collapse to ErrUnauthorized.
func (s *Service) ResolvePrincipal(ctx context.Context, tokenString string) (shared.Principal, *users.User, error) {
	claims, err := s.tokens.Verify(tokenString)
	if err != nil {
		return shared.Principal{}, nil, httpx.ErrUnauthorized
	}

	if s.store != nil && claims.ID != "" {
		revoked, err := s.store.IsRevoked(ctx, claims.ID)
		if err != nil {
			return shared.Principal{}, nil, err
		}
		if revoked {
			return shared.Principal{}, nil, httpx.ErrUnauthorized
		}
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return shared.Principal{}, nil, httpx.ErrUnauthorized
	}

	// The user row is authoritative over the claims: role or company
	// changes take effect on the next request, deletion ends access.
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return shared.Principal{}, nil, httpx.ErrUnauthorized
		}
		return shared.Principal{}, nil, err
	}

	p := shared.Principal{
		UserID:    user.ID,
		Role:      user.Role,
		CompanyID: user.CompanyID,
	}
	return p, user, nil
}

// Logout denylists the presented token until its natural expiry.
func (s *Service) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.tokens.Verify(tokenString)
	if err != nil {
		return httpx.ErrUnauthorized
	}
	if s.store == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	return s.store.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}
