package fleet

import (
	"context"
	"fmt"

	"github.com/fleetdesk/fleetdesk/internal/platform/httpx"
	"github.com/fleetdesk/fleetdesk/internal/shared"
	"github.com/fleetdesk/fleetdesk/internal/users"
)

// Service wraps fleet registry rules.
type Service struct {
	repo  Repository
	users users.Repository
}

// NewService constructs a new Service.
func NewService(repo Repository, userRepo users.Repository) *Service {
	return &Service{repo: repo, users: userRepo}
}

// List returns the vehicles visible to the principal: the whole company
// fleet for Admins, own assignments for drivers.
func (s *Service) List(ctx context.Context, p shared.Principal) ([]Vehicle, error) {
	return s.repo.List(ctx, shared.ScopeFor(p))
}

// Create registers a vehicle in the principal's company. Admin-only.
// The assigned driver must belong to the same company; a driver outside
// it is reported as not found, never as a cross-tenant hint.
func (s *Service) Create(ctx context.Context, p shared.Principal, req CreateVehicleRequest) (*Vehicle, error) {
	if !p.IsAdmin() {
		return nil, httpx.ErrForbidden
	}

	driver, err := s.users.Get(ctx, req.DriverID)
	if err != nil || driver.CompanyID != p.CompanyID {
		return nil, fmt.Errorf("%w: driver not found", httpx.ErrNotFound)
	}

	return s.repo.Create(ctx, Vehicle{
		Make:               req.Make,
		Model:              req.Model,
		RegistrationNumber: req.RegistrationNumber,
		DriverID:           req.DriverID,
		CompanyID:          p.CompanyID,
	})
}
