package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/fleetdesk/fleetdesk/internal/platform/httpx"
	"github.com/fleetdesk/fleetdesk/internal/shared"
	"github.com/fleetdesk/fleetdesk/internal/users"
)

// Service wraps the booking lifecycle rules: creation, scoped reads,
// status transitions and deletion, with events published on mutations.
type Service struct {
	repo      Repository
	users     users.Repository
	publisher Publisher
}

// NewService constructs a new Service. The publisher may be nil, in
// which case mutations are silent.
func NewService(repo Repository, userRepo users.Repository, publisher Publisher) *Service {
	return &Service{repo: repo, users: userRepo, publisher: publisher}
}

// Create persists a new booking in the upcoming state. The driver
// defaults to the acting principal; an Admin may assign any driver of
// the company, a driver may only book for themselves.
func (s *Service) Create(ctx context.Context, p shared.Principal, req CreateBookingRequest) (*Booking, error) {
	driverID := p.UserID
	if req.DriverID != nil {
		driverID = *req.DriverID
	}
	if driverID != p.UserID && !p.IsAdmin() {
		return nil, httpx.ErrForbidden
	}
	if driverID != p.UserID {
		driver, err := s.users.Get(ctx, driverID)
		if err != nil || driver.CompanyID != p.CompanyID {
			return nil, fmt.Errorf("%w: driver not found", httpx.ErrNotFound)
		}
	}

	b, err := s.repo.Create(ctx, Booking{
		VehicleID:   req.VehicleID,
		DriverID:    driverID,
		Status:      StatusUpcoming,
		PickupTime:  req.PickupTime,
		DropoffTime: req.DropoffTime,
		Origin:      req.Origin,
		Destination: req.Destination,
		Price:       req.Price,
	})
	if err != nil {
		return nil, err
	}

	s.publish(Event{Event: EventNewBooking, Booking: b})
	return b, nil
}

// List returns the bookings visible to the principal, optionally
// narrowed by status and pickup range.
func (s *Service) List(ctx context.Context, p shared.Principal, req ListBookingsRequest) ([]Booking, error) {
	if req.Status != nil && !req.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", httpx.ErrValidation, *req.Status)
	}
	return s.repo.List(ctx, shared.ScopeFor(p), req)
}

// Get returns a single booking within the principal's scope. A booking
// of another tenant and a booking that does not exist are both reported
// as not found.
func (s *Service) Get(ctx context.Context, p shared.Principal, id int64) (*Booking, error) {
	return s.repo.Get(ctx, shared.ScopeFor(p), id)
}

// SetStatus moves a booking to a new state. Any state is reachable from
// any other. Only a company Admin or the assigned driver may transition
// a booking; concurrent transitions resolve as last write wins.
func (s *Service) SetStatus(ctx context.Context, p shared.Principal, id int64, status BookingStatus) (*Booking, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", httpx.ErrValidation, status)
	}

	b, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if !p.IsAdmin() && b.DriverID != p.UserID {
		return nil, httpx.ErrForbidden
	}

	updated, err := s.repo.UpdateStatus(ctx, b.ID, status)
	if err != nil {
		return nil, err
	}

	s.publish(Event{Event: EventUpdateBooking, Booking: updated})
	return updated, nil
}

// Delete removes a booking within the principal's scope. Deleting a
// missing or out-of-scope booking is a no-op, not an error.
func (s *Service) Delete(ctx context.Context, p shared.Principal, id int64) error {
	b, err := s.Get(ctx, p, id)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return nil
		}
		return err
	}
	return s.repo.Delete(ctx, b.ID)
}

func (s *Service) publish(event Event) {
	if s.publisher != nil {
		s.publisher.Publish(event)
	}
}
