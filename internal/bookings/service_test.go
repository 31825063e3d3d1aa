package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/fleetdesk/fleetdesk/internal/platform/httpx"
	"github.com/fleetdesk/fleetdesk/internal/shared"
	"github.com/fleetdesk/fleetdesk/internal/users"
)

// memoryRepo mirrors the driver-join scoping of the SQL repository: a
// booking's company is the company of its driver.
type memoryRepo struct {
	bookings map[int64]Booking
	drivers  map[int64]int64 // driver -> company
	nextID   int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		bookings: make(map[int64]Booking),
		drivers:  map[int64]int64{10: 1, 11: 1, 20: 2},
	}
}

func (r *memoryRepo) inScope(b Booking, scope shared.Scope) bool {
	if r.drivers[b.DriverID] != scope.CompanyID {
		return false
	}
	if scope.DriverID != nil && b.DriverID != *scope.DriverID {
		return false
	}
	return true
}

func (r *memoryRepo) Create(ctx context.Context, b Booking) (*Booking, error) {
	r.nextID++
	b.ID = r.nextID
	b.CreatedAt = time.Now()
	r.bookings[b.ID] = b
	return &b, nil
}

func (r *memoryRepo) Get(ctx context.Context, scope shared.Scope, id int64) (*Booking, error) {
	b, ok := r.bookings[id]
	if !ok || !r.inScope(b, scope) {
		return nil, httpx.ErrNotFound
	}
	return &b, nil
}

func (r *memoryRepo) List(ctx context.Context, scope shared.Scope, req ListBookingsRequest) ([]Booking, error) {
	var list []Booking
	for _, b := range r.bookings {
		if !r.inScope(b, scope) {
			continue
		}
		if req.Status != nil && b.Status != *req.Status {
			continue
		}
		if req.DateFrom != nil && b.PickupTime.Before(*req.DateFrom) {
			continue
		}
		if req.DateTo != nil && b.PickupTime.After(*req.DateTo) {
			continue
		}
		list = append(list, b)
	}
	return list, nil
}

func (r *memoryRepo) UpdateStatus(ctx context.Context, id int64, status BookingStatus) (*Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	b.Status = status
	r.bookings[id] = b
	return &b, nil
}

func (r *memoryRepo) Delete(ctx context.Context, id int64) error {
	delete(r.bookings, id)
	return nil
}

var _ Repository = (*memoryRepo)(nil)

type stubUserRepo struct {
	companies map[int64]int64
}

func (r *stubUserRepo) WithTx(tx pgx.Tx) users.Repository { return r }

func (r *stubUserRepo) Get(ctx context.Context, id int64) (*users.User, error) {
	companyID, ok := r.companies[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	return &users.User{ID: id, Role: shared.RoleDriver, CompanyID: companyID}, nil
}

func (r *stubUserRepo) Create(ctx context.Context, u users.User) (*users.User, error) {
	return &u, nil
}
func (r *stubUserRepo) GetByUsername(ctx context.Context, username string) (*users.User, error) {
	return nil, httpx.ErrNotFound
}
func (r *stubUserRepo) ListByCompany(ctx context.Context, companyID int64) ([]users.User, error) {
	return nil, nil
}
func (r *stubUserRepo) Update(ctx context.Context, u users.User) (*users.User, error) {
	return &u, nil
}
func (r *stubUserRepo) Delete(ctx context.Context, id int64) error { return nil }
func (r *stubUserRepo) GetRoleByName(ctx context.Context, name string) (*users.Role, error) {
	return nil, httpx.ErrNotFound
}

var _ users.Repository = (*stubUserRepo)(nil)

type recordingPublisher struct {
	events []Event
}

func (p *recordingPublisher) Publish(event Event) {
	p.events = append(p.events, event)
}

func newTestService() (*Service, *memoryRepo, *recordingPublisher) {
	repo := newMemoryRepo()
	userRepo := &stubUserRepo{companies: map[int64]int64{10: 1, 11: 1, 20: 2}}
	pub := &recordingPublisher{}
	return NewService(repo, userRepo, pub), repo, pub
}

func admin(companyID int64) shared.Principal {
	return shared.Principal{UserID: 1, Role: shared.RoleAdmin, CompanyID: companyID}
}

func driver(userID, companyID int64) shared.Principal {
	return shared.Principal{UserID: userID, Role: shared.RoleDriver, CompanyID: companyID}
}

func createReq(driverID *int64) CreateBookingRequest {
	return CreateBookingRequest{
		VehicleID:   1,
		DriverID:    driverID,
		PickupTime:  time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
		Origin:      "Airport",
		Destination: "Harbour",
		Price:       45,
	}
}

func ptr[T any](v T) *T { return &v }

func TestCreateForcesUpcomingAndPublishes(t *testing.T) {
	svc, _, pub := newTestService()

	b, err := svc.Create(context.Background(), driver(10, 1), createReq(nil))
	require.NoError(t, err)
	require.Equal(t, StatusUpcoming, b.Status)
	require.Equal(t, int64(10), b.DriverID)

	require.Len(t, pub.events, 1)
	require.Equal(t, EventNewBooking, pub.events[0].Event)
	require.Equal(t, b.ID, pub.events[0].Booking.ID)
}

func TestCreateDriverCannotBookForOthers(t *testing.T) {
	svc, _, pub := newTestService()

	_, err := svc.Create(context.Background(), driver(10, 1), createReq(ptr(int64(11))))
	require.ErrorIs(t, err, httpx.ErrForbidden)
	require.Empty(t, pub.events)
}

func TestCreateAdminAssignsCompanyDriverOnly(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	b, err := svc.Create(ctx, admin(1), createReq(ptr(int64(11))))
	require.NoError(t, err)
	require.Equal(t, int64(11), b.DriverID)

	// A driver of another company looks exactly like a missing one.
	_, err = svc.Create(ctx, admin(1), createReq(ptr(int64(20))))
	require.ErrorIs(t, err, httpx.ErrNotFound)
	_, err = svc.Create(ctx, admin(1), createReq(ptr(int64(999))))
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestGetScopeMissReadsAsNotFound(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	b, err := svc.Create(ctx, driver(10, 1), createReq(nil))
	require.NoError(t, err)

	_, err = svc.Get(ctx, admin(2), b.ID)
	require.ErrorIs(t, err, httpx.ErrNotFound)

	_, err = svc.Get(ctx, driver(11, 1), b.ID)
	require.ErrorIs(t, err, httpx.ErrNotFound)

	got, err := svc.Get(ctx, admin(1), b.ID)
	require.NoError(t, err)
	require.Equal(t, b.ID, got.ID)
}

func TestListFilters(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	early, err := svc.Create(ctx, driver(10, 1), createReq(nil))
	require.NoError(t, err)

	lateReq := createReq(nil)
	lateReq.PickupTime = time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	_, err = svc.Create(ctx, driver(10, 1), lateReq)
	require.NoError(t, err)

	_, err = svc.SetStatus(ctx, driver(10, 1), early.ID, StatusCompleted)
	require.NoError(t, err)

	completed := StatusCompleted
	list, err := svc.List(ctx, admin(1), ListBookingsRequest{Status: &completed})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, early.ID, list[0].ID)

	// The pickup range is inclusive on both ends.
	list, err = svc.List(ctx, admin(1), ListBookingsRequest{
		DateFrom: ptr(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)),
		DateTo:   ptr(time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)),
	})
	require.NoError(t, err)
	require.Len(t, list, 2)

	bad := BookingStatus("finished")
	_, err = svc.List(ctx, admin(1), ListBookingsRequest{Status: &bad})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestSetStatusRules(t *testing.T) {
	svc, _, pub := newTestService()
	ctx := context.Background()

	b, err := svc.Create(ctx, driver(10, 1), createReq(nil))
	require.NoError(t, err)

	// Unknown status is rejected before anything is read.
	_, err = svc.SetStatus(ctx, driver(10, 1), b.ID, BookingStatus("finished"))
	require.ErrorIs(t, err, httpx.ErrValidation)

	// Another driver of the same company may see nothing and change nothing.
	_, err = svc.SetStatus(ctx, driver(11, 1), b.ID, StatusInProgress)
	require.ErrorIs(t, err, httpx.ErrNotFound)

	updated, err := svc.SetStatus(ctx, driver(10, 1), b.ID, StatusInProgress)
	require.NoError(t, err)
	require.Equal(t, StatusInProgress, updated.Status)

	// Backward transitions are allowed.
	updated, err = svc.SetStatus(ctx, admin(1), b.ID, StatusUpcoming)
	require.NoError(t, err)
	require.Equal(t, StatusUpcoming, updated.Status)

	require.Len(t, pub.events, 3)
	require.Equal(t, EventUpdateBooking, pub.events[1].Event)
	require.Equal(t, EventUpdateBooking, pub.events[2].Event)
}

func TestDeleteOutOfScopeIsNoOp(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	b, err := svc.Create(ctx, driver(10, 1), createReq(nil))
	require.NoError(t, err)

	// Other tenant: nothing happens, nothing leaks.
	require.NoError(t, svc.Delete(ctx, admin(2), b.ID))
	require.Contains(t, repo.bookings, b.ID)

	require.NoError(t, svc.Delete(ctx, admin(1), b.ID))
	require.NotContains(t, repo.bookings, b.ID)

	// Deleting again stays silent.
	require.NoError(t, svc.Delete(ctx, admin(1), b.ID))
}
