package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fleetdesk/fleetdesk/internal/platform/httpx"
	"github.com/fleetdesk/fleetdesk/internal/shared"
)

// Repository defines persistence operations for bookings. Every read
// takes a Scope: the company filter is applied by joining through the
// driver, and the optional driver filter narrows non-admin visibility.
type Repository interface {
	Create(ctx context.Context, b Booking) (*Booking, error)
	Get(ctx context.Context, scope shared.Scope, id int64) (*Booking, error)
	List(ctx context.Context, scope shared.Scope, req ListBookingsRequest) ([]Booking, error)
	UpdateStatus(ctx context.Context, id int64, status BookingStatus) (*Booking, error)
	Delete(ctx context.Context, id int64) error
}

type dbtx interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

type repository struct {
	db dbtx
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const bookingColumns = `b.id, b.vehicle_id, b.driver_id, b.status, b.pickup_time,
	b.dropoff_time, b.origin, b.destination, b.price, b.created_at`

func (r *repository) Create(ctx context.Context, b Booking) (*Booking, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO bookings (vehicle_id, driver_id, status, pickup_time, dropoff_time, origin, destination, price)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at`,
		b.VehicleID, b.DriverID, b.Status, b.PickupTime, b.DropoffTime, b.Origin, b.Destination, b.Price,
	)
	if err := row.Scan(&b.ID, &b.CreatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repository) Get(ctx context.Context, scope shared.Scope, id int64) (*Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings b JOIN users d ON b.driver_id = d.id
		WHERE b.id = $1 AND d.company_id = $2`
	args := []any{id, scope.CompanyID}
	if scope.DriverID != nil {
		query += ` AND b.driver_id = $3`
		args = append(args, *scope.DriverID)
	}

	b, err := scanBooking(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Absence and scope-miss are indistinguishable on purpose.
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *repository) List(ctx context.Context, scope shared.Scope, req ListBookingsRequest) ([]Booking, error) {
	conditions := []string{"d.company_id = $1"}
	args := []any{scope.CompanyID}
	argPos := 2

	if scope.DriverID != nil {
		conditions = append(conditions, fmt.Sprintf("b.driver_id = $%d", argPos))
		args = append(args, *scope.DriverID)
		argPos++
	}
	if req.Status != nil {
		conditions = append(conditions, fmt.Sprintf("b.status = $%d", argPos))
		args = append(args, *req.Status)
		argPos++
	}
	if req.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("b.pickup_time >= $%d", argPos))
		args = append(args, *req.DateFrom)
		argPos++
	}
	if req.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("b.pickup_time <= $%d", argPos))
		args = append(args, *req.DateTo)
		argPos++
	}

	whereClause := conditions[0]
	for i := 1; i < len(conditions); i++ {
		whereClause += " AND " + conditions[i]
	}

	query := fmt.Sprintf(`SELECT `+bookingColumns+`
		FROM bookings b JOIN users d ON b.driver_id = d.id
		WHERE %s
		ORDER BY b.pickup_time, b.id`, whereClause)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *b)
	}
	return list, rows.Err()
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status BookingStatus) (*Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx,
		`UPDATE bookings b SET status = $1 WHERE b.id = $2
		 RETURNING `+bookingColumns,
		status, id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	return err
}

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	err := row.Scan(&b.ID, &b.VehicleID, &b.DriverID, &b.Status, &b.PickupTime,
		&b.DropoffTime, &b.Origin, &b.Destination, &b.Price, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

var _ Repository = (*repository)(nil)
