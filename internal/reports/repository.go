package reports

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fleetdesk/fleetdesk/internal/shared"
)

// Repository fetches the booking facts that reports aggregate over.
// Scoping follows the booking rules: company membership is derived by
// joining through the driver.
type Repository interface {
	// CompletedBookings returns facts for completed bookings only.
	CompletedBookings(ctx context.Context, scope shared.Scope) ([]BookingFact, error)
	// AllBookings returns facts for bookings of any status.
	AllBookings(ctx context.Context, scope shared.Scope) ([]BookingFact, error)
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

func (r *repository) CompletedBookings(ctx context.Context, scope shared.Scope) ([]BookingFact, error) {
	return r.facts(ctx, scope, true)
}

func (r *repository) AllBookings(ctx context.Context, scope shared.Scope) ([]BookingFact, error) {
	return r.facts(ctx, scope, false)
}

func (r *repository) facts(ctx context.Context, scope shared.Scope, completedOnly bool) ([]BookingFact, error) {
	query := `SELECT b.price, b.pickup_time
		FROM bookings b JOIN users d ON b.driver_id = d.id
		WHERE d.company_id = $1`
	args := []any{scope.CompanyID}
	if scope.DriverID != nil {
		query += ` AND b.driver_id = $2`
		args = append(args, *scope.DriverID)
	}
	if completedOnly {
		query += ` AND b.status = 'completed'`
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var facts []BookingFact
	for rows.Next() {
		var f BookingFact
		if err := rows.Scan(&f.Price, &f.PickupTime); err != nil {
			return nil, err
		}
		facts = append(facts, f)
	}
	return facts, rows.Err()
}

var _ Repository = (*repository)(nil)
