package fleet

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

// Repository defines persistence operations for vehicles.
type Repository interface {
	List(ctx context.Context, scope shared.Scope) ([]Vehicle, error)
	Create(ctx context.Context, v Vehicle) (*Vehicle, error)
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

func (r *repository) List(ctx context.Context, scope shared.Scope) ([]Vehicle, error) {
	query := `SELECT id, make, model, registration_number, driver_id, company_id
		FROM vehicles WHERE company_id = $1`
	args := []any{scope.CompanyID}
	if scope.DriverID != nil {
		query += ` AND driver_id = $2`
		args = append(args, *scope.DriverID)
	}
	query += ` ORDER BY id`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Vehicle
	for rows.Next() {
		var v Vehicle
		if err := rows.Scan(&v.ID, &v.Make, &v.Model, &v.RegistrationNumber, &v.DriverID, &v.CompanyID); err != nil {
			return nil, err
		}
		list = append(list, v)
	}
	return list, rows.Err()
}

func (r *repository) Create(ctx context.Context, v Vehicle) (*Vehicle, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO vehicles (make, model, registration_number, driver_id, company_id)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		v.Make, v.Model, v.RegistrationNumber, v.DriverID, v.CompanyID,
	)
	if err := row.Scan(&v.ID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("%w: registration number already registered", httpx.ErrDuplicate)
		}
		return nil, err
	}
	return &v, nil
}

var _ Repository = (*repository)(nil)
