package companies

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fleetdesk/fleetdesk/internal/platform/httpx"
)

// Repository defines persistence operations for companies.
type Repository interface {
	// WithTx returns a copy of the repository bound to the transaction,
	// so company creation can share a transaction with user creation.
	WithTx(tx pgx.Tx) Repository
	Create(ctx context.Context, c Company) (*Company, error)
	Get(ctx context.Context, id int64) (*Company, error)
	GetByName(ctx context.Context, name string) (*Company, error)
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

func (r *repository) WithTx(tx pgx.Tx) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, c Company) (*Company, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO companies (name, address) VALUES ($1, $2) RETURNING id`,
		c.Name, c.Address,
	)
	if err := row.Scan(&c.ID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, httpx.ErrDuplicate
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Company, error) {
	return r.scanOne(ctx, `SELECT id, name, address FROM companies WHERE id = $1`, id)
}

func (r *repository) GetByName(ctx context.Context, name string) (*Company, error) {
	return r.scanOne(ctx, `SELECT id, name, address FROM companies WHERE name = $1`, name)
}

func (r *repository) scanOne(ctx context.Context, query string, arg any) (*Company, error) {
	var c Company
	err := r.db.QueryRow(ctx, query, arg).Scan(&c.ID, &c.Name, &c.Address)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

var _ Repository = (*repository)(nil)
