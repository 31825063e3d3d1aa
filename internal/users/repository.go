package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fleetdesk/fleetdesk/internal/platform/httpx"
)

// Repository defines persistence operations for users and roles.
type Repository interface {
	// WithTx returns a copy of the repository bound to the transaction.
	WithTx(tx pgx.Tx) Repository
	Create(ctx context.Context, u User) (*User, error)
	Get(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	ListByCompany(ctx context.Context, companyID int64) ([]User, error)
	Update(ctx context.Context, u User) (*User, error)
	Delete(ctx context.Context, id int64) error
	GetRoleByName(ctx context.Context, name string) (*Role, error)
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

const userColumns = `u.id, u.username, u.email, u.password_hash, u.role_id, r.name, u.company_id`

func (r *repository) Create(ctx context.Context, u User) (*User, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO users (username, email, password_hash, role_id, company_id)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		u.Username, u.Email, u.PasswordHash, u.RoleID, u.CompanyID,
	)
	if err := row.Scan(&u.ID); err != nil {
		return nil, mapConflict(err)
	}
	return r.Get(ctx, u.ID)
}

func (r *repository) Get(ctx context.Context, id int64) (*User, error) {
	return r.scanOne(ctx, `SELECT `+userColumns+`
		FROM users u JOIN roles r ON u.role_id = r.id WHERE u.id = $1`, id)
}

func (r *repository) GetByUsername(ctx context.Context, username string) (*User, error) {
	return r.scanOne(ctx, `SELECT `+userColumns+`
		FROM users u JOIN roles r ON u.role_id = r.id WHERE u.username = $1`, username)
}

func (r *repository) ListByCompany(ctx context.Context, companyID int64) ([]User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+`
		FROM users u JOIN roles r ON u.role_id = r.id
		WHERE u.company_id = $1 ORDER BY u.id`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.RoleID, &u.Role, &u.CompanyID); err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

func (r *repository) Update(ctx context.Context, u User) (*User, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET username = $1, email = $2, password_hash = $3, role_id = $4 WHERE id = $5`,
		u.Username, u.Email, u.PasswordHash, u.RoleID, u.ID,
	)
	if err != nil {
		return nil, mapConflict(err)
	}
	if tag.RowsAffected() == 0 {
		return nil, httpx.ErrNotFound
	}
	return r.Get(ctx, u.ID)
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}

func (r *repository) GetRoleByName(ctx context.Context, name string) (*Role, error) {
	var role Role
	err := r.db.QueryRow(ctx, `SELECT id, name FROM roles WHERE name = $1`, name).Scan(&role.ID, &role.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &role, nil
}

func (r *repository) scanOne(ctx context.Context, query string, arg any) (*User, error) {
	var u User
	err := r.db.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.RoleID, &u.Role, &u.CompanyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// mapConflict turns unique violations into the duplicate sentinel,
// naming the conflicting field.
func mapConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case "users_username_key":
			return fmt.Errorf("%w: username already registered", httpx.ErrDuplicate)
		case "users_email_key":
			return fmt.Errorf("%w: email already registered", httpx.ErrDuplicate)
		}
		return httpx.ErrDuplicate
	}
	return err
}

var _ Repository = (*repository)(nil)
