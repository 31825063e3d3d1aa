package users

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/fleetdesk/fleetdesk/internal/platform/httpx"
	"github.com/fleetdesk/fleetdesk/internal/shared"
)

type memoryRepo struct {
	users  map[int64]User
	roles  map[string]Role
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		users: make(map[int64]User),
		roles: map[string]Role{
			shared.RoleAdmin:  {ID: 1, Name: shared.RoleAdmin},
			shared.RoleDriver: {ID: 2, Name: shared.RoleDriver},
		},
	}
}

func (r *memoryRepo) WithTx(tx pgx.Tx) Repository {
	return r
}

func (r *memoryRepo) Create(ctx context.Context, u User) (*User, error) {
	for _, existing := range r.users {
		if existing.Username == u.Username {
			return nil, httpx.ErrDuplicate
		}
	}
	r.nextID++
	u.ID = r.nextID
	for _, role := range r.roles {
		if role.ID == u.RoleID {
			u.Role = role.Name
		}
	}
	r.users[u.ID] = u
	return &u, nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (*User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	return &u, nil
}

func (r *memoryRepo) GetByUsername(ctx context.Context, username string) (*User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, httpx.ErrNotFound
}

func (r *memoryRepo) ListByCompany(ctx context.Context, companyID int64) ([]User, error) {
	var list []User
	for _, u := range r.users {
		if u.CompanyID == companyID {
			list = append(list, u)
		}
	}
	return list, nil
}

func (r *memoryRepo) Update(ctx context.Context, u User) (*User, error) {
	if _, ok := r.users[u.ID]; !ok {
		return nil, httpx.ErrNotFound
	}
	r.users[u.ID] = u
	return &u, nil
}

func (r *memoryRepo) Delete(ctx context.Context, id int64) error {
	delete(r.users, id)
	return nil
}

func (r *memoryRepo) GetRoleByName(ctx context.Context, name string) (*Role, error) {
	role, ok := r.roles[name]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	return &role, nil
}

var _ Repository = (*memoryRepo)(nil)

func adminPrincipal(companyID int64) shared.Principal {
	return shared.Principal{UserID: 1, Role: shared.RoleAdmin, CompanyID: companyID}
}

func driverPrincipal(userID, companyID int64) shared.Principal {
	return shared.Principal{UserID: userID, Role: shared.RoleDriver, CompanyID: companyID}
}

func TestCreateHashesPasswordAndPinsCompany(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	u, err := svc.Create(ctx, adminPrincipal(7), CreateUserRequest{
		Username: "driver1",
		Email:    "driver1@example.com",
		Password: "s3cret-pass",
		RoleID:   2,
	})
	require.NoError(t, err)
	require.Equal(t, int64(7), u.CompanyID)
	require.NotEqual(t, "s3cret-pass", u.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret-pass")))
}

func TestCreateRequiresAdmin(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.Create(context.Background(), driverPrincipal(3, 7), CreateUserRequest{
		Username: "driver2",
		Email:    "driver2@example.com",
		Password: "s3cret-pass",
		RoleID:   2,
	})
	require.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestListScopedToCompany(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.Create(ctx, adminPrincipal(1), CreateUserRequest{Username: "a", Email: "a@x.com", Password: "password1", RoleID: 2})
	require.NoError(t, err)
	_, err = svc.Create(ctx, adminPrincipal(2), CreateUserRequest{Username: "b", Email: "b@x.com", Password: "password1", RoleID: 2})
	require.NoError(t, err)

	list, err := svc.List(ctx, adminPrincipal(1))
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "a", list[0].Username)

	_, err = svc.List(ctx, driverPrincipal(3, 1))
	require.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestGetAcrossCompanyIsNotFound(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	u, err := svc.Create(ctx, adminPrincipal(1), CreateUserRequest{Username: "a", Email: "a@x.com", Password: "password1", RoleID: 2})
	require.NoError(t, err)

	// Same row, other tenant: existence must not leak.
	_, err = svc.Get(ctx, adminPrincipal(2), u.ID)
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestUpdateAppliesPartialFields(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	u, err := svc.Create(ctx, adminPrincipal(1), CreateUserRequest{Username: "a", Email: "a@x.com", Password: "password1", RoleID: 2})
	require.NoError(t, err)

	email := "new@x.com"
	updated, err := svc.Update(ctx, adminPrincipal(1), u.ID, UpdateUserRequest{Email: &email})
	require.NoError(t, err)
	require.Equal(t, "new@x.com", updated.Email)
	require.Equal(t, "a", updated.Username)
	require.Equal(t, u.PasswordHash, updated.PasswordHash)
}

func TestDeleteOutsideCompanyIsNotFound(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	u, err := svc.Create(ctx, adminPrincipal(1), CreateUserRequest{Username: "a", Email: "a@x.com", Password: "password1", RoleID: 2})
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(ctx, adminPrincipal(2), u.ID), httpx.ErrNotFound)
	require.NoError(t, svc.Delete(ctx, adminPrincipal(1), u.ID))
}
