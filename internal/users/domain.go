package users

// User is a company member: an Admin with company-wide rights or a
// Driver scoped to their own resources.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	RoleID       int64  `json:"role_id"`
	Role         string `json:"role"`
	CompanyID    int64  `json:"company_id"`
}

// Role is a named authorization tier. Admin and Driver are seeded.
type Role struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
