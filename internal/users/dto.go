package users

// CreateUserRequest is the Admin payload for adding a company member.
// The company is always taken from the acting principal.
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	RoleID   int64  `json:"role_id" validate:"required,gt=0"`
}

// UpdateUserRequest carries optional fields for a partial update.
type UpdateUserRequest struct {
	Username *string `json:"username,omitempty" validate:"omitempty,min=3,max=64"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=8"`
	RoleID   *int64  `json:"role_id,omitempty" validate:"omitempty,gt=0"`
}
