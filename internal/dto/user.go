package dto

import "github.com/Jorge-Marco5/go-api-template/internal/domain"

// CreateUserRequest is the administrative user-creation payload.
// name, email and password are required strings; role and isActive are
// administrative extras the public register endpoint does not accept.
type CreateUserRequest struct {
	Name     string      `json:"name" binding:"required"`
	Email    string      `json:"email" binding:"required"`
	Password string      `json:"password" binding:"required"`
	Role     domain.Role `json:"role"`
	IsActive *bool       `json:"isActive"`
}

// ReplaceUserRequest is the PUT payload; the same required fields as
// creation.
type ReplaceUserRequest struct {
	Name     string       `json:"name" binding:"required"`
	Email    string       `json:"email" binding:"required"`
	Password string       `json:"password" binding:"required"`
	Role     *domain.Role `json:"role"`
	IsActive *bool        `json:"isActive"`
}

// PatchUserRequest is the PATCH payload; every field optional.
type PatchUserRequest struct {
	Name     *string      `json:"name"`
	Email    *string      `json:"email"`
	Password *string      `json:"password"`
	Role     *domain.Role `json:"role"`
	IsActive *bool        `json:"isActive"`
}
