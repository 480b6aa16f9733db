// AngelaMos | 2026
// dto.go

package user

import (
	"time"

	"github.com/science-ai/backend/internal/usage"
)

// ProvisionUserRequest registers an account created by the identity service.
// ID is that service's subject; a new one is minted when omitted.
type ProvisionUserRequest struct {
	ID    string `json:"id,omitempty"   validate:"omitempty,max=64"`
	Email string `json:"email"          validate:"required,email,max=255"`
	Name  string `json:"name"           validate:"required,min=1,max=100"`
	Role  string `json:"role,omitempty" validate:"omitempty,oneof=user admin"`
	Plan  string `json:"plan,omitempty" validate:"omitempty,oneof=free starter pro premium"`
}

type UpdateUserRequest struct {
	Name *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
}

type UpdateUserRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}

type ChangePlanRequest struct {
	Plan string `json:"plan" validate:"required,oneof=free starter pro premium"`
}

type UserResponse struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Role      string     `json:"role"`
	Plan      usage.Plan `json:"plan"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type ListUsersParams struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Search   string `json:"search"`
	Role     string `json:"role"`
	Plan     string `json:"plan"`
}

func (p *ListUsersParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListUsersParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		Plan:      u.Plan,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func ToUserResponseList(users []User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, ToUserResponse(&users[i]))
	}
	return responses
}
