// estateadmin | 2026
// dto.go

package user

import (
	"time"
)

type AssignRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin superadmin"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type UserDetailResponse struct {
	UserResponse
	Listings OwnerListingStats `json:"listings"`
}

// OwnerListingStats summarizes the listings a user currently owns.
type OwnerListingStats struct {
	Total     int `db:"total"     json:"total"`
	Published int `db:"published" json:"published"`
	Pending   int `db:"pending"   json:"pending"`
	Refused   int `db:"refused"   json:"refused"`
	Purchased int `db:"purchased" json:"purchased"`
}

type ListUsersParams struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Search   string `json:"search"`
	Role     string `json:"role"`
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
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func ToUserResponseList(users []User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, ToUserResponse(&u))
	}
	return responses
}
