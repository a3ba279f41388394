package dto

import (
	"time"

	"github.com/yukikurage/timewise-api/internal/models"
	"github.com/yukikurage/timewise-api/internal/utils"
)

// UserDTO represents a user in API responses. The password hash is never included.
type UserDTO struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Username      string          `json:"username"`
	Email         string          `json:"email"`
	Role          models.UserRole `json:"role"`
	Timezone      string          `json:"timezone"`
	Language      string          `json:"language"`
	ProfileImage  string          `json:"profile_image"`
	Bio           string          `json:"bio"`
	EmailVerified bool            `json:"email_verified"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

// UserListResponse represents a paginated list of users
type UserListResponse struct {
	Users      []UserDTO                `json:"users"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ProfilePatchRequest lists the fields accepted by PUT /auth/profile
type ProfilePatchRequest struct {
	Name            *string `json:"name"`
	Timezone        *string `json:"timezone"`
	Language        *string `json:"language"`
	ProfileImage    *string `json:"profile_image"`
	Bio             *string `json:"bio"`
	CurrentPassword *string `json:"current_password"`
	NewPassword     *string `json:"new_password"`
}

// AdminUserPatchRequest lists the fields accepted by PUT /admin/users/:id
type AdminUserPatchRequest struct {
	Name          *string `json:"name"`
	Username      *string `json:"username"`
	Email         *string `json:"email"`
	Timezone      *string `json:"timezone"`
	Language      *string `json:"language"`
	ProfileImage  *string `json:"profile_image"`
	Bio           *string `json:"bio"`
	EmailVerified *bool   `json:"email_verified"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:            user.ID,
		Name:          user.Name,
		Username:      user.Username,
		Email:         user.Email,
		Role:          user.Role,
		Timezone:      user.Timezone,
		Language:      user.Language,
		ProfileImage:  user.ProfileImage,
		Bio:           user.Bio,
		EmailVerified: user.EmailVerified,
		CreatedAt:     user.CreatedAt,
		UpdatedAt:     user.UpdatedAt,
	}
}

// ToUserListResponse converts a page of users to UserListResponse
func ToUserListResponse(users []models.User, params utils.PaginationParams, total int64) UserListResponse {
	items := make([]UserDTO, len(users))
	for i, user := range users {
		items[i] = ToUserDTO(user)
	}
	return UserListResponse{
		Users:      items,
		Pagination: utils.NewPaginationResponse(params, total),
	}
}
