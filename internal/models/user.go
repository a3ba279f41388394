package models

import (
	"fmt"
	"strings"
)

type UserRole string

const (
	RoleUser  UserRole = "USER"
	RoleAdmin UserRole = "ADMIN"
)

// Roles lists every valid role in display order.
var Roles = []UserRole{RoleUser, RoleAdmin}

// ParseRole converts user input into a UserRole. Matching is case-insensitive.
func ParseRole(s string) (UserRole, error) {
	candidate := UserRole(strings.ToUpper(strings.TrimSpace(s)))
	for _, r := range Roles {
		if r == candidate {
			return r, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", s)
}

type User struct {
	Base
	Name          string   `gorm:"type:varchar(150);not null" json:"name"`
	Username      string   `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`
	Email         string   `gorm:"type:varchar(150);uniqueIndex;not null" json:"email"`
	PasswordHash  string   `gorm:"type:varchar(255);not null" json:"-"`
	Role          UserRole `gorm:"type:varchar(20);not null;default:'USER'" json:"role"`
	Timezone      string   `gorm:"type:varchar(50);not null;default:'UTC'" json:"timezone"`
	Language      string   `gorm:"type:varchar(10);not null;default:'en'" json:"language"`
	ProfileImage  string   `gorm:"type:varchar(255)" json:"profile_image"`
	Bio           string   `gorm:"type:text" json:"bio"`
	EmailVerified bool     `gorm:"not null;default:false" json:"email_verified"`

	// Relations
	Tasks    []Task        `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Progress []Progress    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Settings *UserSettings `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
