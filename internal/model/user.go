package model

import "time"

// Role is a user's plain-language role.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents a registered account.
type User struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	Username        string    `json:"username" gorm:"uniqueIndex;size:191;not null"`
	Email           string    `json:"email" gorm:"uniqueIndex;size:191;not null"`
	PasswordHash    string    `json:"-" gorm:"column:password;size:255;not null"` // Never expose in JSON
	Role            Role      `json:"role" gorm:"type:varchar(10);not null;default:'USER'"`
	ProfileImageURL *string   `json:"profileImage,omitempty" gorm:"type:text"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"-"`
}
