package models

import "time"

type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleAnalyst UserRole = "analyst"
	RoleViewer  UserRole = "viewer"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleAnalyst, RoleViewer:
		return true
	}
	return false
}

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:50;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         UserRole  `gorm:"type:varchar(20);not null;default:viewer" json:"role"`
	Email        string    `gorm:"size:255" json:"email,omitempty"`
	FirstName    string    `gorm:"size:100" json:"firstName,omitempty"`
	LastName     string    `gorm:"size:100" json:"lastName,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Initials: для меню пользователя в шапке дашборда.
func (u User) Initials() string {
	first := []rune(u.FirstName)
	last := []rune(u.LastName)
	switch {
	case len(first) > 0 && len(last) > 0:
		return string(first[0]) + string(last[0])
	case len(first) > 0:
		return string(first[0])
	}
	name := []rune(u.Username)
	if len(name) >= 2 {
		return string(name[:2])
	}
	return string(name)
}

func (u User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	}
	return u.Username
}
