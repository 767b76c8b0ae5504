package models

import "time"

type Organization struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Slug      string    `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Industry  string    `gorm:"size:100" json:"industry,omitempty"`
	Size      string    `gorm:"size:50" json:"size,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// OrganizationUser: членство пользователя в организации (роль внутри тенанта)
type OrganizationUser struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	OrganizationID uint      `gorm:"not null;uniqueIndex:idx_org_user" json:"organizationId"`
	UserID         uint      `gorm:"not null;uniqueIndex:idx_org_user" json:"userId"`
	Role           UserRole  `gorm:"type:varchar(20);not null" json:"role"`
	CreatedAt      time.Time `json:"createdAt"`

	Organization Organization `json:"-"`
	User         User         `json:"-"`
}
