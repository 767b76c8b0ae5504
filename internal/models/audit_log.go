package models

import "time"

type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	UserID uint `json:"userId"`
	User   User `json:"user"`

	Entity   string `gorm:"size:50;not null" json:"entity"` // "threat", "vulnerability", "report" ...
	EntityID uint   `json:"entityId"`
	Action   string `gorm:"size:50;not null" json:"action"` // "create", "status_change", "delete" ...
	Details  string `gorm:"type:text" json:"details"`
}
