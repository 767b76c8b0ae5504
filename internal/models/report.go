package models

import "time"

type ReportMetrics struct {
	SecurityScore   int `json:"securityScore"`
	Threats         int `json:"threats"`
	Vulnerabilities int `json:"vulnerabilities"`
}

type Report struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	OrganizationID uint           `gorm:"index;not null" json:"organizationId"`
	Title          string         `gorm:"size:255;not null" json:"title"`
	Description    string         `gorm:"type:text" json:"description"`
	Type           string         `gorm:"size:50;not null;index" json:"type"`
	Content        string         `gorm:"type:text;not null" json:"content"` // JSON-документ отчёта
	Metrics        *ReportMetrics `gorm:"serializer:json" json:"metrics,omitempty"`
	FileURL        *string        `gorm:"size:512" json:"fileUrl"`
	IconType       *string        `gorm:"size:32" json:"iconType"`
	CreatedAt      time.Time      `gorm:"index" json:"createdAt"`
}
