package models

import "time"

type ThreatLevel string
type ThreatStatus string

const (
	ThreatCritical ThreatLevel = "critical"
	ThreatWarning  ThreatLevel = "warning"
	ThreatInfo     ThreatLevel = "info"
	ThreatSuccess  ThreatLevel = "success"

	ThreatActive   ThreatStatus = "active"
	ThreatResolved ThreatStatus = "resolved"
	ThreatIgnored  ThreatStatus = "ignored"
)

func (l ThreatLevel) Valid() bool {
	switch l {
	case ThreatCritical, ThreatWarning, ThreatInfo, ThreatSuccess:
		return true
	}
	return false
}

func (s ThreatStatus) Valid() bool {
	switch s {
	case ThreatActive, ThreatResolved, ThreatIgnored:
		return true
	}
	return false
}

// ThreatActions: кнопки карточки угрозы на дашборде.
type ThreatActions struct {
	Primary   string   `json:"primary"`
	Secondary []string `json:"secondary,omitempty"`
}

type Threat struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	OrganizationID uint          `gorm:"index;not null" json:"organizationId"`
	Title          string        `gorm:"type:text;not null" json:"title"`
	Description    string        `gorm:"type:text;not null" json:"description"`
	Level          ThreatLevel   `gorm:"type:varchar(20);not null" json:"level"`
	Source         string        `gorm:"type:text" json:"source,omitempty"`
	Timestamp      time.Time     `gorm:"autoCreateTime;index" json:"timestamp"`
	Status         ThreatStatus  `gorm:"type:varchar(20);not null;default:active" json:"status"`
	Icon           string        `gorm:"size:20;default:alert" json:"icon"`
	Actions        ThreatActions `gorm:"serializer:json;not null" json:"actions"`
}
