package models

import "time"

type Severity string
type VulnStatus string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"

	VulnOpen       VulnStatus = "open"
	VulnInProgress VulnStatus = "in_progress"
	VulnResolved   VulnStatus = "resolved"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
		return true
	}
	return false
}

func (s VulnStatus) Valid() bool {
	switch s {
	case VulnOpen, VulnInProgress, VulnResolved:
		return true
	}
	return false
}

type Vulnerability struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	OrganizationID uint       `gorm:"index;not null" json:"organizationId"`
	CVEID          string     `gorm:"column:cve_id;size:20;not null" json:"cveId"`
	Title          string     `gorm:"type:text;not null" json:"title"`
	Description    string     `gorm:"type:text;not null" json:"description"`
	Severity       Severity   `gorm:"type:varchar(20);not null" json:"severity"`
	AffectedSystem string     `gorm:"type:text;not null" json:"affectedSystem"`
	Status         VulnStatus `gorm:"type:varchar(20);not null;default:open" json:"status"`
	DiscoveredAt   time.Time  `gorm:"autoCreateTime" json:"discoveredAt"`
	ResolvedAt     *time.Time `json:"resolvedAt"`
}
