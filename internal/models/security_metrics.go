package models

import "time"

type SecurityMetrics struct {
	ID                    uint      `gorm:"primaryKey" json:"id"`
	OrganizationID        uint      `gorm:"index;not null" json:"organizationId"`
	SecurityScore         int       `gorm:"not null" json:"securityScore"`
	SecurityScoreChange   *int      `json:"securityScoreChange"`
	ActiveThreats         int       `gorm:"not null" json:"activeThreats"`
	ActiveThreatsChange   *int      `json:"activeThreatsChange"`
	Vulnerabilities       int       `gorm:"not null" json:"vulnerabilities"`
	VulnerabilitiesChange *int      `json:"vulnerabilitiesChange"`
	MonitoredAssets       int       `gorm:"not null" json:"monitoredAssets"`
	Timestamp             time.Time `gorm:"autoCreateTime" json:"timestamp"`
}

// CyberMaturity: оценка зрелости по пяти направлениям (0..100).
// Обновление = новая строка, актуальна последняя.
type CyberMaturity struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	OrganizationID uint      `gorm:"index;not null" json:"organizationId"`
	Governance     int       `gorm:"not null" json:"governance"`
	Protection     int       `gorm:"not null" json:"protection"`
	Detection      int       `gorm:"not null" json:"detection"`
	Response       int       `gorm:"not null" json:"response"`
	Recovery       int       `gorm:"not null" json:"recovery"`
	OverallScore   int       `gorm:"not null" json:"overallScore"`
	LastUpdated    time.Time `gorm:"autoCreateTime" json:"lastUpdated"`
}

func (CyberMaturity) TableName() string { return "cyber_maturity" }

type NetworkActivity struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	OrganizationID    uint      `gorm:"index;not null" json:"organizationId"`
	Timestamp         time.Time `gorm:"autoCreateTime" json:"timestamp"`
	InboundTraffic    int       `gorm:"not null" json:"inboundTraffic"`  // MB
	OutboundTraffic   int       `gorm:"not null" json:"outboundTraffic"` // MB
	ActiveConnections int       `gorm:"not null" json:"activeConnections"`
	AnomalyDetected   bool      `gorm:"default:false" json:"anomalyDetected"`
}

func (NetworkActivity) TableName() string { return "network_activity" }
