package models

import "time"

// QuantumConfig: сохранённый набор параметров "квантового" анализа.
// Реальных вычислений нет, параметры лишь подставляются в ответы API.
type QuantumConfig struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	OrganizationID uint      `gorm:"index;not null" json:"organizationId"`
	Name           string    `gorm:"size:255;not null" json:"name"`
	Qubits         int       `gorm:"not null;default:4" json:"qubits"`
	FeatureMap     string    `gorm:"size:32;not null;default:zz" json:"feature_map"`
	Ansatz         string    `gorm:"size:32;not null;default:real" json:"ansatz"`
	Shots          int       `gorm:"not null;default:1024" json:"shots"`
	ModelType      string    `gorm:"size:32;not null;default:qsvc" json:"model_type"`
	Active         bool      `gorm:"not null" json:"active"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type NetworkConnection struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	OrganizationID  uint      `gorm:"index;not null" json:"organizationId"`
	SourceIP        string    `gorm:"size:45;not null" json:"source_ip"`
	DestinationIP   string    `gorm:"size:45;not null" json:"destination_ip"`
	Protocol        string    `gorm:"size:16;not null" json:"protocol"`
	DestinationPort int       `gorm:"not null" json:"destination_port"`
	PacketSize      int       `json:"packet_size"`
	Duration        float64   `json:"duration"`
	BytesSent       int       `json:"bytes_sent"`
	BytesReceived   int       `json:"bytes_received"`
	IsAnomaly       bool      `gorm:"index;default:false" json:"is_anomaly"`
	AnomalyScore    *float64  `json:"anomaly_score,omitempty"`
	AnomalyType     string    `gorm:"size:32" json:"anomaly_type,omitempty"`
	Timestamp       time.Time `gorm:"autoCreateTime;index" json:"timestamp"`
}

type AnalysisResult struct {
	ID                  uint           `gorm:"primaryKey" json:"id"`
	OrganizationID      uint           `gorm:"index;not null" json:"organizationId"`
	Timestamp           time.Time      `gorm:"autoCreateTime;index" json:"timestamp"`
	ConnectionsAnalyzed int            `gorm:"not null" json:"connectionsAnalyzed"`
	AnomaliesDetected   int            `gorm:"not null" json:"anomaliesDetected"`
	ExecutionTimeMs     int            `json:"executionTimeMs"`
	ResultData          map[string]any `gorm:"serializer:json" json:"resultData"`
	Quantum             bool           `gorm:"default:false" json:"quantum"`
	Qubits              int            `json:"qubits"`
	FeatureMap          string         `gorm:"size:32" json:"featureMap"`
	Ansatz              string         `gorm:"size:32" json:"ansatz"`
	Shots               int            `json:"shots"`
}
