package database

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"quantumeyes/internal/models"
)

// ====== МЕТРИКИ БЕЗОПАСНОСТИ ======

// GetSecurityMetrics возвращает последнюю запись организации или демо-значения.
func (s *Store) GetSecurityMetrics(ctx context.Context, orgID uint) (*models.SecurityMetrics, error) {
	var rows []models.SecurityMetrics
	err := s.ctx(ctx).
		Where("organization_id = ?", orgID).
		Order("id desc").
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("get security metrics: %w", err)
	}
	if len(rows) == 0 {
		return defaultSecurityMetrics(orgID, s.now()), nil
	}
	return &rows[0], nil
}

func (s *Store) CreateSecurityMetrics(ctx context.Context, m *models.SecurityMetrics) error {
	m.Timestamp = s.now()
	if err := s.ctx(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("create security metrics: %w", err)
	}
	return nil
}

// ====== ЗРЕЛОСТЬ ======

func (s *Store) GetCyberMaturity(ctx context.Context, orgID uint) (*models.CyberMaturity, error) {
	var rows []models.CyberMaturity
	err := s.ctx(ctx).
		Where("organization_id = ?", orgID).
		Order("id desc").
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("get cyber maturity: %w", err)
	}
	if len(rows) == 0 {
		return defaultCyberMaturity(orgID, s.now()), nil
	}
	return &rows[0], nil
}

// UpdateCyberMaturity добавляет новый снимок, история сохраняется.
func (s *Store) UpdateCyberMaturity(ctx context.Context, m *models.CyberMaturity) error {
	m.ID = 0
	m.LastUpdated = s.now()
	if err := s.ctx(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("update cyber maturity: %w", err)
	}
	return nil
}

// ====== СЕТЕВАЯ АКТИВНОСТЬ ======

type TrafficPoint struct {
	Value     float64 `json:"value"`
	Timestamp int64   `json:"timestamp"` // unix ms
	Anomaly   bool    `json:"anomaly"`
}

type ActivityAnomaly struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type NetworkActivitySummary struct {
	TrafficPoints     []TrafficPoint    `json:"trafficPoints"`
	InboundTraffic    float64           `json:"inboundTraffic"`  // GB
	OutboundTraffic   float64           `json:"outboundTraffic"` // GB
	ActiveConnections int               `json:"activeConnections"`
	Anomalies         []ActivityAnomaly `json:"anomalies"`
}

const (
	trafficPointCount    = 25
	trafficPointInterval = 15 * time.Minute
	trafficSpikeIndex    = 18
	trafficSpikeValue    = 180
)

// GetNetworkActivity строит кривую трафика за последние 6 часов.
// Кривая синтетическая; итоговые объёмы берутся из последней записанной активности, если она есть.
func (s *Store) GetNetworkActivity(ctx context.Context, orgID uint) (*NetworkActivitySummary, error) {
	now := s.now()

	points := make([]TrafficPoint, 0, trafficPointCount)
	for i := 0; i < trafficPointCount; i++ {
		value := 50 + math.Sin(float64(i)*0.5)*50 + rand.Float64()*50
		anomaly := i == trafficSpikeIndex
		if anomaly {
			value = trafficSpikeValue
		}
		ts := now.Add(-time.Duration(trafficPointCount-1-i) * trafficPointInterval)
		points = append(points, TrafficPoint{Value: value, Timestamp: ts.UnixMilli(), Anomaly: anomaly})
	}

	summary := &NetworkActivitySummary{
		TrafficPoints:     points,
		InboundTraffic:    3.2,
		OutboundTraffic:   1.8,
		ActiveConnections: 247,
		Anomalies: []ActivityAnomaly{{
			ID:          "1",
			Title:       "Pic de trafic inhabituel",
			Description: "Augmentation soudaine du trafic UDP à 11:42. 420% au-dessus de la référence normale.",
		}},
	}

	var rows []models.NetworkActivity
	err := s.ctx(ctx).
		Where("organization_id = ?", orgID).
		Order("timestamp desc").
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("get network activity: %w", err)
	}
	if len(rows) > 0 {
		last := rows[0]
		summary.InboundTraffic = math.Round(float64(last.InboundTraffic)/1024*10) / 10
		summary.OutboundTraffic = math.Round(float64(last.OutboundTraffic)/1024*10) / 10
		summary.ActiveConnections = last.ActiveConnections
	}

	return summary, nil
}

func (s *Store) RecordNetworkActivity(ctx context.Context, a *models.NetworkActivity) error {
	a.Timestamp = s.now()
	if err := s.ctx(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("record network activity: %w", err)
	}
	return nil
}
