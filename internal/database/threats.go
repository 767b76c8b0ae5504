package database

import (
	"context"
	"fmt"

	"quantumeyes/internal/models"
)

const defaultRecentThreats = 10

// GetRecentThreats: последние угрозы организации, новые сверху.
func (s *Store) GetRecentThreats(ctx context.Context, orgID uint, limit int) ([]models.Threat, error) {
	if limit <= 0 {
		limit = defaultRecentThreats
	}

	var threats []models.Threat
	err := s.ctx(ctx).
		Where("organization_id = ?", orgID).
		Order("timestamp desc").
		Limit(limit).
		Find(&threats).Error
	if err != nil {
		return nil, fmt.Errorf("get recent threats: %w", err)
	}
	if len(threats) == 0 {
		return defaultThreats(orgID, s.now()), nil
	}
	return threats, nil
}

func (s *Store) GetThreat(ctx context.Context, id uint) (*models.Threat, error) {
	var t models.Threat
	if err := s.ctx(ctx).First(&t, id).Error; err != nil {
		return nil, wrapNotFound(err, "get threat")
	}
	return &t, nil
}

func (s *Store) CreateThreat(ctx context.Context, t *models.Threat) error {
	if t.Status == "" {
		t.Status = models.ThreatActive
	}
	if t.Icon == "" {
		t.Icon = "alert"
	}
	t.Timestamp = s.now()
	if err := s.ctx(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("create threat: %w", err)
	}
	return nil
}

func (s *Store) UpdateThreatStatus(ctx context.Context, id uint, status models.ThreatStatus) (*models.Threat, error) {
	res := s.ctx(ctx).
		Model(&models.Threat{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return nil, fmt.Errorf("update threat status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("update threat status: %w", ErrNotFound)
	}
	return s.GetThreat(ctx, id)
}
