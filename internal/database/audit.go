package database

import (
	"context"
	"fmt"

	"quantumeyes/internal/models"
)

// CreateAuditLog пишет запись в журнал аудита.
func (s *Store) CreateAuditLog(ctx context.Context, userID uint, entity string, entityID uint, action, details string) error {
	record := models.AuditLog{
		UserID:   userID,
		Entity:   entity,
		EntityID: entityID,
		Action:   action,
		Details:  details,
	}
	if err := s.ctx(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}

func (s *Store) ListAuditLogs(ctx context.Context, limit int) ([]models.AuditLog, error) {
	if limit <= 0 {
		limit = 200
	}
	var logs []models.AuditLog
	err := s.ctx(ctx).
		Preload("User").
		Order("created_at desc").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	return logs, nil
}
