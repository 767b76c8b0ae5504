package database

import (
	"context"
	"fmt"

	"quantumeyes/internal/models"
)

const defaultAnalysisLimit = 10

func (s *Store) GetAnalysisResults(ctx context.Context, orgID uint, limit int) ([]models.AnalysisResult, error) {
	if limit <= 0 {
		limit = defaultAnalysisLimit
	}

	var results []models.AnalysisResult
	err := s.ctx(ctx).
		Where("organization_id = ?", orgID).
		Order("timestamp desc").
		Limit(limit).
		Find(&results).Error
	if err != nil {
		return nil, fmt.Errorf("get analysis results: %w", err)
	}
	return results, nil
}

func (s *Store) GetAnalysisResult(ctx context.Context, id uint) (*models.AnalysisResult, error) {
	var r models.AnalysisResult
	if err := s.ctx(ctx).First(&r, id).Error; err != nil {
		return nil, wrapNotFound(err, "get analysis result")
	}
	return &r, nil
}

func (s *Store) CreateAnalysisResult(ctx context.Context, r *models.AnalysisResult) error {
	if r.Timestamp.IsZero() {
		r.Timestamp = s.now()
	}
	if err := s.ctx(ctx).Create(r).Error; err != nil {
		return fmt.Errorf("create analysis result: %w", err)
	}
	return nil
}
