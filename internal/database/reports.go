package database

import (
	"context"
	"fmt"

	"quantumeyes/internal/models"
)

// GetReports: отчёты организации, опционально по типу. Пустой список заменяется демо-отчётом.
func (s *Store) GetReports(ctx context.Context, orgID uint, reportType string) ([]models.Report, error) {
	q := s.ctx(ctx).Where("organization_id = ?", orgID)
	if reportType != "" {
		q = q.Where("type = ?", reportType)
	}

	var reports []models.Report
	if err := q.Order("created_at desc").Find(&reports).Error; err != nil {
		return nil, fmt.Errorf("get reports: %w", err)
	}
	if len(reports) == 0 {
		demo := defaultReport(orgID, s.now())
		if reportType == "" || reportType == demo.Type {
			return []models.Report{demo}, nil
		}
		return []models.Report{}, nil
	}
	return reports, nil
}

func (s *Store) GetReport(ctx context.Context, id uint) (*models.Report, error) {
	var r models.Report
	if err := s.ctx(ctx).First(&r, id).Error; err != nil {
		return nil, wrapNotFound(err, "get report")
	}
	return &r, nil
}

func (s *Store) CreateReport(ctx context.Context, r *models.Report) error {
	r.CreatedAt = s.now()
	if err := s.ctx(ctx).Create(r).Error; err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	return nil
}

func (s *Store) DeleteReport(ctx context.Context, id uint) error {
	res := s.ctx(ctx).Delete(&models.Report{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete report: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete report: %w", ErrNotFound)
	}
	return nil
}
