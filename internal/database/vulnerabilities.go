package database

import (
	"context"
	"fmt"
	"time"

	"quantumeyes/internal/models"
)

func (s *Store) GetVulnerabilities(ctx context.Context, orgID uint) ([]models.Vulnerability, error) {
	var vulns []models.Vulnerability
	err := s.ctx(ctx).
		Where("organization_id = ?", orgID).
		Order("discovered_at desc").
		Find(&vulns).Error
	if err != nil {
		return nil, fmt.Errorf("get vulnerabilities: %w", err)
	}
	if len(vulns) == 0 {
		return defaultVulnerabilities(orgID, s.now()), nil
	}
	return vulns, nil
}

func (s *Store) GetVulnerability(ctx context.Context, id uint) (*models.Vulnerability, error) {
	var v models.Vulnerability
	if err := s.ctx(ctx).First(&v, id).Error; err != nil {
		return nil, wrapNotFound(err, "get vulnerability")
	}
	return &v, nil
}

func (s *Store) CreateVulnerability(ctx context.Context, v *models.Vulnerability) error {
	if v.Status == "" {
		v.Status = models.VulnOpen
	}
	v.DiscoveredAt = s.now()
	if v.Status == models.VulnResolved {
		now := s.now()
		v.ResolvedAt = &now
	}
	if err := s.ctx(ctx).Create(v).Error; err != nil {
		return fmt.Errorf("create vulnerability: %w", err)
	}
	return nil
}

// UpdateVulnerabilityStatus: resolved_at заполнен тогда и только тогда, когда статус resolved.
func (s *Store) UpdateVulnerabilityStatus(ctx context.Context, id uint, status models.VulnStatus) (*models.Vulnerability, error) {
	var resolvedAt *time.Time
	if status == models.VulnResolved {
		now := s.now()
		resolvedAt = &now
	}

	res := s.ctx(ctx).
		Model(&models.Vulnerability{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "resolved_at": resolvedAt})
	if res.Error != nil {
		return nil, fmt.Errorf("update vulnerability status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("update vulnerability status: %w", ErrNotFound)
	}
	return s.GetVulnerability(ctx, id)
}

// SeverityCounts: счётчики по уровням критичности для виджета дашборда.
type SeverityCounts struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
}

// CategorizeVulnerabilities раскладывает уязвимости по severity и возвращает критические.
func CategorizeVulnerabilities(vulns []models.Vulnerability) (SeverityCounts, []models.Vulnerability) {
	var counts SeverityCounts
	critical := make([]models.Vulnerability, 0)
	for _, v := range vulns {
		switch v.Severity {
		case models.SeverityCritical:
			counts.Critical++
			critical = append(critical, v)
		case models.SeverityHigh:
			counts.High++
		case models.SeverityMedium:
			counts.Medium++
		case models.SeverityLow:
			counts.Low++
		}
	}
	return counts, critical
}
