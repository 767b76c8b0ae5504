package database

import (
	"context"
	"fmt"

	"quantumeyes/internal/models"
)

// GetQuantumConfigs возвращает конфигурации организации; если их нет, одну по умолчанию.
func (s *Store) GetQuantumConfigs(ctx context.Context, orgID uint) ([]models.QuantumConfig, error) {
	var configs []models.QuantumConfig
	err := s.ctx(ctx).
		Where("organization_id = ?", orgID).
		Order("created_at desc").
		Find(&configs).Error
	if err != nil {
		return nil, fmt.Errorf("get quantum configs: %w", err)
	}
	if len(configs) == 0 {
		return []models.QuantumConfig{defaultQuantumConfig(orgID, s.now())}, nil
	}
	return configs, nil
}

func (s *Store) GetQuantumConfig(ctx context.Context, id uint) (*models.QuantumConfig, error) {
	var c models.QuantumConfig
	if err := s.ctx(ctx).First(&c, id).Error; err != nil {
		return nil, wrapNotFound(err, "get quantum config")
	}
	return &c, nil
}

func (s *Store) CreateQuantumConfig(ctx context.Context, c *models.QuantumConfig) error {
	if err := s.ctx(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("create quantum config: %w", err)
	}
	return nil
}

// UpdateQuantumConfig меняет только переданные колонки. Карта вызывающего не изменяется.
func (s *Store) UpdateQuantumConfig(ctx context.Context, id uint, fields map[string]any) (*models.QuantumConfig, error) {
	if len(fields) > 0 {
		cols := make(map[string]any, len(fields)+1)
		for k, v := range fields {
			cols[k] = v
		}
		cols["updated_at"] = s.now()
		res := s.ctx(ctx).
			Model(&models.QuantumConfig{}).
			Where("id = ?", id).
			Updates(cols)
		if res.Error != nil {
			return nil, fmt.Errorf("update quantum config: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, fmt.Errorf("update quantum config: %w", ErrNotFound)
		}
	}
	return s.GetQuantumConfig(ctx, id)
}

func (s *Store) DeleteQuantumConfig(ctx context.Context, id uint) error {
	res := s.ctx(ctx).Delete(&models.QuantumConfig{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete quantum config: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete quantum config: %w", ErrNotFound)
	}
	return nil
}
