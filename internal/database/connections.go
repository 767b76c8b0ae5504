package database

import (
	"context"
	"fmt"

	"quantumeyes/internal/models"
)

const (
	defaultConnectionsLimit = 50
	connectionsBatchSize    = 100
)

func (s *Store) GetNetworkConnections(ctx context.Context, orgID uint, limit int) ([]models.NetworkConnection, error) {
	if limit <= 0 {
		limit = defaultConnectionsLimit
	}

	var conns []models.NetworkConnection
	err := s.ctx(ctx).
		Where("organization_id = ?", orgID).
		Order("timestamp desc").
		Limit(limit).
		Find(&conns).Error
	if err != nil {
		return nil, fmt.Errorf("get network connections: %w", err)
	}
	return conns, nil
}

func (s *Store) GetAnomalousConnections(ctx context.Context, orgID uint, limit int) ([]models.NetworkConnection, error) {
	if limit <= 0 {
		limit = defaultConnectionsLimit
	}

	var conns []models.NetworkConnection
	err := s.ctx(ctx).
		Where("organization_id = ? AND is_anomaly = ?", orgID, true).
		Order("timestamp desc").
		Limit(limit).
		Find(&conns).Error
	if err != nil {
		return nil, fmt.Errorf("get anomalous connections: %w", err)
	}
	return conns, nil
}

func (s *Store) CreateNetworkConnection(ctx context.Context, c *models.NetworkConnection) error {
	if c.Timestamp.IsZero() {
		c.Timestamp = s.now()
	}
	if err := s.ctx(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("create network connection: %w", err)
	}
	return nil
}

func (s *Store) CreateManyNetworkConnections(ctx context.Context, conns []models.NetworkConnection) error {
	if len(conns) == 0 {
		return nil
	}
	now := s.now()
	for i := range conns {
		if conns[i].Timestamp.IsZero() {
			conns[i].Timestamp = now
		}
	}
	if err := s.ctx(ctx).CreateInBatches(conns, connectionsBatchSize).Error; err != nil {
		return fmt.Errorf("create network connections: %w", err)
	}
	return nil
}

// DeleteNetworkConnections удаляет все соединения организации и возвращает их число.
func (s *Store) DeleteNetworkConnections(ctx context.Context, orgID uint) (int64, error) {
	res := s.ctx(ctx).
		Where("organization_id = ?", orgID).
		Delete(&models.NetworkConnection{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete network connections: %w", res.Error)
	}
	return res.RowsAffected, nil
}
