package database

import (
	"context"
	"fmt"

	"quantumeyes/internal/models"

	"gorm.io/gorm/clause"
)

func (s *Store) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.ctx(ctx).First(&u, id).Error; err != nil {
		return nil, wrapNotFound(err, "get user")
	}
	return &u, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := s.ctx(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, wrapNotFound(err, "get user by username")
	}
	return &u, nil
}

// UpsertUser создаёт пользователя или обновляет профиль по username.
func (s *Store) UpsertUser(ctx context.Context, u *models.User) error {
	err := s.ctx(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "first_name", "last_name", "role", "updated_at"}),
	}).Create(u).Error
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}
