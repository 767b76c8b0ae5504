package database

import (
	"context"
	"fmt"

	"quantumeyes/internal/models"

	"gorm.io/gorm"
)

func (s *Store) GetOrganization(ctx context.Context, id uint) (*models.Organization, error) {
	var org models.Organization
	if err := s.ctx(ctx).First(&org, id).Error; err != nil {
		return nil, wrapNotFound(err, "get organization")
	}
	return &org, nil
}

func (s *Store) GetOrganizationBySlug(ctx context.Context, slug string) (*models.Organization, error) {
	var org models.Organization
	if err := s.ctx(ctx).Where("slug = ?", slug).First(&org).Error; err != nil {
		return nil, wrapNotFound(err, "get organization by slug")
	}
	return &org, nil
}

func (s *Store) CreateOrganization(ctx context.Context, org *models.Organization) error {
	if err := s.ctx(ctx).Create(org).Error; err != nil {
		return wrapConflict(err, "create organization")
	}
	return nil
}

// CreateOrganizationWithOwner создаёт организацию и членство её администратора
// в одной транзакции. ownerID == 0: только организация.
func (s *Store) CreateOrganizationWithOwner(ctx context.Context, org *models.Organization, ownerID uint) error {
	return s.ctx(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(org).Error; err != nil {
			return wrapConflict(err, "create organization")
		}
		if ownerID == 0 {
			return nil
		}
		owner := models.OrganizationUser{
			OrganizationID: org.ID,
			UserID:         ownerID,
			Role:           models.RoleAdmin,
		}
		if err := tx.Create(&owner).Error; err != nil {
			return wrapConflict(err, "add organization owner")
		}
		return nil
	})
}

func (s *Store) GetUserOrganizations(ctx context.Context, userID uint) ([]models.Organization, error) {
	var orgs []models.Organization
	err := s.ctx(ctx).
		Joins("JOIN organization_users ON organization_users.organization_id = organizations.id").
		Where("organization_users.user_id = ?", userID).
		Order("organizations.name asc").
		Find(&orgs).Error
	if err != nil {
		return nil, fmt.Errorf("get user organizations: %w", err)
	}
	return orgs, nil
}

func (s *Store) AddUserToOrganization(ctx context.Context, ou *models.OrganizationUser) (*models.OrganizationUser, error) {
	if err := s.ctx(ctx).Create(ou).Error; err != nil {
		return nil, wrapConflict(err, "add user to organization")
	}
	return ou, nil
}

func (s *Store) GetUserRoleInOrganization(ctx context.Context, userID, orgID uint) (models.UserRole, error) {
	var ou models.OrganizationUser
	err := s.ctx(ctx).
		Where("user_id = ? AND organization_id = ?", userID, orgID).
		First(&ou).Error
	if err != nil {
		return "", wrapNotFound(err, "get user role in organization")
	}
	return ou.Role, nil
}
