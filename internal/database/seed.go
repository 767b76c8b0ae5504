package database

import (
	"context"
	"fmt"
	"log/slog"

	"quantumeyes/internal/models"

	"golang.org/x/crypto/bcrypt"
)

const (
	DemoOrganizationName = "QuantumEyes Demo"
	DemoOrganizationSlug = "quantum-eyes-demo"
)

// Seed создаёт организацию по умолчанию, админа и его членство.
// Повторный вызов ничего не меняет.
func (s *Store) Seed(ctx context.Context, adminUsername, adminPassword string) error {
	org, err := s.seedOrganization(ctx)
	if err != nil {
		return err
	}

	admin, err := s.seedAdmin(ctx, adminUsername, adminPassword)
	if err != nil {
		return err
	}

	if _, err := s.GetUserRoleInOrganization(ctx, admin.ID, org.ID); err == nil {
		return nil
	}

	if _, err := s.AddUserToOrganization(ctx, &models.OrganizationUser{
		OrganizationID: org.ID,
		UserID:         admin.ID,
		Role:           models.RoleAdmin,
	}); err != nil {
		return err
	}
	slog.Info("added admin to default organization", "organization", org.Slug, "user", admin.Username)
	return nil
}

func (s *Store) seedOrganization(ctx context.Context) (*models.Organization, error) {
	if org, err := s.GetOrganizationBySlug(ctx, DemoOrganizationSlug); err == nil {
		return org, nil
	}

	org := &models.Organization{
		Name:     DemoOrganizationName,
		Slug:     DemoOrganizationSlug,
		Industry: "Technology",
		Size:     "Medium",
	}
	if err := s.CreateOrganization(ctx, org); err != nil {
		return nil, err
	}
	slog.Info("created default organization", "id", org.ID, "slug", org.Slug)
	return org, nil
}

// админ только из кода/конфига
func (s *Store) seedAdmin(ctx context.Context, username, password string) (*models.User, error) {
	if u, err := s.GetUserByUsername(ctx, username); err == nil {
		return u, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}

	admin := &models.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		FirstName:    "Demo",
		LastName:     "User",
		Email:        "demo@quantumeyes.com",
	}
	if err := s.UpsertUser(ctx, admin); err != nil {
		return nil, err
	}
	slog.Info("created default admin user", "username", username)
	return admin, nil
}
