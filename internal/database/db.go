package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"quantumeyes/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
)

// Store даёт доступ к данным дашборда поверх gorm.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db, now: time.Now}
}

func (s *Store) DB() *gorm.DB { return s.db }

func (s *Store) ctx(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// Open подключается к Postgres, повторяя попытки пока БД поднимается.
func Open(dsn string) (*gorm.DB, error) {
	return OpenWithRetry(dsn, 10, 2*time.Second)
}

func OpenWithRetry(dsn string, maxAttempts int, delay time.Duration) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)

	for i := 1; i <= maxAttempts; i++ {
		slog.Info("connecting to database", "attempt", i, "max_attempts", maxAttempts)

		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Warn),
			TranslateError: true,
		})
		if err == nil {
			slog.Info("connected to database")
			return db, nil
		}

		slog.Warn("failed to connect to database", "attempt", i, "error", err)
		if i < maxAttempts {
			time.Sleep(delay)
		}
	}

	return nil, fmt.Errorf("connect to db after %d attempts: %w", maxAttempts, err)
}

// Migrate: схема целиком через AutoMigrate.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Organization{},
		&models.User{},
		&models.OrganizationUser{},
		&models.SecurityMetrics{},
		&models.CyberMaturity{},
		&models.Threat{},
		&models.NetworkActivity{},
		&models.Vulnerability{},
		&models.QuantumConfig{},
		&models.NetworkConnection{},
		&models.AnalysisResult{},
		&models.Report{},
		&models.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func wrapNotFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", what, err)
}

// wrapConflict: нарушение уникального индекса (23505, переведённое gorm) становится ErrConflict.
func wrapConflict(err error, what string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%s: %w", what, ErrConflict)
	}
	return fmt.Errorf("%s: %w", what, err)
}
