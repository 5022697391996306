package database

import (
	"context"
	"errors"
	"fmt"

	"fin-advisor-go/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Store is the local persistence for the order journal and history snapshots.
type Store struct {
	db *gorm.DB
}

// NewDatabase opens the sqlite database at dsn and migrates the schema.
func NewDatabase(dsn string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// AutoMigrate creates or updates tables for the current models. Existing rows are kept.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.OrderRecord{}, &models.HistorySnapshot{}); err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveOrder appends a submitted order to the journal.
func (s *Store) SaveOrder(ctx context.Context, rec *models.OrderRecord) error {
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("failed to save order '%s': %w", rec.OrderID, err)
	}
	return nil
}

// ListOrders returns up to limit journal entries, newest first.
func (s *Store) ListOrders(ctx context.Context, limit int) ([]models.OrderRecord, error) {
	var out []models.OrderRecord
	err := s.db.WithContext(ctx).
		Order("submitted_at desc").
		Order("id desc").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return out, nil
}

// UpsertSnapshot stores snap, replacing any earlier snapshot for the same ticker.
func (s *Store) UpsertSnapshot(ctx context.Context, snap *models.HistorySnapshot) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "ticker"}},
		DoUpdates: clause.AssignmentColumns([]string{"period", "interval", "points", "point_count", "captured_at", "updated_at"}),
	}).Create(snap).Error
	if err != nil {
		return fmt.Errorf("failed to save snapshot '%s': %w", snap.Ticker, err)
	}
	return nil
}

// GetSnapshot loads the stored snapshot for ticker.
func (s *Store) GetSnapshot(ctx context.Context, ticker string) (models.HistorySnapshot, error) {
	var snap models.HistorySnapshot
	err := s.db.WithContext(ctx).Where("ticker = ?", ticker).First(&snap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.HistorySnapshot{}, ErrNotFound
	}
	if err != nil {
		return models.HistorySnapshot{}, fmt.Errorf("failed to load snapshot '%s': %w", ticker, err)
	}
	return snap, nil
}
