// Package gridstore is the generic record-store driver: a schema-less grid
// of cells persisted in Postgres. Tables are rows in a registry; each data
// row stores its cells as one JSON-encoded string slice. Row order is the
// insertion order of the records, which matches the append-only semantics of
// the spreadsheet backend it substitutes for.
package gridstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"crm-service/pkg/config"
	"crm-service/pkg/store"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GridTable is the registry entry for one named table
type GridTable struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"type:varchar(100);uniqueIndex;not null"`
}

// GridRow is one data row of a table, cells JSON-encoded
type GridRow struct {
	ID      uint   `gorm:"primaryKey"`
	TableID uint   `gorm:"index;not null"`
	Cells   string `gorm:"type:text;not null"`
}

// Store is a record-store session backed by a gorm connection pool.
type Store struct {
	db *gorm.DB
}

// New opens the Postgres connection and runs migrations for the grid schema.
func New(cfg *config.Config) (*Store, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password, cfg.DB.Name, cfg.DB.SSLMode)

	pgConfig := postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true, // Disables implicit prepared statement usage
	}

	db, err := gorm.Open(postgres.New(pgConfig), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel(cfg.DB.LogLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrConnection, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrConnection, err)
	}

	// Connection pool settings from config
	sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)

	if err := db.AutoMigrate(&GridTable{}, &GridRow{}); err != nil {
		return nil, fmt.Errorf("%w: migration: %v", store.ErrConnection, err)
	}

	return &Store{db: db}, nil
}

// Provision registers the named tables if they do not exist yet. Called once
// at startup with the configured sheet names; Table still fails for anything
// never provisioned.
func (s *Store) Provision(ctx context.Context, names ...string) error {
	for _, name := range names {
		var existing GridTable
		err := s.db.WithContext(ctx).Where("name = ?", name).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %v", store.ErrConnection, err)
		}
		if err := s.db.WithContext(ctx).Create(&GridTable{Name: name}).Error; err != nil {
			return fmt.Errorf("%w: %v", store.ErrWrite, err)
		}
	}
	return nil
}

// Table looks the name up in the registry.
func (s *Store) Table(ctx context.Context, name string) (store.Table, error) {
	var rec GridTable
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %q", store.ErrTableNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrRead, err)
	}
	return &table{db: s.db, name: rec.Name, tableID: rec.ID}, nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type table struct {
	db      *gorm.DB
	name    string
	tableID uint
}

func (t *table) Name() string { return t.name }

func (t *table) Rows(ctx context.Context) ([][]string, error) {
	var recs []GridRow
	err := t.db.WithContext(ctx).
		Where("table_id = ?", t.tableID).
		Order("id asc").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrRead, err)
	}

	rows := make([][]string, 0, len(recs))
	for _, rec := range recs {
		var cells []string
		if err := json.Unmarshal([]byte(rec.Cells), &cells); err != nil {
			return nil, fmt.Errorf("%w: row %d in %q: %v", store.ErrRead, rec.ID, t.name, err)
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

func (t *table) Append(ctx context.Context, row []string) error {
	cells, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrWrite, err)
	}
	rec := GridRow{TableID: t.tableID, Cells: string(cells)}
	if err := t.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("%w: %v", store.ErrWrite, err)
	}
	return nil
}

func (t *table) Update(ctx context.Context, index int, row []string) error {
	var rec GridRow
	err := t.db.WithContext(ctx).
		Where("table_id = ?", t.tableID).
		Order("id asc").
		Offset(index).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: row %d out of range in %q", store.ErrWrite, index, t.name)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrWrite, err)
	}

	cells, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrWrite, err)
	}
	rec.Cells = string(cells)
	if err := t.db.WithContext(ctx).Save(&rec).Error; err != nil {
		return fmt.Errorf("%w: %v", store.ErrWrite, err)
	}
	return nil
}

func logLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
