package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// sessionEntry is one persisted key. Scope separates consoles sharing one
// postgres database.
type sessionEntry struct {
	Scope     string `gorm:"primaryKey;size:128"`
	Key       string `gorm:"primaryKey;column:entry_key;size:64"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (sessionEntry) TableName() string {
	return "console_session_entries"
}

// GormStore keeps session state in a SQL table: a local sqlite file by
// default, postgres when several console instances share it.
type GormStore struct {
	db    *gorm.DB
	scope string
}

// OpenSQLite opens (creating if needed) a sqlite session file
func OpenSQLite(path, scope string, log gormlogger.Interface) (*GormStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: log})
	if err != nil {
		return nil, fmt.Errorf("failed to open session file %s: %w", path, err)
	}
	return NewGormStore(db, scope)
}

// OpenPostgres connects to a shared postgres database
func OpenPostgres(dsn, scope string, log gormlogger.Interface) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:      log,
		PrepareStmt: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(5)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return NewGormStore(db, scope)
}

// NewGormStore migrates the session table on db
func NewGormStore(db *gorm.DB, scope string) (*GormStore, error) {
	if db == nil {
		return nil, errors.New("db is required")
	}
	if err := db.AutoMigrate(&sessionEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate session table: %w", err)
	}
	return &GormStore{db: db, scope: scope}, nil
}

// Get implements Store
func (s *GormStore) Get(ctx context.Context, key string) (string, bool, error) {
	var e sessionEntry
	err := s.db.WithContext(ctx).
		Where("scope = ? AND entry_key = ?", s.scope, key).
		Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return e.Value, true, nil
}

// GetAll implements Store with a single query
func (s *GormStore) GetAll(ctx context.Context, keys ...string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	var rows []sessionEntry
	err := s.db.WithContext(ctx).
		Where("scope = ? AND entry_key IN ?", s.scope, keys).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	for _, r := range rows {
		out[r.Key] = r.Value
	}
	return out, nil
}

// SetAll implements Store
func (s *GormStore) SetAll(ctx context.Context, entries map[string]string) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([]sessionEntry, 0, len(entries))
	now := time.Now()
	for k, v := range entries {
		rows = append(rows, sessionEntry{Scope: s.scope, Key: k, Value: v, UpdatedAt: now})
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "scope"}, {Name: "entry_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&rows).Error
		if err != nil {
			return fmt.Errorf("failed to write session: %w", err)
		}
		return nil
	})
}

// Delete implements Store
func (s *GormStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).
		Where("scope = ? AND entry_key IN ?", s.scope, keys).
		Delete(&sessionEntry{}).Error
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Close implements Store
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}
