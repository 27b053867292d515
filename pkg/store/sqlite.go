package store

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// preference is one row of the preferences table.
type preference struct {
	Key       string `gorm:"primaryKey"`
	Value     []byte
	UpdatedAt time.Time
}

func (preference) TableName() string {
	return "preferences"
}

// SQLite stores records in a preferences table through gorm and the pure Go
// glebarez driver.
type SQLite struct {
	db  *gorm.DB
	log zerolog.Logger

	mu     sync.RWMutex
	closed bool
}

// OpenSQLite opens or creates the database at path and migrates the schema.
// An empty path opens an in-memory database private to this store.
func OpenSQLite(path string, log zerolog.Logger) (*SQLite, error) {
	dsn := path
	if dsn == "" {
		dsn = fmt.Sprintf("file:orbitview-%s?mode=memory&cache=shared", uuid.NewString())
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql interface: %w", err)
	}
	// One writer keeps sqlite from returning SQLITE_BUSY under concurrent use.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&preference{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate preferences: %w", err)
	}

	if path == "" {
		log.Debug().Msg("Using in-memory SQLite preferences")
	} else {
		log.Debug().Str("path", path).Msg("Using SQLite preferences")
	}
	return &SQLite{db: db, log: log}, nil
}

// byKey matches exactly one key. A struct condition would drop the empty
// string as a zero value and match every row.
func byKey(key string) clause.Eq {
	return clause.Eq{Column: clause.Column{Name: "key"}, Value: key}
}

func (s *SQLite) Get(key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, false, ErrClosed
	}

	var rows []preference
	if err := s.db.Where(byKey(key)).Limit(1).Find(&rows).Error; err != nil {
		return nil, false, fmt.Errorf("get %q: %w", key, err)
	}
	if len(rows) == 0 {
		return nil, false, nil
	}
	return rows[0].Value, true, nil
}

func (s *SQLite) Set(key string, value []byte) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}

	row := preference{Key: key, Value: value}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

func (s *SQLite) Delete(key string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	if err := s.db.Where(byKey(key)).Delete(&preference{}).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

func (s *SQLite) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	s.log.Debug().Msg("Closing SQLite preferences")
	return sqlDB.Close()
}
