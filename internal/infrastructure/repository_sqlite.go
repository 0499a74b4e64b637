package infrastructure

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yourusername/khinsider-go/internal/domain"
)

// SQLiteSessionRepository implements SessionRepository using SQLite
type SQLiteSessionRepository struct {
	db *gorm.DB
}

// NewSQLiteSessionRepository creates a new SQLite repository
func NewSQLiteSessionRepository(dbPath string) (*SQLiteSessionRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&domain.Session{}, &domain.SessionItem{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &SQLiteSessionRepository{db: db}, nil
}

// Create creates a new session
func (r *SQLiteSessionRepository) Create(session *domain.Session) error {
	return r.db.Create(session).Error
}

// Update updates an existing session
func (r *SQLiteSessionRepository) Update(session *domain.Session) error {
	return r.db.Save(session).Error
}

// AddItem records a completed download
func (r *SQLiteSessionRepository) AddItem(item *domain.SessionItem) error {
	return r.db.Create(item).Error
}

// FindByID finds a session by ID
func (r *SQLiteSessionRepository) FindByID(id string) (*domain.Session, error) {
	var session domain.Session
	err := r.db.First(&session, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

// FindAll returns sessions, most recent first
func (r *SQLiteSessionRepository) FindAll(limit int) ([]*domain.Session, error) {
	var sessions []*domain.Session
	query := r.db.Order("started_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&sessions).Error
	return sessions, err
}

// FindItems returns the items of a session in download order
func (r *SQLiteSessionRepository) FindItems(sessionID string) ([]*domain.SessionItem, error) {
	var items []*domain.SessionItem
	err := r.db.Where("session_id = ?", sessionID).
		Order("position ASC").
		Find(&items).Error
	return items, err
}

// GetStats returns session history statistics
func (r *SQLiteSessionRepository) GetStats() (*domain.SessionStats, error) {
	stats := &domain.SessionStats{}

	if err := r.db.Model(&domain.Session{}).Count(&stats.Sessions).Error; err != nil {
		return nil, err
	}

	statusCounts := []struct {
		Status domain.SessionStatus
		Count  int64
	}{}

	if err := r.db.Model(&domain.Session{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		return nil, err
	}

	for _, sc := range statusCounts {
		switch sc.Status {
		case domain.SessionRunning:
			stats.Running = sc.Count
		case domain.SessionCompleted:
			stats.Completed = sc.Count
		case domain.SessionFailed:
			stats.Failed = sc.Count
		}
	}

	var items struct {
		Count int64
		Bytes int64
	}
	if err := r.db.Model(&domain.SessionItem{}).
		Select("count(*) as count, coalesce(sum(bytes), 0) as bytes").
		Scan(&items).Error; err != nil {
		return nil, err
	}
	stats.Items = items.Count
	stats.Bytes = items.Bytes

	return stats, nil
}

// Close closes the database connection
func (r *SQLiteSessionRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
