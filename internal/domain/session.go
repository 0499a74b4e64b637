package domain

import (
	"time"

	"github.com/google/uuid"
)

// SessionTotals accumulates the results of one session. Bytes only ever grows by
// fully streamed downloads.
type SessionTotals struct {
	Count      int       `json:"count"`
	Bytes      int64     `json:"bytes"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// NewSessionTotals starts a new accumulator at the given time
func NewSessionTotals(start time.Time) *SessionTotals {
	return &SessionTotals{StartedAt: start}
}

// Add folds a completed download into the totals
func (t *SessionTotals) Add(record DownloadRecord) {
	t.Count++
	t.Bytes += record.Bytes
}

// Finish records the end time
func (t *SessionTotals) Finish(end time.Time) {
	t.FinishedAt = end
}

// Elapsed returns the session duration, or zero if it has not finished
func (t *SessionTotals) Elapsed() time.Duration {
	if t.FinishedAt.IsZero() {
		return 0
	}
	return t.FinishedAt.Sub(t.StartedAt)
}

// DownloadRecord is the outcome of one completed media transfer
type DownloadRecord struct {
	Path  string
	Bytes int64
}

// SessionStatus represents the current status of a recorded session
type SessionStatus string

const (
	SessionRunning   SessionStatus = "running"
	SessionCompleted SessionStatus = "completed"
	SessionFailed    SessionStatus = "failed"
)

// Session is the persisted history entry of one run
type Session struct {
	ID           string        `json:"id" gorm:"primaryKey"`
	CatalogURL   string        `json:"catalog_url" gorm:"not null;index"`
	Collection   string        `json:"collection"`
	DownloadDir  string        `json:"download_dir"`
	Status       SessionStatus `json:"status" gorm:"not null;index"`
	TotalItems   int           `json:"total_items"`
	ItemCount    int           `json:"item_count"`
	Bytes        int64         `json:"bytes"`
	ErrorMessage string        `json:"error_message,omitempty"`
	StartedAt    time.Time     `json:"started_at"`
	FinishedAt   *time.Time    `json:"finished_at,omitempty"`
	CreatedAt    time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time     `json:"updated_at" gorm:"autoUpdateTime"`
}

// NewSession creates a running session entry
func NewSession(catalogURL, collection, downloadDir string, startedAt time.Time) *Session {
	return &Session{
		ID:          uuid.New().String(),
		CatalogURL:  catalogURL,
		Collection:  collection,
		DownloadDir: downloadDir,
		Status:      SessionRunning,
		StartedAt:   startedAt,
	}
}

// Apply copies the running totals into the entry
func (s *Session) Apply(totals *SessionTotals) {
	s.ItemCount = totals.Count
	s.Bytes = totals.Bytes
}

// MarkCompleted marks the session as completed
func (s *Session) MarkCompleted(totals *SessionTotals) {
	s.Apply(totals)
	s.Status = SessionCompleted
	finished := totals.FinishedAt
	s.FinishedAt = &finished
}

// MarkFailed marks the session as failed
func (s *Session) MarkFailed(totals *SessionTotals, err error) {
	s.Apply(totals)
	s.Status = SessionFailed
	s.ErrorMessage = err.Error()
	finished := totals.FinishedAt
	s.FinishedAt = &finished
}

// IsTerminal checks if the session has finished
func (s *Session) IsTerminal() bool {
	return s.Status == SessionCompleted || s.Status == SessionFailed
}

// SessionItem is the persisted record of one completed download
type SessionItem struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	SessionID   string    `json:"session_id" gorm:"not null;index"`
	Position    int       `json:"position"`
	DetailURL   string    `json:"detail_url"`
	MediaURL    string    `json:"media_url"`
	FilePath    string    `json:"file_path"`
	Bytes       int64     `json:"bytes"`
	CompletedAt time.Time `json:"completed_at"`
}

// NewSessionItem creates an item record for a completed download
func NewSessionItem(sessionID string, position int, detailURL, mediaURL string, record DownloadRecord, completedAt time.Time) *SessionItem {
	return &SessionItem{
		ID:          uuid.New().String(),
		SessionID:   sessionID,
		Position:    position,
		DetailURL:   detailURL,
		MediaURL:    mediaURL,
		FilePath:    record.Path,
		Bytes:       record.Bytes,
		CompletedAt: completedAt,
	}
}
