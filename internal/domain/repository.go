package domain

// SessionRepository defines the interface for session history persistence
type SessionRepository interface {
	// Create creates a new session
	Create(session *Session) error

	// Update updates an existing session
	Update(session *Session) error

	// AddItem records a completed download of a session
	AddItem(item *SessionItem) error

	// FindByID finds a session by ID, returning nil if it does not exist
	FindByID(id string) (*Session, error)

	// FindAll returns the most recent sessions first; limit <= 0 means no limit
	FindAll(limit int) ([]*Session, error)

	// FindItems returns the items of a session in download order
	FindItems(sessionID string) ([]*SessionItem, error)

	// GetStats returns aggregate history statistics
	GetStats() (*SessionStats, error)
}

// SessionStats represents session history statistics
type SessionStats struct {
	Sessions  int64 `json:"sessions"`
	Running   int64 `json:"running"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
	Items     int64 `json:"items"`
	Bytes     int64 `json:"bytes"`
}
