package domain

import "time"

// Memory is a journal entry owned by exactly one user.
// Category, MediaURL and VoiceURL are nil when unset.
type Memory struct {
	ID        int64
	UserID    int64
	Title     string
	Content   string
	Category  *string
	MediaURL  *string
	VoiceURL  *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OwnedBy reports whether the memory belongs to userID.
func (m *Memory) OwnedBy(userID int64) bool {
	return m.UserID == userID
}
