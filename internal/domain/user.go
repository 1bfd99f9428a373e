// Package domain holds the records the service persists.
package domain

import "time"

// User is a registered account. PasswordHash is a bcrypt hash, never the plaintext.
type User struct {
	ID           int64
	FirstName    string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// String renders the user the way greetings address them.
func (u *User) String() string {
	return u.FirstName
}
