// Package api provides the success response helper and the JSON shapes
// exchanged with clients. Errors are written by pkg/errors.ErrorHandler.
package api

import (
	"encoding/json"
	"net/http"
	"time"
)

// Success sends a standardized successful HTTP response with optional JSON data.
func Success(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	FirstName string `json:"first_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued bearer token.
type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// MessageResponse is the body of endpoints that only confirm an action.
type MessageResponse struct {
	Message string `json:"message"`
}

// ProtectedResponse echoes the identity resolved from the bearer token.
type ProtectedResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"user_id"`
	Email   string `json:"email"`
}

// CreateMemoryRequest is the JSON variant of POST /api/memories/.
type CreateMemoryRequest struct {
	Title    string  `json:"title"`
	Content  string  `json:"content"`
	Category *string `json:"category"`
}

// UpdateMemoryRequest is the JSON variant of PUT /api/memories/{id}.
// Nil fields are left untouched.
type UpdateMemoryRequest struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	Category *string `json:"category"`
}

// Memory is the API representation of a single memory.
type Memory struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Category  *string    `json:"category"`
	MediaURL  *string    `json:"media_url"`
	VoiceURL  *string    `json:"voice_url"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// MemoryEnvelope wraps a memory together with a confirmation message.
type MemoryEnvelope struct {
	Message string `json:"message"`
	Memory  Memory `json:"memory"`
}

// MemoryListResponse is the body of GET /api/memories/.
type MemoryListResponse struct {
	Message  string   `json:"message"`
	Memories []Memory `json:"memories"`
}

// HealthResponse is the body of the liveness and readiness probes.
type HealthResponse struct {
	Status string `json:"status"`
}
