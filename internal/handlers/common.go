// Package handlers provides the HTTP handlers of the memories API.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"memories-backend/internal/domain"
	"memories-backend/pkg/api"
	appErrors "memories-backend/pkg/errors"
)

// ErrorResponder writes an error response.
type ErrorResponder interface {
	Handle(w http.ResponseWriter, r *http.Request, err error)
}

// decodeJSON reads the request body into dst. An empty body leaves dst untouched
// so that missing fields are reported by validation rather than as malformed JSON.
func decodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	switch {
	case err == nil, errors.Is(err, io.EOF):
		return nil
	case isMaxBytes(err):
		return err
	default:
		return appErrors.NewValidationError("Invalid request body").WithCause(err)
	}
}

func isMaxBytes(err error) bool {
	var maxBytesErr *http.MaxBytesError
	return errors.As(err, &maxBytesErr)
}

// baseURL returns scheme://host of the current request, honouring X-Forwarded-Proto.
func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
	}
	return scheme + "://" + r.Host
}

// absolute joins a stored relative path onto base.
func absolute(base string, path *string) *string {
	if path == nil || *path == "" {
		return nil
	}
	v := base + "/" + strings.TrimLeft(*path, "/")
	return &v
}

// toAPIMemory renders m. A non-empty base absolutizes attachment paths and
// includes timestamps.
func toAPIMemory(m *domain.Memory, base string) api.Memory {
	out := api.Memory{
		ID:       m.ID,
		Title:    m.Title,
		Content:  m.Content,
		Category: m.Category,
		MediaURL: m.MediaURL,
		VoiceURL: m.VoiceURL,
	}
	if base != "" {
		created, updated := m.CreatedAt, m.UpdatedAt
		out.MediaURL = absolute(base, m.MediaURL)
		out.VoiceURL = absolute(base, m.VoiceURL)
		out.CreatedAt = &created
		out.UpdatedAt = &updated
	}
	return out
}
