package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func handle(t *testing.T, debug bool, err error) (int, ErrorResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/memories/1", nil)
	req.Header.Set("X-Request-ID", "req-1")
	rec := httptest.NewRecorder()

	NewErrorHandler(nil, debug).Handle(rec, req, err)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestErrorHandler_Handle(t *testing.T) {
	t.Run("Should map application errors to their status and type", func(t *testing.T) {
		cases := []struct {
			err    error
			status int
			typ    ErrorType
		}{
			{NewValidationError("Title and content are required."), http.StatusBadRequest, ErrorTypeValidation},
			{NewConflictError("Email already exists"), http.StatusBadRequest, ErrorTypeConflict},
			{NewInvalidCredentialsError(), http.StatusUnauthorized, ErrorTypeInvalidCredentials},
			{NewUnauthorizedError(ErrorTypeExpiredToken, "Token has expired!"), http.StatusUnauthorized, ErrorTypeExpiredToken},
			{NewNotFoundError("Memory not found"), http.StatusNotFound, ErrorTypeNotFound},
			{NewDatabaseError("find memory", errors.New("boom")), http.StatusInternalServerError, ErrorTypeDatabase},
		}
		for _, tc := range cases {
			status, body := handle(t, false, tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, string(tc.typ), body.Type)
			assert.Equal(t, body.Error, body.Message)
			assert.Equal(t, "req-1", body.RequestID)
		}
	})

	t.Run("Should find wrapped application errors", func(t *testing.T) {
		status, body := handle(t, false, fmt.Errorf("handler: %w", NewNotFoundError("Memory not found")))
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "Memory not found", body.Message)
	})

	t.Run("Should hide unknown errors unless debugging", func(t *testing.T) {
		status, body := handle(t, false, errors.New("dsn password=secret"))
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, "An internal error occurred", body.Message)

		_, body = handle(t, true, errors.New("dsn password=secret"))
		assert.Contains(t, body.Message, "dsn")
	})

	t.Run("Should answer oversized bodies with 413", func(t *testing.T) {
		status, body := handle(t, false, &http.MaxBytesError{Limit: 16})
		assert.Equal(t, http.StatusRequestEntityTooLarge, status)
		assert.Equal(t, string(ErrorTypePayloadTooLarge), body.Type)
	})
}

func TestErrorHandler_Middleware(t *testing.T) {
	t.Run("Should turn a panic into a 500 without leaking it", func(t *testing.T) {
		h := NewErrorHandler(nil, false).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("kaboom")
		}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "kaboom")
	})
}

func TestPredicates(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewValidationError("bad"))
	assert.True(t, IsValidation(err))
	assert.False(t, IsNotFound(err))
	assert.True(t, IsUnauthorized(NewUnauthorizedError(ErrorTypeMissingToken, "Token is missing!")))
	assert.Nil(t, GetAppError(errors.New("plain")))
}
