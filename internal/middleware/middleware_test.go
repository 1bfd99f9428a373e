package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"memories-backend/internal/domain"
	"memories-backend/pkg/auth"
	appErrors "memories-backend/pkg/errors"
)

func TestRequestIDMiddleware(t *testing.T) {
	t.Run("Should generate request ID when not provided", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		w := httptest.NewRecorder()

		handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.NotEmpty(t, GetRequestID(r.Context()))
			w.WriteHeader(http.StatusOK)
		}))
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("Should use provided request ID", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("X-Request-ID", "test-request-id")
		w := httptest.NewRecorder()

		handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "test-request-id", GetRequestID(r.Context()))
		}))
		handler.ServeHTTP(w, req)

		assert.Equal(t, "test-request-id", w.Header().Get("X-Request-ID"))
	})
}

func TestLoggerMiddleware(t *testing.T) {
	t.Run("Should log status and request id", func(t *testing.T) {
		core, logs := observer.New(zap.InfoLevel)
		handler := RequestID(Logger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
			_, _ = w.Write([]byte("hi"))
		})))

		req := httptest.NewRequest("GET", "/brew", nil)
		req.Header.Set("X-Request-ID", "abc")
		handler.ServeHTTP(httptest.NewRecorder(), req)

		require.Equal(t, 1, logs.Len())
		fields := logs.All()[0].ContextMap()
		assert.Equal(t, int64(http.StatusTeapot), fields["status"])
		assert.Equal(t, "/brew", fields["path"])
		assert.Equal(t, "abc", fields["requestID"])
		assert.Equal(t, int64(2), fields["bytes"])
		assert.NotContains(t, fields, "userID")
	})

	t.Run("Should log the user authenticated downstream", func(t *testing.T) {
		core, logs := observer.New(zap.InfoLevel)
		handler := Logger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = WithUser(r.Context(), &domain.User{ID: 42})
			w.WriteHeader(http.StatusOK)
		}))

		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/memories", nil))

		require.Equal(t, 1, logs.Len())
		assert.Equal(t, int64(42), logs.All()[0].ContextMap()["userID"])
	})
}

func TestBodyLimit(t *testing.T) {
	var gotErr error
	onTooLarge := func(w http.ResponseWriter, r *http.Request, err error) {
		gotErr = err
		w.WriteHeader(http.StatusRequestEntityTooLarge)
	}

	t.Run("Should refuse a declared length over the limit", func(t *testing.T) {
		gotErr = nil
		handler := BodyLimit(4, onTooLarge)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run")
		}))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("POST", "/", strings.NewReader("too long")))

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		var mbe *http.MaxBytesError
		assert.ErrorAs(t, gotErr, &mbe)
	})

	t.Run("Should pass bodies within the limit", func(t *testing.T) {
		handler := BodyLimit(0, onTooLarge)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("POST", "/", strings.NewReader("ok")))
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestCircuitBreaker(t *testing.T) {
	cfg := CircuitBreakerConfig{
		Name:             "test",
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		FailureThreshold: 0.5,
		MinRequests:      2,
	}
	errs := appErrors.NewErrorHandler(nil, false)

	t.Run("Should open after repeated server errors", func(t *testing.T) {
		calls := 0
		handler := CircuitBreaker(cfg, errs, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusInternalServerError)
		}))

		for i := 0; i < 2; i++ {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
			assert.Equal(t, http.StatusInternalServerError, w.Code)
		}

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(RequestIDHeader, "cb-1")
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, 2, calls)

		var body appErrors.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, string(appErrors.ErrorTypeUnavailable), body.Type)
		assert.Equal(t, "cb-1", body.RequestID)
		assert.Equal(t, body.Error, body.Message)
	})

	t.Run("Should not count client errors", func(t *testing.T) {
		handler := CircuitBreaker(cfg, errs, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))

		for i := 0; i < 5; i++ {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
			assert.Equal(t, http.StatusNotFound, w.Code)
		}
	})
}

type fakeVerifier struct {
	claims map[string]*auth.Claims
	errs   map[string]error
}

func (f fakeVerifier) Verify(token string) (*auth.Claims, error) {
	if err, ok := f.errs[token]; ok {
		return nil, err
	}
	if c, ok := f.claims[token]; ok {
		return c, nil
	}
	return nil, auth.ErrInvalidToken
}

type fakeUsers map[int64]*domain.User

func (f fakeUsers) UserByID(ctx context.Context, id int64) (*domain.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, appErrors.NewNotFoundError("User not found")
}

func TestGuard(t *testing.T) {
	ann := &domain.User{ID: 1, FirstName: "Ann", Email: "ann@x.io"}
	verifier := fakeVerifier{
		claims: map[string]*auth.Claims{
			"good":  {UserID: 1},
			"ghost": {UserID: 99},
		},
		errs: map[string]error{"old": auth.ErrExpiredToken},
	}
	guard := NewGuard(verifier, fakeUsers{1: ann}, appErrors.NewErrorHandler(nil, false), nil)

	protected := guard.Protect(func(w http.ResponseWriter, r *http.Request, user *domain.User) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(user.FirstName))
	})

	serve := func(authorization string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", "/auth/protected", nil)
		if authorization != "" {
			req.Header.Set("Authorization", authorization)
		}
		w := httptest.NewRecorder()
		protected.ServeHTTP(w, req)
		return w
	}

	t.Run("Should accept a bearer token", func(t *testing.T) {
		w := serve("Bearer good")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Ann", w.Body.String())
	})

	t.Run("Should accept a bare token", func(t *testing.T) {
		w := serve("good")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Should reject with 401 and the failure kind", func(t *testing.T) {
		cases := map[string]appErrors.ErrorType{
			"":             appErrors.ErrorTypeMissingToken,
			"Bearer ":      appErrors.ErrorTypeMissingToken,
			"Bearer bogus": appErrors.ErrorTypeInvalidToken,
			"Bearer old":   appErrors.ErrorTypeExpiredToken,
			"Bearer ghost": appErrors.ErrorTypeUnknownUser,
		}
		for header, kind := range cases {
			w := serve(header)
			assert.Equal(t, http.StatusUnauthorized, w.Code, header)

			var body appErrors.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, string(kind), body.Type, header)
			assert.NotEmpty(t, body.Message)
		}
	})

	t.Run("Should expose the user through the context", func(t *testing.T) {
		var seen *domain.User
		h := guard.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = CurrentUser(r.Context())
		}))
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer good")
		h.ServeHTTP(httptest.NewRecorder(), req)

		require.NotNil(t, seen)
		assert.Equal(t, int64(1), seen.ID)
		assert.Nil(t, CurrentUser(context.Background()))
	})

	t.Run("Should pass through resolver failures other than not found", func(t *testing.T) {
		broken := NewGuard(verifier, brokenUsers{}, appErrors.NewErrorHandler(nil, false), nil)
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "good")

		_, err := broken.Resolve(req)
		assert.False(t, appErrors.IsUnauthorized(err))
		assert.Error(t, err)
	})
}

type brokenUsers struct{}

func (brokenUsers) UserByID(ctx context.Context, id int64) (*domain.User, error) {
	return nil, errors.New("db down")
}

func TestExtractToken(t *testing.T) {
	cases := map[string]string{
		"":                "",
		"Bearer abc":      "abc",
		"bearer abc":      "abc",
		"abc":             "abc",
		"  Bearer  abc  ": "abc",
		"Bearer":          "",
		"Bearer ":         "",
		"bearer    ":      "",
	}
	for header, want := range cases {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", header)
		assert.Equal(t, want, extractToken(req), header)
	}
}
