package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"memories-backend/internal/domain"
	"memories-backend/pkg/auth"
	appErrors "memories-backend/pkg/errors"
)

// TokenVerifier checks a bearer token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// UserResolver loads the account a token refers to.
type UserResolver interface {
	UserByID(ctx context.Context, id int64) (*domain.User, error)
}

// ErrorResponder writes an error response.
type ErrorResponder interface {
	Handle(w http.ResponseWriter, r *http.Request, err error)
}

// Guard authenticates requests from the Authorization header.
type Guard struct {
	tokens TokenVerifier
	users  UserResolver
	errs   ErrorResponder
	logger *zap.Logger
}

// NewGuard creates an access guard.
func NewGuard(tokens TokenVerifier, users UserResolver, errs ErrorResponder, logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{tokens: tokens, users: users, errs: errs, logger: logger}
}

// Resolve returns the user identified by the request's token. Every failure is
// an *errors.AppError answered with 401.
func (g *Guard) Resolve(r *http.Request) (*domain.User, error) {
	token := extractToken(r)
	if token == "" {
		return nil, appErrors.NewUnauthorizedError(appErrors.ErrorTypeMissingToken, "Token is missing!")
	}

	claims, err := g.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, appErrors.NewUnauthorizedError(appErrors.ErrorTypeExpiredToken, "Token has expired!").WithCause(err)
		}
		return nil, appErrors.NewUnauthorizedError(appErrors.ErrorTypeInvalidToken, "Invalid token!").WithCause(err)
	}

	user, err := g.users.UserByID(r.Context(), claims.UserID)
	if err != nil {
		if appErrors.IsNotFound(err) {
			return nil, appErrors.NewUnauthorizedError(appErrors.ErrorTypeUnknownUser, "User not found!")
		}
		return nil, err
	}

	g.logger.Debug("Request authenticated",
		zap.Int64("user_id", user.ID),
		zap.String("request_id", GetRequestID(r.Context())),
	)
	return user, nil
}

// Middleware rejects unauthenticated requests and stores the user in the request context.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := g.Resolve(r)
		if err != nil {
			g.errs.Handle(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// Protect adapts a handler that takes the authenticated user as an argument.
func (g *Guard) Protect(h func(w http.ResponseWriter, r *http.Request, user *domain.User)) http.Handler {
	return g.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h(w, r, CurrentUser(r.Context()))
	}))
}

// userSlot lets an outer middleware see the user authenticated further down the chain.
type userSlot struct {
	user *domain.User
}

// WithUser adds user to ctx and records it in the request's user slot, if any.
func WithUser(ctx context.Context, user *domain.User) context.Context {
	if slot, ok := ctx.Value(userSlotKey).(*userSlot); ok {
		slot.user = user
	}
	return context.WithValue(ctx, userKey, user)
}

// CurrentUser returns the authenticated user, or nil outside a guarded route.
func CurrentUser(ctx context.Context) *domain.User {
	user, _ := ctx.Value(userKey).(*domain.User)
	return user
}

// extractToken accepts "Bearer <token>" or a bare token. A bare scheme yields "".
func extractToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	if strings.EqualFold(header, "Bearer") {
		return ""
	}
	if scheme, rest, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(rest)
	}
	return header
}
