package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestTokenService(t *testing.T) {
	issuedAt := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	newService := func(t *testing.T, cfg TokenConfig) *TokenService {
		t.Helper()
		s, err := NewTokenService(cfg)
		require.NoError(t, err)
		return s.WithClock(fixedClock(issuedAt))
	}

	t.Run("Should reject an empty secret", func(t *testing.T) {
		_, err := NewTokenService(TokenConfig{})
		assert.Error(t, err)
	})

	t.Run("Should round-trip claims before expiry", func(t *testing.T) {
		s := newService(t, TokenConfig{Secret: "s3cret", Issuer: "memories"})

		token, err := s.Issue(7, "ann@x.io")
		require.NoError(t, err)

		s.WithClock(fixedClock(issuedAt.Add(DefaultTokenTTL - time.Second)))
		claims, err := s.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, int64(7), claims.UserID)
		assert.Equal(t, "ann@x.io", claims.Email)
		assert.Equal(t, "memories", claims.Issuer)
		assert.NotEmpty(t, claims.ID)
		assert.True(t, claims.ExpiresAt.Time.Equal(issuedAt.Add(7*24*time.Hour)))
	})

	t.Run("Should report expiry once the clock passes exp", func(t *testing.T) {
		s := newService(t, TokenConfig{Secret: "s3cret"})

		token, err := s.Issue(7, "ann@x.io")
		require.NoError(t, err)

		s.WithClock(fixedClock(issuedAt.Add(DefaultTokenTTL + time.Second)))
		_, err = s.Verify(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("Should honour a custom TTL", func(t *testing.T) {
		s := newService(t, TokenConfig{Secret: "s3cret", TTL: time.Hour})
		assert.Equal(t, time.Hour, s.TTL())

		token, err := s.Issue(1, "a@b.co")
		require.NoError(t, err)

		s.WithClock(fixedClock(issuedAt.Add(2 * time.Hour)))
		_, err = s.Verify(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("Should reject tokens signed with another secret", func(t *testing.T) {
		issuer := newService(t, TokenConfig{Secret: "one"})
		verifier := newService(t, TokenConfig{Secret: "two"})

		token, err := issuer.Issue(1, "a@b.co")
		require.NoError(t, err)

		_, err = verifier.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Should reject a wrong issuer", func(t *testing.T) {
		issuer := newService(t, TokenConfig{Secret: "s", Issuer: "other"})
		verifier := newService(t, TokenConfig{Secret: "s", Issuer: "memories"})

		token, err := issuer.Issue(1, "a@b.co")
		require.NoError(t, err)

		_, err = verifier.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Should reject unexpected algorithms", func(t *testing.T) {
		s := newService(t, TokenConfig{Secret: "s"})

		claims := Claims{UserID: 1, RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Hour)),
		}}
		none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = s.Verify(none)
		assert.ErrorIs(t, err, ErrInvalidToken)

		hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("s"))
		require.NoError(t, err)
		_, err = s.Verify(hs512)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Should reject tokens without a user id or expiry", func(t *testing.T) {
		s := newService(t, TokenConfig{Secret: "s"})

		noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Hour)),
		}}).SignedString([]byte("s"))
		require.NoError(t, err)
		_, err = s.Verify(noUser)
		assert.ErrorIs(t, err, ErrInvalidToken)

		noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: 1}).SignedString([]byte("s"))
		require.NoError(t, err)
		_, err = s.Verify(noExp)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Should reject garbage", func(t *testing.T) {
		s := newService(t, TokenConfig{Secret: "s"})

		for _, token := range []string{"", "abc", "a.b.c"} {
			_, err := s.Verify(token)
			assert.ErrorIs(t, err, ErrInvalidToken, token)
		}
	})
}

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	t.Run("Should verify only the original password", func(t *testing.T) {
		hash, err := h.Hash("Str0ng!Pass")
		require.NoError(t, err)
		assert.NotEqual(t, "Str0ng!Pass", hash)

		assert.True(t, h.Matches(hash, "Str0ng!Pass"))
		assert.False(t, h.Matches(hash, "str0ng!Pass"))
		assert.False(t, h.Matches("not-a-hash", "Str0ng!Pass"))
	})

	t.Run("Should salt every hash", func(t *testing.T) {
		a, err := h.Hash("Str0ng!Pass")
		require.NoError(t, err)
		b, err := h.Hash("Str0ng!Pass")
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})

	t.Run("Should refuse passwords longer than 72 bytes", func(t *testing.T) {
		_, err := h.Hash(strings.Repeat("A", 73))
		assert.ErrorIs(t, err, ErrPasswordTooLong)
	})

	t.Run("Should fall back to the default cost", func(t *testing.T) {
		assert.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(0).cost)
		assert.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(99).cost)
	})
}
