package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"studentportal/internal/seed"
)

func TestAuthenticate(t *testing.T) {
	store := seededStore(t)
	sessions := NewSessionIssuer("secret", time.Hour)
	auth := NewAuthService(store.Users(), PlaintextScheme{}, sessions, zap.NewNop())
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"success with padding and case", "  Alex.Johnson@Email.com ", " password123 ", nil},
		{"missing email", "", "password123", ErrCredentialsRequired},
		{"blank password", "alex.johnson@email.com", "   ", ErrCredentialsRequired},
		{"malformed email", "not-an-email", "x", ErrInvalidEmail},
		{"wrong password", "alex.johnson@email.com", "wrong", ErrPasswordMismatch},
		{"unknown account", "nobody@email.com", "password123", ErrAccountNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := auth.Authenticate(ctx, tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, res)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Alex Johnson", res.User.FullName())
			id, err := sessions.Parse(res.Token)
			require.NoError(t, err)
			assert.Equal(t, res.User.ID, id)
		})
	}
}

func TestAuthenticateBcrypt(t *testing.T) {
	scheme := BcryptScheme{Cost: 4}
	store := seededStore(t, seed.WithPasswordEncoder(scheme))
	auth := NewAuthService(store.Users(), scheme, NewSessionIssuer("secret", time.Hour), zap.NewNop())
	ctx := context.Background()

	res, err := auth.Authenticate(ctx, "maria.garcia@email.com", "securepass")
	require.NoError(t, err)
	assert.NotEqual(t, "securepass", res.User.Password)

	_, err = auth.Authenticate(ctx, "maria.garcia@email.com", "nope")
	assert.ErrorIs(t, err, ErrPasswordMismatch)
}

func TestNewPasswordScheme(t *testing.T) {
	s, err := NewPasswordScheme("plaintext")
	require.NoError(t, err)
	assert.IsType(t, PlaintextScheme{}, s)

	s, err = NewPasswordScheme("bcrypt")
	require.NoError(t, err)
	assert.IsType(t, BcryptScheme{}, s)

	_, err = NewPasswordScheme("md5")
	assert.Error(t, err)
}

func TestSessionIssuer(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewSessionIssuer("secret", time.Hour)
	s.now = func() time.Time { return now }

	token, exp, err := s.Issue(7)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), exp)

	id, err := s.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, 7, id)

	other := NewSessionIssuer("other", time.Hour)
	other.now = s.now
	_, err = other.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidSession)

	now = now.Add(2 * time.Hour)
	_, err = s.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, err = s.Parse("garbage")
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestCurrentUserResolver(t *testing.T) {
	store := seededStore(t)
	sessions := NewSessionIssuer("secret", time.Hour)
	r := NewCurrentUserResolver(store.Users(), sessions, zap.NewNop())
	ctx := context.Background()

	u, err := r.Resolve(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "alex.johnson@email.com", u.Email)

	maria, err := store.Users().FindByEmail(ctx, "maria.garcia@email.com")
	require.NoError(t, err)
	token, _, err := sessions.Issue(maria.ID)
	require.NoError(t, err)

	u, err = r.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, maria.ID, u.ID)

	// a token for a deleted user falls back to the first user
	require.NoError(t, store.Users().Delete(ctx, maria.ID))
	u, err = r.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "alex.johnson@email.com", u.Email)

	u, err = r.Resolve(ctx, "not-a-token")
	require.NoError(t, err)
	assert.Equal(t, "alex.johnson@email.com", u.Email)
}

func TestCurrentUserResolverEmpty(t *testing.T) {
	store := seededStore(t)
	require.NoError(t, store.Seed().ResetSchema(context.Background()))

	r := NewCurrentUserResolver(store.Users(), NewSessionIssuer("s", time.Hour), zap.NewNop())
	_, err := r.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoUsers)
}
