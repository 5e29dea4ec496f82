package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"auction-house/internal/auctionerrors"
	"auction-house/internal/repository"
)

func newTestAuthService(t *testing.T) (*AuthService, *repository.MemoryRepo) {
	t.Helper()

	repo := repository.NewMemoryRepo()
	service, err := NewAuthService(repo, "test-secret", time.Hour)
	require.NoError(t, err)
	return service, repo
}

// Tests Register
func TestAuthService_Register(t *testing.T) {
	t.Parallel()

	service, repo := newTestAuthService(t)

	tests := []struct {
		name          string
		username      string
		password      string
		confirmation  string
		expectedError error
	}{
		{name: "valid_registration", username: "alice", password: "s3cret", confirmation: "s3cret"},
		{name: "mismatched_confirmation", username: "bob", password: "s3cret", confirmation: "other", expectedError: auctionerrors.ErrPasswordMismatch},
		{name: "duplicate_username", username: "alice", password: "s3cret", confirmation: "s3cret", expectedError: auctionerrors.ErrDuplicateUsername},
		{name: "empty_username", username: "", password: "s3cret", confirmation: "s3cret", expectedError: auctionerrors.ErrAuthFailure},
		{name: "empty_password", username: "carol", password: "", confirmation: "", expectedError: auctionerrors.ErrAuthFailure},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			user, err := service.Register(tc.username, tc.username+"@example.com", tc.password, tc.confirmation)
			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)

				// No user record may survive a failed registration
				if tc.username != "" && tc.username != "alice" {
					_, lookupErr := repo.GetUserByUsername(tc.username)
					require.ErrorIs(t, lookupErr, auctionerrors.ErrUserNotFound)
				}
				return
			}

			require.NoError(t, err)
			require.NotEmpty(t, user.UserID)
			require.Equal(t, tc.username, user.Username)
			require.Empty(t, user.PasswordHash, "hash must not be returned to callers")

			// The stored record holds a hash, never the plaintext
			stored, err := repo.GetUserByUsername(tc.username)
			require.NoError(t, err)
			require.NotEmpty(t, stored.PasswordHash)
			require.NotEqual(t, tc.password, stored.PasswordHash)
		})
	}
}

// Tests Login and token validation round trip
func TestAuthService_Login(t *testing.T) {
	t.Parallel()

	service, _ := newTestAuthService(t)

	registered, err := service.Register("alice", "alice@example.com", "s3cret", "s3cret")
	require.NoError(t, err)

	tests := []struct {
		name          string
		username      string
		password      string
		expectedError error
	}{
		{name: "valid_credentials", username: "alice", password: "s3cret"},
		{name: "wrong_password", username: "alice", password: "wrong", expectedError: auctionerrors.ErrAuthFailure},
		{name: "unknown_username", username: "nobody", password: "s3cret", expectedError: auctionerrors.ErrAuthFailure},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			token, err := service.Login(tc.username, tc.password)
			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				return
			}

			require.NoError(t, err)
			require.NotEmpty(t, token)

			userID, err := service.ValidateToken(token)
			require.NoError(t, err)
			require.Equal(t, registered.UserID, userID)
		})
	}
}

// Tests ValidateToken failure modes
func TestAuthService_ValidateToken(t *testing.T) {
	t.Parallel()

	service, _ := newTestAuthService(t)

	_, err := service.Register("alice", "alice@example.com", "s3cret", "s3cret")
	require.NoError(t, err)
	token, err := service.Login("alice", "s3cret")
	require.NoError(t, err)

	t.Run("garbage_token", func(t *testing.T) {
		_, err := service.ValidateToken("not.a.token")
		require.Error(t, err)
	})

	t.Run("token_signed_with_other_secret", func(t *testing.T) {
		other, err := NewAuthService(repository.NewMemoryRepo(), "other-secret", time.Hour)
		require.NoError(t, err)

		_, err = other.ValidateToken(token)
		require.Error(t, err)
	})

	t.Run("tampered_token", func(t *testing.T) {
		_, err := service.ValidateToken(token + "x")
		require.Error(t, err)
	})
}
