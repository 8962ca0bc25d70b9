package authenticating

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/sales-dashboard-api/infrastructure/repository/mocks"
	"github.com/vfg2006/sales-dashboard-api/internal/config"
	"github.com/vfg2006/sales-dashboard-api/internal/domain"
	"github.com/vfg2006/sales-dashboard-api/pkg/apiErrors"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T) (*Service, *mocks.MockUserRepository, *mocks.MockSessionRepository) {
	ctrl := gomock.NewController(t)
	users := mocks.NewMockUserRepository(ctrl)
	sessions := mocks.NewMockSessionRepository(ctrl)

	cfg := &config.Config{SecretKey: "test-secret", Auth: config.Auth{SessionTTL: time.Hour}}
	service := NewService(users, sessions, cfg)
	service.now = func() time.Time { return time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC) }

	return service, users, sessions
}

func activeUser(t *testing.T, password string) *domain.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &domain.User{ID: 7, Name: "Admin", Email: "admin@example.com", PasswordHash: string(hash), Active: true}
}

func authCode(t *testing.T, err error) string {
	t.Helper()
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	return authErr.Code
}

func TestLoginUser(t *testing.T) {
	ctx := context.Background()

	t.Run("missing data", func(t *testing.T) {
		service, _, _ := newTestService(t)
		_, err := service.LoginUser(ctx, " ", "secret")
		assert.ErrorIs(t, err, ErrMissingRequiredData)
		assert.Equal(t, apiErrors.ErrMissingRequiredData, authCode(t, err))
	})

	t.Run("unknown user", func(t *testing.T) {
		service, users, _ := newTestService(t)
		users.EXPECT().GetUserByEmail(gomock.Any(), "ghost@example.com").Return(nil, nil)

		_, err := service.LoginUser(ctx, " Ghost@Example.com ", "secret")
		assert.ErrorIs(t, err, ErrUserNotFound)
		assert.True(t, IsCredentialsError(err))
	})

	t.Run("disabled user", func(t *testing.T) {
		service, users, _ := newTestService(t)
		user := activeUser(t, "secret")
		user.Active = false
		users.EXPECT().GetUserByEmail(gomock.Any(), "admin@example.com").Return(user, nil)

		_, err := service.LoginUser(ctx, "admin@example.com", "secret")
		assert.ErrorIs(t, err, ErrUserDisabled)
		assert.Equal(t, apiErrors.ErrUserDisabled, authCode(t, err))
	})

	t.Run("wrong password", func(t *testing.T) {
		service, users, _ := newTestService(t)
		users.EXPECT().GetUserByEmail(gomock.Any(), "admin@example.com").Return(activeUser(t, "secret"), nil)

		_, err := service.LoginUser(ctx, "admin@example.com", "nope")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("database failure", func(t *testing.T) {
		service, users, _ := newTestService(t)
		users.EXPECT().GetUserByEmail(gomock.Any(), gomock.Any()).Return(nil, errors.New("boom"))

		_, err := service.LoginUser(ctx, "admin@example.com", "secret")
		assert.ErrorIs(t, err, ErrDatabaseOperation)
		assert.Equal(t, apiErrors.ErrDatabaseOperation, authCode(t, err))
	})

	t.Run("success", func(t *testing.T) {
		service, users, sessions := newTestService(t)
		users.EXPECT().GetUserByEmail(gomock.Any(), "admin@example.com").Return(activeUser(t, "secret"), nil)

		var stored *domain.Session
		sessions.EXPECT().CreateSession(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, s *domain.Session) error {
			stored = s
			return nil
		})

		var events []SessionEvent
		unsubscribe := service.SubscribeSessionChanges(func(e SessionEvent) { events = append(events, e) })
		defer unsubscribe()

		login, err := service.LoginUser(ctx, "admin@example.com", "secret")
		require.NoError(t, err)
		assert.NotEmpty(t, login.Token)
		assert.Empty(t, login.User.PasswordHash)
		assert.Equal(t, stored, login.Session)
		assert.Equal(t, 7, stored.UserID)
		assert.Equal(t, time.Hour, stored.ExpiresAt.Sub(stored.CreatedAt))

		require.Len(t, events, 1)
		assert.Equal(t, SessionStarted, events[0].Type)
		assert.Equal(t, stored.ID, events[0].SessionID)
	})
}

func loginFor(t *testing.T, service *Service, users *mocks.MockUserRepository, sessions *mocks.MockSessionRepository) *Login {
	users.EXPECT().GetUserByEmail(gomock.Any(), gomock.Any()).Return(activeUser(t, "secret"), nil)
	sessions.EXPECT().CreateSession(gomock.Any(), gomock.Any()).Return(nil)

	login, err := service.LoginUser(context.Background(), "admin@example.com", "secret")
	require.NoError(t, err)
	return login
}

func TestTokenStopsValidatingAfterEndSession(t *testing.T) {
	ctx := context.Background()
	service, users, sessions := newTestService(t)
	login := loginFor(t, service, users, sessions)

	sessions.EXPECT().GetSession(gomock.Any(), login.Session.ID).Return(login.Session, nil)
	claims, err := service.ValidateToken(ctx, login.Token)
	require.NoError(t, err)
	assert.Equal(t, login.Session.ID, claims.SessionID)
	assert.Equal(t, 7, claims.UserID)

	var ended []SessionEvent
	unsubscribe := service.SubscribeSessionChanges(func(e SessionEvent) { ended = append(ended, e) })

	sessions.EXPECT().GetSession(gomock.Any(), login.Session.ID).Return(login.Session, nil)
	sessions.EXPECT().DeleteSession(gomock.Any(), login.Session.ID).Return(nil)
	require.NoError(t, service.EndSession(ctx, login.Session.ID))

	require.Len(t, ended, 1)
	assert.Equal(t, SessionEnded, ended[0].Type)
	assert.Equal(t, 7, ended[0].UserID)

	sessions.EXPECT().GetSession(gomock.Any(), login.Session.ID).Return(nil, nil)
	_, err = service.ValidateToken(ctx, login.Token)
	assert.ErrorIs(t, err, ErrSessionEnded)
	assert.True(t, IsSessionError(err))
	assert.Equal(t, apiErrors.ErrInvalidToken, authCode(t, err))

	unsubscribe()
	sessions.EXPECT().GetSession(gomock.Any(), "other").Return(nil, nil)
	sessions.EXPECT().DeleteSession(gomock.Any(), "other").Return(nil)
	require.NoError(t, service.EndSession(ctx, "other"))
	assert.Len(t, ended, 1, "unsubscribed callbacks are not called")
}

func TestValidateTokenRejections(t *testing.T) {
	ctx := context.Background()

	t.Run("garbage", func(t *testing.T) {
		service, _, _ := newTestService(t)
		_, err := service.ValidateToken(ctx, "not-a-jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("empty", func(t *testing.T) {
		service, _, _ := newTestService(t)
		_, err := service.ValidateToken(ctx, "")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		service, users, sessions := newTestService(t)
		login := loginFor(t, service, users, sessions)

		service.secretKey = "another-secret"
		_, err := service.ValidateToken(ctx, login.Token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		service, users, sessions := newTestService(t)
		login := loginFor(t, service, users, sessions)

		service.now = func() time.Time { return time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC) }
		_, err := service.ValidateToken(ctx, login.Token)
		assert.ErrorIs(t, err, ErrExpiredToken)
		assert.Equal(t, apiErrors.ErrExpiredToken, authCode(t, err))
	})
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("creates missing admin", func(t *testing.T) {
		service, users, _ := newTestService(t)
		users.EXPECT().GetUserByEmail(gomock.Any(), "admin@example.com").Return(nil, nil)
		users.EXPECT().CreateUser(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, u *domain.User) (*domain.User, error) {
			assert.True(t, u.Active)
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret")))
			u.ID = 1
			return u, nil
		})

		user, err := service.EnsureAdmin(ctx, "Admin@Example.com", "secret", "Admin")
		require.NoError(t, err)
		assert.Equal(t, 1, user.ID)
	})

	t.Run("resets existing admin", func(t *testing.T) {
		service, users, _ := newTestService(t)
		existing := &domain.User{ID: 3, Email: "admin@example.com", Name: "Old"}
		users.EXPECT().GetUserByEmail(gomock.Any(), "admin@example.com").Return(existing, nil)
		users.EXPECT().UpdateUser(gomock.Any(), existing).Return(nil)

		user, err := service.EnsureAdmin(ctx, "admin@example.com", "secret", "New")
		require.NoError(t, err)
		assert.True(t, user.Active)
		assert.Equal(t, "New", user.Name)
	})

	t.Run("requires credentials", func(t *testing.T) {
		service, _, _ := newTestService(t)
		_, err := service.EnsureAdmin(ctx, "", "secret", "Admin")
		assert.ErrorIs(t, err, ErrMissingRequiredData)
	})
}

func TestCleanupExpiredSessions(t *testing.T) {
	service, _, sessions := newTestService(t)
	sessions.EXPECT().DeleteExpiredSessions(gomock.Any(), service.now()).Return(int64(2), nil)

	removed, err := service.CleanupExpiredSessions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)
}

func TestGetUserProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("hides the password hash", func(t *testing.T) {
		service, users, _ := newTestService(t)
		users.EXPECT().GetUserByID(gomock.Any(), 7).Return(activeUser(t, "secret"), nil)

		user, err := service.GetUserProfile(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, "admin@example.com", user.Email)
		assert.Empty(t, user.PasswordHash)
	})

	t.Run("unknown user", func(t *testing.T) {
		service, users, _ := newTestService(t)
		users.EXPECT().GetUserByID(gomock.Any(), 99).Return(nil, nil)

		_, err := service.GetUserProfile(ctx, 99)
		assert.ErrorIs(t, err, ErrUserNotFound)
		assert.Equal(t, apiErrors.ErrUserNotFound, authCode(t, err))
	})

	t.Run("repository failure", func(t *testing.T) {
		service, users, _ := newTestService(t)
		users.EXPECT().GetUserByID(gomock.Any(), 7).Return(nil, errors.New("db down"))

		_, err := service.GetUserProfile(ctx, 7)
		assert.Error(t, err)
	})
}
