// Package authenticating is the identity provider: email and password logins,
// session tokens and session change notifications.
package authenticating

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/vfg2006/sales-dashboard-api/infrastructure/repository"
	"github.com/vfg2006/sales-dashboard-api/internal/config"
	"github.com/vfg2006/sales-dashboard-api/internal/domain"
	"github.com/vfg2006/sales-dashboard-api/pkg/apiErrors"
	"github.com/vfg2006/sales-dashboard-api/pkg/log"
	"github.com/vfg2006/sales-dashboard-api/pkg/utils"
	"golang.org/x/crypto/bcrypt"
)

//go:generate mockgen -source=service.go -destination=mocks/service.go -package=mocks

type Authenticator interface {
	LoginUser(ctx context.Context, email, password string) (*Login, error)
	ValidateToken(ctx context.Context, tokenString string) (*domain.Claims, error)
	EndSession(ctx context.Context, sessionID string) error
	SubscribeSessionChanges(fn func(SessionEvent)) (unsubscribe func())
	GetUserProfile(ctx context.Context, userID int) (*domain.User, error)
	EnsureAdmin(ctx context.Context, email, password, name string) (*domain.User, error)
	CleanupExpiredSessions(ctx context.Context) (int64, error)
}

// Login is the result of a successful sign in
type Login struct {
	Token   string          `json:"token"`
	Session *domain.Session `json:"session"`
	User    *domain.User    `json:"user"`
}

type Service struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	secretKey   string
	sessionTTL  time.Duration
	broker      *broker
	now         func() time.Time
}

func NewService(userRepo repository.UserRepository, sessionRepo repository.SessionRepository, cfg *config.Config) *Service {
	return &Service{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		secretKey:   cfg.SecretKey,
		sessionTTL:  cfg.Auth.SessionTTL,
		broker:      newBroker(),
		now:         time.Now,
	}
}

func handleEmail(s string) string {
	email := strings.ToLower(s)
	email = strings.TrimSpace(email)
	email = strings.ReplaceAll(email, " ", "")
	return email
}

func (s *Service) LoginUser(ctx context.Context, email, password string) (*Login, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, NewAuthError(ErrMissingRequiredData, apiErrors.ErrMissingRequiredData, "email and password are required")
	}

	email = handleEmail(email)

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, NewAuthError(fmt.Errorf("%w: %v", ErrDatabaseOperation, err), apiErrors.ErrDatabaseOperation, "could not read user")
	}

	if user == nil {
		return nil, NewAuthError(ErrUserNotFound, apiErrors.ErrUserNotFound, "")
	}

	if !user.Active {
		return nil, NewUserAuthError(ErrUserDisabled, apiErrors.ErrUserDisabled, user.ID, "")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, NewUserAuthError(ErrInvalidCredentials, apiErrors.ErrInvalidCredentials, user.ID, "")
	}

	sessionID, err := utils.GenerateKey()
	if err != nil {
		return nil, NewAuthError(err, apiErrors.ErrInternalServer, "could not create session")
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	session := &domain.Session{
		ID:        sessionID,
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}

	if err := s.sessionRepo.CreateSession(ctx, session); err != nil {
		return nil, NewUserAuthError(fmt.Errorf("%w: %v", ErrDatabaseOperation, err), apiErrors.ErrDatabaseOperation, user.ID, "could not store session")
	}

	token, err := s.generateJWT(user, session)
	if err != nil {
		return nil, NewAuthError(err, apiErrors.ErrInternalServer, "could not sign token")
	}

	log.ForContext(ctx).WithFields(log.Fields{"user_id": user.ID, "session_id": session.ID}).Info("session started")
	s.broker.publish(SessionEvent{Type: SessionStarted, SessionID: session.ID, UserID: user.ID, At: now})

	user.PasswordHash = ""
	return &Login{Token: token, Session: session, User: user}, nil
}

func (s *Service) generateJWT(user *domain.User, session *domain.Session) (string, error) {
	claims := domain.Claims{
		SessionID: session.ID,
		UserID:    user.ID,
		UserName:  user.Name,
		UserEmail: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID,
			IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secretKey))
}

// ValidateToken accepts a token only while its session is stored and unexpired
func (s *Service) ValidateToken(ctx context.Context, tokenString string) (*domain.Claims, error) {
	if tokenString == "" {
		return nil, NewAuthError(ErrInvalidToken, apiErrors.ErrInvalidToken, "missing token")
	}

	token, err := jwt.ParseWithClaims(tokenString, &domain.Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secretKey), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, NewAuthError(ErrExpiredToken, apiErrors.ErrExpiredToken, "")
		}
		return nil, NewAuthError(ErrInvalidToken, apiErrors.ErrInvalidToken, err.Error())
	}

	claims, ok := token.Claims.(*domain.Claims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return nil, NewAuthError(ErrInvalidToken, apiErrors.ErrInvalidToken, "")
	}

	session, err := s.sessionRepo.GetSession(ctx, claims.SessionID)
	if err != nil {
		return nil, NewAuthError(fmt.Errorf("%w: %v", ErrDatabaseOperation, err), apiErrors.ErrDatabaseOperation, "could not read session")
	}

	if session == nil {
		return nil, NewUserAuthError(ErrSessionEnded, apiErrors.ErrInvalidToken, claims.UserID, "")
	}

	if !s.now().Before(session.ExpiresAt) {
		return nil, NewUserAuthError(ErrExpiredToken, apiErrors.ErrExpiredToken, claims.UserID, "")
	}

	return claims, nil
}

// EndSession removes the session and notifies subscribers. Ending an unknown
// session is not an error.
func (s *Service) EndSession(ctx context.Context, sessionID string) error {
	session, err := s.sessionRepo.GetSession(ctx, sessionID)
	if err != nil {
		return NewAuthError(fmt.Errorf("%w: %v", ErrDatabaseOperation, err), apiErrors.ErrDatabaseOperation, "could not read session")
	}

	if err := s.sessionRepo.DeleteSession(ctx, sessionID); err != nil {
		return NewAuthError(fmt.Errorf("%w: %v", ErrDatabaseOperation, err), apiErrors.ErrDatabaseOperation, "could not end session")
	}

	event := SessionEvent{Type: SessionEnded, SessionID: sessionID, At: s.now()}
	if session != nil {
		event.UserID = session.UserID
	}

	log.ForContext(ctx).WithField("session_id", sessionID).Info("session ended")
	s.broker.publish(event)

	return nil
}

// SubscribeSessionChanges calls fn for every session start and end until the
// returned func is called
func (s *Service) SubscribeSessionChanges(fn func(SessionEvent)) func() {
	return s.broker.subscribe(fn)
}

func (s *Service) GetUserProfile(ctx context.Context, userID int) (*domain.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		log.ForContext(ctx).WithError(err).WithField("user_id", userID).Error("could not load user profile")
		return nil, err
	}
	if user == nil {
		return nil, NewUserAuthError(ErrUserNotFound, apiErrors.ErrUserNotFound, userID, "")
	}

	user.PasswordHash = ""
	return user, nil
}

// EnsureAdmin creates the bootstrap user, or resets its password, name and
// active flag when it already exists
func (s *Service) EnsureAdmin(ctx context.Context, email, password, name string) (*domain.User, error) {
	email = handleEmail(email)
	if email == "" || password == "" {
		return nil, NewAuthError(ErrMissingRequiredData, apiErrors.ErrMissingRequiredData, "admin email and password are required")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseOperation, err)
	}

	if existing != nil {
		existing.PasswordHash = string(hashedPassword)
		existing.Active = true
		if name != "" {
			existing.Name = name
		}

		if err := s.userRepo.UpdateUser(ctx, existing); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDatabaseOperation, err)
		}

		return existing, nil
	}

	user, err := s.userRepo.CreateUser(ctx, &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Active:       true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseOperation, err)
	}

	log.ForContext(ctx).WithField("email", email).Info("admin user created")
	return user, nil
}

// CleanupExpiredSessions deletes sessions past their expiry
func (s *Service) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	removed, err := s.sessionRepo.DeleteExpiredSessions(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDatabaseOperation, err)
	}
	return removed, nil
}
