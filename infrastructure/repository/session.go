package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vfg2006/sales-dashboard-api/infrastructure/database"
	"github.com/vfg2006/sales-dashboard-api/internal/domain"
)

const sessionsTable = "sessions"

type SessionRepository interface {
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)
	DeleteSession(ctx context.Context, sessionID string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

type sessionRepository struct {
	conn database.Conn
}

func NewSessionRepository(conn database.Conn) SessionRepository {
	return &sessionRepository{
		conn: conn,
	}
}

func (r *sessionRepository) CreateSession(ctx context.Context, session *domain.Session) error {
	query, args, err := builder(r.conn).
		Insert(sessionsTable).
		Columns("id", "user_id", "created_at", "expires_at").
		Values(session.ID, session.UserID, millis(session.CreatedAt), millis(session.ExpiresAt)).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.conn.ExecContext(ctx, query, args...)
	return err
}

// GetSession returns nil without error when the session does not exist
func (r *sessionRepository) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	query, args, err := builder(r.conn).
		Select("id", "user_id", "created_at", "expires_at").
		From(sessionsTable).
		Where(squirrel.Eq{"id": sessionID}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var (
		session              domain.Session
		createdAt, expiresAt int64
	)

	err = r.conn.QueryRowContext(ctx, query, args...).Scan(&session.ID, &session.UserID, &createdAt, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	session.CreatedAt = fromMillis(createdAt)
	session.ExpiresAt = fromMillis(expiresAt)

	return &session, nil
}

func (r *sessionRepository) DeleteSession(ctx context.Context, sessionID string) error {
	query, args, err := builder(r.conn).
		Delete(sessionsTable).
		Where(squirrel.Eq{"id": sessionID}).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.conn.ExecContext(ctx, query, args...)
	return err
}

func (r *sessionRepository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	query, args, err := builder(r.conn).
		Delete(sessionsTable).
		Where(squirrel.LtOrEq{"expires_at": millis(now)}).
		ToSql()
	if err != nil {
		return 0, err
	}

	result, err := r.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
