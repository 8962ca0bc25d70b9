package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vfg2006/sales-dashboard-api/infrastructure/database"
	"github.com/vfg2006/sales-dashboard-api/internal/domain"
)

const usersTable = "users"

var userColumns = []string{"id", "name", "email", "password_hash", "active", "created_at", "updated_at"}

type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, userID int) (*domain.User, error)
}

type userRepository struct {
	conn database.Conn
	now  func() time.Time
}

func NewUserRepository(conn database.Conn) UserRepository {
	return &userRepository{
		conn: conn,
		now:  time.Now,
	}
}

func (r *userRepository) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	now := r.now()

	query, args, err := builder(r.conn).
		Insert(usersTable).
		Columns("name", "email", "password_hash", "active", "created_at", "updated_at").
		Values(user.Name, user.Email, user.PasswordHash, user.Active, millis(now), millis(now)).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, err
	}

	if err := r.conn.QueryRowContext(ctx, query, args...).Scan(&user.ID); err != nil {
		return nil, err
	}

	user.CreatedAt = fromMillis(millis(now))
	user.UpdatedAt = user.CreatedAt

	return user, nil
}

// UpdateUser writes the non-empty fields of user
func (r *userRepository) UpdateUser(ctx context.Context, user *domain.User) error {
	queryBuilder := builder(r.conn).
		Update(usersTable).
		Set("active", user.Active).
		Set("updated_at", millis(r.now())).
		Where(squirrel.Eq{"id": user.ID})

	if user.Name != "" {
		queryBuilder = queryBuilder.Set("name", user.Name)
	}

	if user.Email != "" {
		queryBuilder = queryBuilder.Set("email", user.Email)
	}

	if user.PasswordHash != "" {
		queryBuilder = queryBuilder.Set("password_hash", user.PasswordHash)
	}

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return err
	}

	_, err = r.conn.ExecContext(ctx, query, args...)
	return err
}

// GetUserByEmail returns nil without error when no user has email
func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := r.getUser(ctx, squirrel.Eq{"email": email})
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return user, err
}

func (r *userRepository) GetUserByID(ctx context.Context, userID int) (*domain.User, error) {
	return r.getUser(ctx, squirrel.Eq{"id": userID})
}

func (r *userRepository) getUser(ctx context.Context, where squirrel.Eq) (*domain.User, error) {
	query, args, err := builder(r.conn).
		Select(userColumns...).
		From(usersTable).
		Where(where).
		ToSql()
	if err != nil {
		return nil, err
	}

	var (
		user                 domain.User
		createdAt, updatedAt int64
	)

	err = r.conn.QueryRowContext(ctx, query, args...).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Active,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.CreatedAt = fromMillis(createdAt)
	user.UpdatedAt = fromMillis(updatedAt)

	return &user, nil
}
