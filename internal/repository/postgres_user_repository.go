package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"userauth/internal/db"
	apperrors "userauth/internal/errors"
	"userauth/internal/model"
)

// pgUniqueViolation is the SQLSTATE for unique constraint violations.
const pgUniqueViolation = "23505"

type postgresUserRepository struct {
	conn *sql.DB
	db   db.DBTX
}

// NewPostgresUserRepository builds a repository over a pgx-backed *sql.DB.
func NewPostgresUserRepository(conn *sql.DB) UserRepository {
	return &postgresUserRepository{conn: conn, db: conn}
}

func (r *postgresUserRepository) Create(ctx context.Context, user *model.User) error {
	const query = `INSERT INTO users (name, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, user.Name, user.Email, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return apperrors.ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *postgresUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	const query = `SELECT id, name, email, password_hash, created_at, updated_at
		FROM users WHERE id = $1`
	return r.scanOne(ctx, "query user by id", query, id)
}

func (r *postgresUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	const query = `SELECT id, name, email, password_hash, created_at, updated_at
		FROM users WHERE email = $1`
	return r.scanOne(ctx, "query user by email", query, email)
}

func (r *postgresUserRepository) scanOne(ctx context.Context, op, query string, arg any) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

func (r *postgresUserRepository) List(ctx context.Context) ([]model.User, error) {
	const query = `SELECT id, name, email, password_hash, created_at, updated_at
		FROM users ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (r *postgresUserRepository) UpdatePasswordHash(ctx context.Context, id uint, hash string) error {
	const query = `UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2`

	res, err := r.db.ExecContext(ctx, query, hash, id)
	if err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}
	if n == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

func (r *postgresUserRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo UserRepository) error) error {
	if _, inTx := r.db.(*sql.Tx); inTx {
		return fn(ctx, r)
	}
	return db.WithTx(ctx, r.conn, nil, func(ctx context.Context, tx db.DBTX) error {
		return fn(ctx, &postgresUserRepository{conn: r.conn, db: tx})
	})
}
