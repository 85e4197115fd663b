package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	apperrors "userauth/internal/errors"
	"userauth/internal/model"
)

var userColumns = []string{"id", "name", "email", "password_hash", "created_at", "updated_at"}

func newGormMock(t *testing.T) (UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      conn,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return NewUserRepository(gormDB), mock
}

func TestUserRepository_Create(t *testing.T) {
	repo, mock := newGormMock(t)
	mock.ExpectExec("INSERT INTO `users`").WillReturnResult(sqlmock.NewResult(7, 1))

	user := &model.User{Name: "Alice", Email: "alice@example.com", PasswordHash: "hash"}
	require.NoError(t, repo.Create(context.Background(), user))

	assert.Equal(t, uint(7), user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CreateDuplicate(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"mysql 1062", &mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry 'alice@example.com' for key 'idx_users_email'"}},
		{"gorm sentinel", gorm.ErrDuplicatedKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newGormMock(t)
			mock.ExpectExec("INSERT INTO `users`").WillReturnError(tt.err)

			err := repo.Create(context.Background(), &model.User{Name: "Alice", Email: "alice@example.com"})
			assert.ErrorIs(t, err, apperrors.ErrDuplicateEmail)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_CreateOtherError(t *testing.T) {
	repo, mock := newGormMock(t)
	mock.ExpectExec("INSERT INTO `users`").WillReturnError(errors.New("connection reset"))

	err := repo.Create(context.Background(), &model.User{Name: "Alice", Email: "alice@example.com"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrDuplicateEmail)
}

func TestUserRepository_FindByEmail(t *testing.T) {
	repo, mock := newGormMock(t)
	now := time.Now()
	mock.ExpectQuery("SELECT \\* FROM `users` WHERE email = \\?").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(3, "Alice", "alice@example.com", "hash", now, now))

	user, err := repo.FindByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, uint(3), user.ID)
	assert.Equal(t, "hash", user.PasswordHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByEmailMatchesExactCase(t *testing.T) {
	repo, mock := newGormMock(t)
	mock.ExpectQuery("SELECT \\* FROM `users` WHERE email = \\?").
		WithArgs("ALICE@example.com", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(userColumns))

	_, err := repo.FindByEmail(context.Background(), "ALICE@example.com")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindNotFound(t *testing.T) {
	repo, mock := newGormMock(t)
	mock.ExpectQuery("SELECT \\* FROM `users` WHERE email = \\?").
		WillReturnRows(sqlmock.NewRows(userColumns))
	mock.ExpectQuery("SELECT \\* FROM `users` WHERE `users`.`id` = \\?").
		WillReturnRows(sqlmock.NewRows(userColumns))

	_, err := repo.FindByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

	_, err = repo.FindByID(context.Background(), 42)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_ListEmpty(t *testing.T) {
	repo, mock := newGormMock(t)
	mock.ExpectQuery("SELECT \\* FROM `users` ORDER BY id").
		WillReturnRows(sqlmock.NewRows(userColumns))

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestUserRepository_UpdatePasswordHash(t *testing.T) {
	repo, mock := newGormMock(t)
	mock.ExpectExec("UPDATE `users` SET `password_hash`=\\?").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE `users` SET `password_hash`=\\?").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.UpdatePasswordHash(context.Background(), 1, "new"))
	assert.ErrorIs(t, repo.UpdatePasswordHash(context.Background(), 2, "new"), apperrors.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_WithTransactionRollsBack(t *testing.T) {
	repo, mock := newGormMock(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `users`").WillReturnResult(sqlmock.NewResult(8, 1))
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := repo.WithTransaction(context.Background(), func(ctx context.Context, tx UserRepository) error {
		if err := tx.Create(ctx, &model.User{Name: "Alice", Email: "alice@example.com"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_WithTransactionCommits(t *testing.T) {
	repo, mock := newGormMock(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `users`").WillReturnResult(sqlmock.NewResult(8, 1))
	mock.ExpectCommit()

	err := repo.WithTransaction(context.Background(), func(ctx context.Context, tx UserRepository) error {
		return tx.Create(ctx, &model.User{Name: "Alice", Email: "alice@example.com"})
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
