package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"userauth/internal/auth"
	apperrors "userauth/internal/errors"
	"userauth/internal/model"
	"userauth/internal/repository"
)

// AuthService handles signup and signin.
type AuthService interface {
	SignUp(ctx context.Context, name, email, password string) (token string, err error)
	SignIn(ctx context.Context, email, password string) (token string, err error)
}

type authService struct {
	users  repository.UserRepository
	hasher auth.PasswordHasher
	tokens *auth.TokenCodec
	logger *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(users repository.UserRepository, hasher auth.PasswordHasher, tokens *auth.TokenCodec, logger *slog.Logger) AuthService {
	return &authService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
	}
}

// SignUp registers a user and returns a token for it. The email pre-check is
// a fast path; the store's unique constraint decides concurrent races. The
// user row and the token are produced in one transaction so a failed signup
// leaves nothing behind.
func (s *authService) SignUp(ctx context.Context, name, email, password string) (string, error) {
	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return "", apperrors.ErrDuplicateEmail
	}
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		return "", fmt.Errorf("check email: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return "", err
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}

	var token string
	err = s.users.WithTransaction(ctx, func(ctx context.Context, repo repository.UserRepository) error {
		if err := repo.Create(ctx, user); err != nil {
			return err
		}
		var issueErr error
		token, issueErr = s.tokens.Issue(user.ID)
		return issueErr
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicateEmail) {
			return "", apperrors.ErrDuplicateEmail
		}
		return "", fmt.Errorf("create user: %w", err)
	}

	s.logger.InfoContext(ctx, "user signed up", "user_id", user.ID)
	return token, nil
}

// SignIn verifies credentials and returns a token. Digests stored with an
// outdated work factor are upgraded in place.
func (s *authService) SignIn(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return "", apperrors.ErrUserNotFound
		}
		return "", fmt.Errorf("find user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.logger.InfoContext(ctx, "sign in rejected", "user_id", user.ID)
		return "", apperrors.ErrInvalidCredentials
	}

	if s.hasher.NeedsRehash(user.PasswordHash) {
		s.rehash(ctx, user.ID, password)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	s.logger.InfoContext(ctx, "user signed in", "user_id", user.ID)
	return token, nil
}

func (s *authService) rehash(ctx context.Context, userID uint, password string) {
	hash, err := s.hasher.Hash(password)
	if err == nil {
		err = s.users.UpdatePasswordHash(ctx, userID, hash)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "password rehash failed", "user_id", userID, "error", err)
		return
	}
	s.logger.InfoContext(ctx, "password rehashed", "user_id", userID)
}
