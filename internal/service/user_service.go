package service

import (
	"context"
	"errors"
	"fmt"

	"userauth/internal/auth"
	apperrors "userauth/internal/errors"
	"userauth/internal/model"
	"userauth/internal/repository"
)

// UserService exposes user reads.
type UserService interface {
	GetUser(ctx context.Context, actx auth.AuthContext) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
}

type userService struct {
	repo repository.UserRepository
}

// NewUserService builds a UserService over the credential store.
func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

// GetUser returns the caller's own record. Anonymous callers get
// ErrNotAuthenticated; a valid token for a removed user gets ErrUserNotFound.
func (s *userService) GetUser(ctx context.Context, actx auth.AuthContext) (*model.User, error) {
	if !actx.Authenticated {
		return nil, apperrors.ErrNotAuthenticated
	}
	user, err := s.repo.FindByID(ctx, actx.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// ListUsers returns every user; an empty store yields an empty, non-nil slice.
func (s *userService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}
