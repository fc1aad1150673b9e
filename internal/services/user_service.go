package services

import (
	"context"

	"costs/internal/core"
	"costs/internal/storage"
)

type UserService struct {
	users storage.UserStore
}

func NewUserService(users storage.UserStore) *UserService {
	return &UserService{users: users}
}

// GetUser returns the user with its running total. Unknown ids yield
// core.ErrNotFound.
func (s *UserService) GetUser(ctx context.Context, id int64) (core.User, error) {
	return s.users.GetUser(ctx, id)
}
