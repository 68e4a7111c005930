package badgerstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/timshannon/badgerhold/v4"

	"blockpress/models"
	"blockpress/storage"
)

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	count, err := s.store.Count(&models.User{}, badgerhold.Where("Username").Eq(u.Username))
	if err != nil {
		return fmt.Errorf("failed to check username: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("username %q: %w", u.Username, storage.ErrConflict)
	}

	if err := s.store.Insert(u.ID, u); err != nil {
		if errors.Is(err, badgerhold.ErrKeyExists) {
			return fmt.Errorf("user %s: %w", u.ID, storage.ErrConflict)
		}
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.store.Get(id, &u); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, fmt.Errorf("user %s: %w", id, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var users []models.User
	if err := s.store.Find(&users, badgerhold.Where("Username").Eq(username)); err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("user %q: %w", username, storage.ErrNotFound)
	}
	return &users[0], nil
}
