package badgerstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"blockpress/config"
	"blockpress/models"
	"blockpress/storage"
)

// Store keeps posts, comments and users in an embedded Badger database.
type Store struct {
	store  *badgerhold.Store
	logger arbor.ILogger

	// serialises read-check-write sequences (slug and username uniqueness, likes)
	mu sync.Mutex
}

var _ storage.Store = (*Store)(nil)

// Open opens or creates the database at cfg.Path.
func Open(cfg config.BadgerConfig, logger arbor.ILogger) (*Store, error) {
	if cfg.ResetOnStartup {
		if _, err := os.Stat(cfg.Path); err == nil {
			logger.Debug().Str("path", cfg.Path).Msg("Deleting existing database (reset_on_startup=true)")
			if err := os.RemoveAll(cfg.Path); err != nil {
				logger.Warn().Err(err).Str("path", cfg.Path).Msg("Failed to delete database directory")
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = cfg.Path
	options.ValueDir = cfg.Path
	options.Logger = nil

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	logger.Info().Str("path", cfg.Path).Msg("Badger database opened")
	return &Store{store: store, logger: logger}, nil
}

func (s *Store) Close(ctx context.Context) error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

// Posts

func (s *Store) slugTaken(slug, exceptID string) (bool, error) {
	var posts []models.Post
	if err := s.store.Find(&posts, badgerhold.Where("Slug").Eq(slug)); err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	for _, p := range posts {
		if p.ID != exceptID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) CreatePost(ctx context.Context, post *models.Post) error {
	if post.ID == "" {
		return fmt.Errorf("post ID is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	taken, err := s.slugTaken(post.Slug, "")
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("slug %q: %w", post.Slug, storage.ErrConflict)
	}

	if err := s.store.Insert(post.ID, post); err != nil {
		if errors.Is(err, badgerhold.ErrKeyExists) {
			return fmt.Errorf("post %s: %w", post.ID, storage.ErrConflict)
		}
		return fmt.Errorf("failed to save post: %w", err)
	}
	return nil
}

func (s *Store) UpdatePost(ctx context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	taken, err := s.slugTaken(post.Slug, post.ID)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("slug %q: %w", post.Slug, storage.ErrConflict)
	}

	if err := s.store.Update(post.ID, post); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return fmt.Errorf("post %s: %w", post.ID, storage.ErrNotFound)
		}
		return fmt.Errorf("failed to update post: %w", err)
	}
	return nil
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	if err := s.store.Delete(id, &models.Post{}); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return fmt.Errorf("post %s: %w", id, storage.ErrNotFound)
		}
		return fmt.Errorf("failed to delete post: %w", err)
	}
	return nil
}

func (s *Store) GetPost(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := s.store.Get(id, &post); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, fmt.Errorf("post %s: %w", id, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return &post, nil
}

func (s *Store) GetPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	var posts []models.Post
	if err := s.store.Find(&posts, badgerhold.Where("Slug").Eq(slug)); err != nil {
		return nil, fmt.Errorf("failed to find post: %w", err)
	}
	if len(posts) == 0 {
		return nil, fmt.Errorf("post with slug %q: %w", slug, storage.ErrNotFound)
	}
	return &posts[0], nil
}

func (s *Store) allPosts() ([]models.Post, error) {
	var posts []models.Post
	if err := s.store.Find(&posts, badgerhold.Where("ID").Ne("")); err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

func (s *Store) ListPosts(ctx context.Context, q storage.PostQuery) ([]models.Post, int, error) {
	all, err := s.allPosts()
	if err != nil {
		return nil, 0, err
	}

	matched := make([]models.Post, 0, len(all))
	for i := range all {
		if q.Match(&all[i]) {
			matched = append(matched, all[i])
		}
	}
	storage.SortNewestFirst(matched)
	return storage.Page(matched, q.Offset, q.Limit), len(matched), nil
}

func (s *Store) CountPosts(ctx context.Context) (int, error) {
	count, err := s.store.Count(&models.Post{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return int(count), nil
}

func (s *Store) Categories(ctx context.Context) ([]string, error) {
	all, err := s.allPosts()
	if err != nil {
		return nil, err
	}
	values := make([]string, 0, len(all))
	for _, p := range all {
		values = append(values, p.Category)
	}
	return storage.Distinct(values), nil
}

func (s *Store) Tags(ctx context.Context) ([]string, error) {
	all, err := s.allPosts()
	if err != nil {
		return nil, err
	}
	var values []string
	for _, p := range all {
		values = append(values, p.Tags...)
	}
	return storage.Distinct(values), nil
}
