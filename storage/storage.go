package storage

import (
	"context"
	"errors"

	"blockpress/models"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

// PostQuery selects posts for listing. Zero values match everything.
type PostQuery struct {
	Search   string   // case-insensitive substring of title, content or author
	Category string   // exact match
	Tags     []string // post carries at least one of them
	Offset   int
	Limit    int // 0 means no limit
}

// Comment sort orders accepted by ListComments.
const (
	SortNewest = "new"
	SortOldest = "old"
	SortLikes  = "likes"
)

type PostStore interface {
	// CreatePost fails with ErrConflict when the ID or slug is taken.
	CreatePost(ctx context.Context, post *models.Post) error
	// UpdatePost replaces a stored post. ErrNotFound when missing,
	// ErrConflict when the new slug belongs to another post.
	UpdatePost(ctx context.Context, post *models.Post) error
	DeletePost(ctx context.Context, id string) error
	GetPost(ctx context.Context, id string) (*models.Post, error)
	GetPostBySlug(ctx context.Context, slug string) (*models.Post, error)
	// ListPosts returns one page, newest PublishedAt first, and the
	// number of posts matching before paging.
	ListPosts(ctx context.Context, q PostQuery) ([]models.Post, int, error)
	CountPosts(ctx context.Context) (int, error)
	Categories(ctx context.Context) ([]string, error)
	Tags(ctx context.Context) ([]string, error)
}

type CommentStore interface {
	CreateComment(ctx context.Context, c *models.Comment) error
	GetComment(ctx context.Context, id string) (*models.Comment, error)
	UpdateComment(ctx context.Context, c *models.Comment) error
	// DeleteComment removes the comment and its replies and returns the
	// number of comments removed.
	DeleteComment(ctx context.Context, id string) (int, error)
	// ListComments returns every comment on the post in the given order.
	ListComments(ctx context.Context, postID, sort string) ([]models.Comment, error)
	LikeComment(ctx context.Context, id string) (int, error)
	DeletePostComments(ctx context.Context, postID string) error
}

type UserStore interface {
	// CreateUser fails with ErrConflict when the username is taken.
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// Store is a complete persistence backend.
type Store interface {
	PostStore
	CommentStore
	UserStore
	Close(ctx context.Context) error
}
