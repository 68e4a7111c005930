package posts

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"

	"blockpress/blocks"
	"blockpress/compositor"
	"blockpress/models"
	"blockpress/render"
	"blockpress/storage"
	"blockpress/utils"
)

// ViewSnippetLength is the length of the description attached to a post view.
const ViewSnippetLength = 160

var (
	ErrInvalid   = errors.New("invalid post")
	ErrForbidden = errors.New("not the author of this post")
)

// Indexer receives post changes for search. Failures are logged, not returned.
type Indexer interface {
	IndexPost(ctx context.Context, post *models.Post) error
	RemovePost(ctx context.Context, id string) error
}

// Filter selects and pages posts for List.
type Filter struct {
	Search   string
	Category string
	Tags     []string
	Page     int
	Limit    int
}

func (f Filter) normalized() Filter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 10
	}
	return f
}

func (f Filter) query() storage.PostQuery {
	return storage.PostQuery{
		Search:   strings.TrimSpace(f.Search),
		Category: f.Category,
		Tags:     f.Tags,
		Offset:   (f.Page - 1) * f.Limit,
		Limit:    f.Limit,
	}
}

type Service struct {
	store      storage.PostStore
	comments   storage.CommentStore
	indexer    Indexer
	compositor *compositor.Compositor
	renderer   *render.Renderer
	validate   *validator.Validate
	logger     arbor.ILogger
	now        func() time.Time
}

type Option func(*Service)

// WithComments makes Delete remove the post's comments too.
func WithComments(cs storage.CommentStore) Option {
	return func(s *Service) { s.comments = cs }
}

func WithIndexer(ix Indexer) Option {
	return func(s *Service) { s.indexer = ix }
}

func WithCompositor(c *compositor.Compositor) Option {
	return func(s *Service) { s.compositor = c }
}

func NewService(store storage.PostStore, renderer *render.Renderer, logger arbor.ILogger, opts ...Option) *Service {
	s := &Service{
		store:      store,
		compositor: compositor.Default,
		renderer:   renderer,
		validate:   validator.New(),
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create stores a new post written by the given user. An empty author
// falls back to the username.
func (s *Service) Create(ctx context.Context, input models.PostInput, userID, username string) (*models.Post, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	slug := Slugify(input.Title)
	if slug == "" {
		return nil, fmt.Errorf("%w: title must contain letters or digits", ErrInvalid)
	}

	author := strings.TrimSpace(input.Author)
	if author == "" {
		author = username
	}

	now := s.now()
	post := &models.Post{
		ID:          utils.GetUUID(),
		Title:       strings.TrimSpace(input.Title),
		Slug:        slug,
		Author:      author,
		Content:     input.Content,
		CoverImage:  input.CoverImage,
		Category:    input.Category,
		Tags:        utils.NormalizeTags(input.Tags),
		CreatedBy:   userID,
		PublishedAt: now,
		UpdatedAt:   now,
	}
	if err := s.store.CreatePost(ctx, post); err != nil {
		return nil, err
	}

	s.logger.Info().Str("id", post.ID).Str("slug", post.Slug).Int("blocks", blocks.Count(post.Content)).Msg("Post created")
	s.index(ctx, post)
	return post, nil
}

// Update applies a partial update. Changing the title regenerates the slug.
func (s *Service) Update(ctx context.Context, id string, update models.PostUpdate, userID string) (*models.Post, error) {
	if err := s.validate.Struct(update); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	post, err := s.store.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canEdit(post, userID) {
		return nil, ErrForbidden
	}
	if update.Empty() {
		return post, nil
	}

	if update.Title != nil {
		slug := Slugify(*update.Title)
		if slug == "" {
			return nil, fmt.Errorf("%w: title must contain letters or digits", ErrInvalid)
		}
		post.Title = strings.TrimSpace(*update.Title)
		post.Slug = slug
	}
	if update.Author != nil {
		post.Author = strings.TrimSpace(*update.Author)
	}
	if update.Content != nil {
		post.Content = *update.Content
	}
	if update.CoverImage != nil {
		post.CoverImage = *update.CoverImage
	}
	if update.Category != nil {
		post.Category = *update.Category
	}
	if update.Tags != nil {
		post.Tags = utils.NormalizeTags(*update.Tags)
	}
	post.UpdatedAt = s.now()

	if err := s.store.UpdatePost(ctx, post); err != nil {
		return nil, err
	}

	s.logger.Info().Str("id", post.ID).Str("slug", post.Slug).Msg("Post updated")
	s.index(ctx, post)
	return post, nil
}

func (s *Service) Delete(ctx context.Context, id, userID string) error {
	post, err := s.store.GetPost(ctx, id)
	if err != nil {
		return err
	}
	if !canEdit(post, userID) {
		return ErrForbidden
	}
	if err := s.store.DeletePost(ctx, id); err != nil {
		return err
	}

	if s.comments != nil {
		if err := s.comments.DeletePostComments(ctx, id); err != nil {
			s.logger.Warn().Err(err).Str("id", id).Msg("Failed to delete comments of removed post")
		}
	}
	if s.indexer != nil {
		if err := s.indexer.RemovePost(ctx, id); err != nil {
			s.logger.Warn().Err(err).Str("id", id).Msg("Failed to remove post from search index")
		}
	}
	s.logger.Info().Str("id", id).Msg("Post deleted")
	return nil
}

// posts without an owner (seeded samples) are editable by any signed-in user
func canEdit(post *models.Post, userID string) bool {
	return post.CreatedBy == "" || post.CreatedBy == userID
}

func (s *Service) index(ctx context.Context, post *models.Post) {
	if s.indexer == nil {
		return
	}
	if err := s.indexer.IndexPost(ctx, post); err != nil {
		s.logger.Warn().Err(err).Str("id", post.ID).Msg("Failed to index post")
	}
}

func (s *Service) Get(ctx context.Context, id string) (*models.Post, error) {
	return s.store.GetPost(ctx, id)
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return s.store.GetPostBySlug(ctx, slug)
}

// List returns one page of posts, newest first, without their content.
func (s *Service) List(ctx context.Context, f Filter) (*models.PostList, error) {
	f = f.normalized()
	found, total, err := s.store.ListPosts(ctx, f.query())
	if err != nil {
		return nil, err
	}
	return &models.PostList{
		Posts: Summaries(found),
		Total: total,
		Page:  f.Page,
		Limit: f.Limit,
	}, nil
}

// Summaries strips content from posts, keeping a snippet and read time.
func Summaries(found []models.Post) []models.PostSummary {
	out := make([]models.PostSummary, 0, len(found))
	for _, p := range found {
		out = append(out, Summarize(p))
	}
	return out
}

func Summarize(p models.Post) models.PostSummary {
	summary := models.PostSummary{
		Post:     p,
		Snippet:  blocks.Snippet(p.Content, blocks.DefaultSnippetLength),
		ReadTime: blocks.ReadTime(p.Content),
	}
	summary.Content = ""
	return summary
}

// View prepares a post for display: its blocks, the composited segments
// and the rendered article.
func (s *Service) View(ctx context.Context, post *models.Post) (*models.PostView, error) {
	tags := blocks.Extract(post.Content)
	segments := s.compositor.Composite(post.Content, tags)

	html, err := s.renderer.Render(ctx, segments)
	if err != nil {
		return nil, err
	}

	if tags == nil {
		tags = []models.BlockTag{}
	}
	return &models.PostView{
		Post:     *post,
		Blocks:   tags,
		Segments: segments,
		HTML:     string(html),
		Snippet:  blocks.Snippet(post.Content, ViewSnippetLength),
		ReadTime: blocks.ReadTime(post.Content),
	}, nil
}

// RenderPage renders the post as a standalone HTML document.
func (s *Service) RenderPage(ctx context.Context, post *models.Post) (string, error) {
	view, err := s.View(ctx, post)
	if err != nil {
		return "", err
	}
	return render.Page(post.Title, view.Snippet, template.HTML(view.HTML))
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return s.store.Categories(ctx)
}

func (s *Service) Tags(ctx context.Context) ([]string, error) {
	return s.store.Tags(ctx)
}
