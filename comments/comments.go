package comments

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/ternarybob/arbor"

	"blockpress/live"
	"blockpress/models"
	"blockpress/storage"
	"blockpress/utils"
)

// Publisher receives comment events for live clients.
type Publisher interface {
	Publish(ev live.Event)
}

type Handler struct {
	comments storage.CommentStore
	posts    storage.PostStore
	events   Publisher
	logger   arbor.ILogger
}

func NewHandler(comments storage.CommentStore, posts storage.PostStore, events Publisher, logger arbor.ILogger) *Handler {
	return &Handler{comments: comments, posts: posts, events: events, logger: logger}
}

func (h *Handler) publish(ev live.Event) {
	if h.events != nil {
		h.events.Publish(ev)
	}
}

func (h *Handler) fail(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		utils.RespondWithError(w, http.StatusNotFound, "Comment not found")
	case errors.Is(err, utils.ErrInvalidBody):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg(msg)
		utils.RespondWithError(w, http.StatusInternalServerError, msg)
	}
}

func (h *Handler) requirePost(ctx context.Context, w http.ResponseWriter, postID string) bool {
	if _, err := h.posts.GetPost(ctx, postID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Post not found")
			return false
		}
		h.fail(w, err, "Failed to fetch post")
		return false
	}
	return true
}

// loadOwned fetches a comment of the post and checks the caller wrote it.
func (h *Handler) loadOwned(ctx context.Context, w http.ResponseWriter, r *http.Request, ps httprouter.Params) (*models.Comment, bool) {
	existing, err := h.comments.GetComment(ctx, ps.ByName("commentid"))
	if err != nil || existing.PostID != ps.ByName("id") {
		if err == nil {
			err = storage.ErrNotFound
		}
		h.fail(w, err, "Failed to fetch comment")
		return nil, false
	}
	if existing.CreatedBy != utils.GetUserIDFromRequest(r) {
		utils.RespondWithError(w, http.StatusForbidden, "Forbidden")
		return nil, false
	}
	return existing, true
}

// GetComments returns paginated and sorted comment threads for a post
func (h *Handler) GetComments(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	postID := ps.ByName("id")
	if !h.requirePost(ctx, w, postID) {
		return
	}

	opts := utils.ParseQueryOptions(r)
	switch opts.Sort {
	case storage.SortOldest, storage.SortLikes:
	default:
		opts.Sort = storage.SortNewest
	}

	all, err := h.comments.ListComments(ctx, postID, opts.Sort)
	if err != nil {
		h.fail(w, err, "Failed to fetch comments")
		return
	}
	threads := Threads(all)

	utils.RespondWithJSON(w, http.StatusOK, models.CommentPage{
		Comments: storage.Page(threads, opts.Offset(), opts.Limit),
		Total:    len(threads),
		Page:     opts.Page,
		Limit:    opts.Limit,
	})
}

// CreateComment adds a comment or a reply to a top-level comment
func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var body models.CommentInput
	if err := utils.DecodeAndValidate(w, r, &body); err != nil {
		h.fail(w, err, "Invalid comment")
		return
	}
	if strings.TrimSpace(body.Content) == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Comment cannot be empty")
		return
	}

	postID := ps.ByName("id")
	if !h.requirePost(ctx, w, postID) {
		return
	}

	if body.ParentID != "" {
		parent, err := h.comments.GetComment(ctx, body.ParentID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				utils.RespondWithError(w, http.StatusBadRequest, "Parent comment not found")
				return
			}
			h.fail(w, err, "Failed to fetch parent comment")
			return
		}
		if parent.PostID != postID || parent.ParentID != "" {
			utils.RespondWithError(w, http.StatusBadRequest, "Replies must target a top-level comment of the same post")
			return
		}
	}

	now := time.Now().UTC()
	comment := models.Comment{
		ID:        utils.GetUUID(),
		PostID:    postID,
		ParentID:  body.ParentID,
		Author:    utils.GetUsernameFromRequest(r),
		CreatedBy: utils.GetUserIDFromRequest(r),
		Content:   strings.TrimSpace(body.Content),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.comments.CreateComment(ctx, &comment); err != nil {
		h.fail(w, err, "Failed to save comment")
		return
	}

	h.publish(live.Event{Action: live.ActionCreated, PostID: postID, Comment: &comment})
	utils.RespondWithJSON(w, http.StatusCreated, comment)
}

// UpdateComment edits a comment
func (h *Handler) UpdateComment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var body models.CommentInput
	if err := utils.DecodeAndValidate(w, r, &body); err != nil {
		h.fail(w, err, "Invalid comment")
		return
	}
	if strings.TrimSpace(body.Content) == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Comment cannot be empty")
		return
	}

	existing, ok := h.loadOwned(ctx, w, r, ps)
	if !ok {
		return
	}

	existing.Content = strings.TrimSpace(body.Content)
	existing.UpdatedAt = time.Now().UTC()
	if err := h.comments.UpdateComment(ctx, existing); err != nil {
		h.fail(w, err, "Failed to update comment")
		return
	}

	h.publish(live.Event{Action: live.ActionUpdated, PostID: existing.PostID, Comment: existing})
	utils.RespondWithJSON(w, http.StatusOK, existing)
}

// DeleteComment removes a comment and its replies
func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	existing, ok := h.loadOwned(ctx, w, r, ps)
	if !ok {
		return
	}

	removed, err := h.comments.DeleteComment(ctx, existing.ID)
	if err != nil {
		h.fail(w, err, "Failed to delete comment")
		return
	}

	h.publish(live.Event{Action: live.ActionDeleted, PostID: existing.PostID, CommentID: existing.ID, Removed: removed})
	w.WriteHeader(http.StatusNoContent)
}

// LikeComment adds one like
func (h *Handler) LikeComment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	existing, err := h.comments.GetComment(ctx, ps.ByName("commentid"))
	if err != nil || existing.PostID != ps.ByName("id") {
		if err == nil {
			err = storage.ErrNotFound
		}
		h.fail(w, err, "Failed to fetch comment")
		return
	}

	likes, err := h.comments.LikeComment(ctx, existing.ID)
	if err != nil {
		h.fail(w, err, "Failed to like comment")
		return
	}
	existing.Likes = likes

	h.publish(live.Event{Action: live.ActionLiked, PostID: existing.PostID, Comment: existing})
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"id": existing.ID, "likes": likes})
}
