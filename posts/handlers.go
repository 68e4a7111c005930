package posts

import (
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/ternarybob/arbor"

	"blockpress/models"
	"blockpress/storage"
	"blockpress/utils"
)

type Handler struct {
	service *Service
	logger  arbor.ILogger
}

func NewHandler(service *Service, logger arbor.ILogger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) fail(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		utils.RespondWithError(w, http.StatusNotFound, "Post not found")
	case errors.Is(err, storage.ErrConflict):
		utils.RespondWithError(w, http.StatusConflict, "A post with this slug already exists")
	case errors.Is(err, ErrInvalid), errors.Is(err, utils.ErrInvalidBody):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrForbidden):
		utils.RespondWithError(w, http.StatusForbidden, "Forbidden")
	default:
		h.logger.Error().Err(err).Str("action", action).Msg("Post request failed")
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to "+action)
	}
}

// GetPosts handles GET /api/posts?search=&category=&tags=&page=&limit=
func (h *Handler) GetPosts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	opts := utils.ParseQueryOptions(r)
	list, err := h.service.List(r.Context(), Filter{
		Search:   opts.Search,
		Category: opts.Category,
		Tags:     opts.Tags,
		Page:     opts.Page,
		Limit:    opts.Limit,
	})
	if err != nil {
		h.fail(w, err, "fetch posts")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

func (h *Handler) respondView(w http.ResponseWriter, r *http.Request, post *models.Post) {
	view, err := h.service.View(r.Context(), post)
	if err != nil {
		h.fail(w, err, "render post")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, view)
}

// GetPost handles GET /api/posts/:id
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	post, err := h.service.Get(r.Context(), ps.ByName("id"))
	if err != nil {
		h.fail(w, err, "fetch post")
		return
	}
	h.respondView(w, r, post)
}

// GetPostBySlug handles GET /api/posts-by-slug/:slug
func (h *Handler) GetPostBySlug(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	post, err := h.service.GetBySlug(r.Context(), ps.ByName("slug"))
	if err != nil {
		h.fail(w, err, "fetch post")
		return
	}
	h.respondView(w, r, post)
}

// RenderPost handles GET /api/posts/:id/render and answers with an HTML page.
func (h *Handler) RenderPost(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	post, err := h.service.Get(r.Context(), ps.ByName("id"))
	if err != nil {
		h.fail(w, err, "fetch post")
		return
	}
	page, err := h.service.RenderPage(r.Context(), post)
	if err != nil {
		h.fail(w, err, "render post")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(page))
}

// CreatePost handles POST /api/posts
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input models.PostInput
	if err := utils.DecodeAndValidate(w, r, &input); err != nil {
		h.fail(w, err, "create post")
		return
	}

	post, err := h.service.Create(r.Context(), input, utils.GetUserIDFromRequest(r), utils.GetUsernameFromRequest(r))
	if err != nil {
		h.fail(w, err, "create post")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, post)
}

// UpdatePost handles PUT /api/posts/:id
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var update models.PostUpdate
	if err := utils.DecodeAndValidate(w, r, &update); err != nil {
		h.fail(w, err, "update post")
		return
	}
	if update.Empty() {
		utils.RespondWithError(w, http.StatusBadRequest, "No fields to update")
		return
	}

	post, err := h.service.Update(r.Context(), ps.ByName("id"), update, utils.GetUserIDFromRequest(r))
	if err != nil {
		h.fail(w, err, "update post")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, post)
}

// DeletePost handles DELETE /api/posts/:id
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if err := h.service.Delete(r.Context(), id, utils.GetUserIDFromRequest(r)); err != nil {
		h.fail(w, err, "delete post")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"message": "Post deleted successfully",
		"id":      id,
	})
}

// GetCategories handles GET /api/categories
func (h *Handler) GetCategories(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	cats, err := h.service.Categories(r.Context())
	if err != nil {
		h.fail(w, err, "fetch categories")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, cats)
}

// GetTags handles GET /api/tags
func (h *Handler) GetTags(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	tags, err := h.service.Tags(r.Context())
	if err != nil {
		h.fail(w, err, "fetch tags")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, tags)
}
