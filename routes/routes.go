package routes

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"blockpress/auth"
	"blockpress/comments"
	"blockpress/live"
	"blockpress/middleware"
	"blockpress/posts"
	"blockpress/products"
	"blockpress/ratelim"
	"blockpress/search"
)

// Handlers bundles everything the router serves.
type Handlers struct {
	Posts    *posts.Handler
	Comments *comments.Handler
	Auth     *auth.Handler
	Products *products.Handler
	Search   *search.Handler
	Hub      *live.Hub
}

func AddStaticRoutes(router *httprouter.Router, dir string) {
	if dir == "" {
		return
	}
	router.ServeFiles("/static/*filepath", http.Dir(dir))
}

func AddPostRoutes(router *httprouter.Router, h *posts.Handler, rateLimiter *ratelim.RateLimiter) {
	write := middleware.Chain(rateLimiter.Limit, middleware.Authenticate)

	router.GET("/api/posts", h.GetPosts)
	router.GET("/api/posts/:id", h.GetPost)
	router.GET("/api/posts/:id/render", h.RenderPost)
	router.GET("/api/posts-by-slug/:slug", h.GetPostBySlug)
	router.POST("/api/posts", write(h.CreatePost))
	router.PUT("/api/posts/:id", write(h.UpdatePost))
	router.DELETE("/api/posts/:id", write(h.DeletePost))

	router.GET("/api/categories", h.GetCategories)
	router.GET("/api/tags", h.GetTags)
}

func AddCommentsRoutes(router *httprouter.Router, h *comments.Handler, rateLimiter *ratelim.RateLimiter) {
	write := middleware.Chain(rateLimiter.Limit, middleware.Authenticate)

	router.GET("/api/posts/:id/comments", h.GetComments)
	router.POST("/api/posts/:id/comments", write(h.CreateComment))
	router.PUT("/api/posts/:id/comments/:commentid", write(h.UpdateComment))
	router.DELETE("/api/posts/:id/comments/:commentid", write(h.DeleteComment))
	router.POST("/api/posts/:id/comments/:commentid/like", write(h.LikeComment))
}

func AddLiveRoutes(router *httprouter.Router, hub *live.Hub) {
	router.GET("/api/posts/:id/live", live.WebSocketHandler(hub))
}

func AddAuthRoutes(router *httprouter.Router, h *auth.Handler, rateLimiter *ratelim.RateLimiter) {
	router.POST("/api/auth/register", rateLimiter.Limit(h.Register))
	router.POST("/api/auth/login", rateLimiter.Limit(h.Login))
}

func AddProductRoutes(router *httprouter.Router, h *products.Handler) {
	router.GET("/api/products", h.GetProducts)
	router.GET("/api/products/:sku", h.GetProduct)
}

func AddSearchRoutes(router *httprouter.Router, h *search.Handler) {
	router.GET("/api/search", h.Search)
}

// RoutesWrapper registers every API route on router.
func RoutesWrapper(router *httprouter.Router, h Handlers, rateLimiter *ratelim.RateLimiter) {
	AddPostRoutes(router, h.Posts, rateLimiter)
	AddCommentsRoutes(router, h.Comments, rateLimiter)
	AddLiveRoutes(router, h.Hub)
	AddAuthRoutes(router, h.Auth, rateLimiter)
	AddProductRoutes(router, h.Products)
	AddSearchRoutes(router, h.Search)
}
