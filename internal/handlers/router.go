package handlers

import (
	"net/http"
	"time"

	"github.com/feed-system/socialconnect/internal/middleware"
	"github.com/feed-system/socialconnect/pkg/logger"
	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	Resolver      middleware.Resolver
	Logger        *logger.Logger
	Auth          *AuthHandler
	Users         *UserHandler
	Feed          *FeedHandler
	Notifications *NotificationHandler
	Admin         *AdminHandler
}

// NewRouter mounts every route under /api. Read-only listings accept an
// optional bearer token; mutations and per-caller views require one.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(cfg.Logger))
	router.Use(middleware.CORS())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", cfg.Auth.Register)
		auth.POST("/register-admin", cfg.Auth.RegisterAdmin)
		auth.POST("/login", cfg.Auth.Login)
		auth.POST("/logout", middleware.NewJWTAuth(cfg.Resolver), cfg.Auth.Logout)
	}

	public := api.Group("")
	public.Use(middleware.OptionalAuth(cfg.Resolver))
	{
		public.GET("/posts", cfg.Feed.ListPosts)
		public.GET("/posts/:id", cfg.Feed.GetPost)
		public.GET("/posts/:id/comments", cfg.Feed.GetPostComments)

		public.GET("/users/search", cfg.Users.Search)
		public.GET("/users/:id", cfg.Users.GetProfile)
		public.GET("/users/:id/followers", cfg.Users.GetFollowers)
		public.GET("/users/:id/following", cfg.Users.GetFollowing)
	}

	protected := api.Group("")
	protected.Use(middleware.NewJWTAuth(cfg.Resolver))
	{
		protected.GET("/feed", cfg.Feed.GetFeed)
		protected.POST("/posts", cfg.Feed.CreatePost)
		protected.PATCH("/posts/:id", cfg.Feed.UpdatePost)
		protected.DELETE("/posts/:id", cfg.Feed.DeletePost)
		protected.POST("/posts/:id/like", cfg.Feed.LikePost)
		protected.DELETE("/posts/:id/like", cfg.Feed.UnlikePost)
		protected.POST("/posts/:id/comments", cfg.Feed.CreateComment)

		protected.GET("/users/me", cfg.Users.Me)
		protected.PATCH("/users/me", cfg.Users.UpdateMe)
		protected.GET("/users/discover", cfg.Users.Discover)
		protected.POST("/users/:id/follow", cfg.Users.Follow)
		protected.DELETE("/users/:id/follow", cfg.Users.Unfollow)

		protected.GET("/notifications", cfg.Notifications.List)
		protected.PATCH("/notifications", cfg.Notifications.MarkAllRead)
		protected.GET("/notifications/unread-count", cfg.Notifications.UnreadCount)
		protected.POST("/notifications/:id/read", cfg.Notifications.MarkRead)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.NewJWTAuth(cfg.Resolver), middleware.RequireAdmin())
	{
		admin.GET("/stats", cfg.Admin.Stats)
		admin.GET("/users", cfg.Admin.ListUsers)
		admin.GET("/users/:id", cfg.Admin.GetUser)
		admin.POST("/users/:id/deactivate", cfg.Admin.ToggleActive)
		admin.GET("/posts", cfg.Admin.ListPosts)
		admin.DELETE("/posts/:id", cfg.Admin.DeletePost)
	}

	return router
}
