package handlers

import (
	"net/http"

	"github.com/feed-system/socialconnect/internal/middleware"
	"github.com/feed-system/socialconnect/internal/services"
	"github.com/feed-system/socialconnect/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UserHandler struct {
	userService  *services.UserService
	graphService *services.SocialGraphService
	logger       *logger.Logger
}

func NewUserHandler(userService *services.UserService, graphService *services.SocialGraphService, logger *logger.Logger) *UserHandler {
	return &UserHandler{
		userService:  userService,
		graphService: graphService,
		logger:       logger,
	}
}

func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.userService.Me(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req services.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.userService.UpdateMe(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"user":    user,
	})
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	profile, err := h.userService.GetProfile(c.Request.Context(), viewerID(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": profile})
}

func (h *UserHandler) Search(c *gin.Context) {
	query := c.Query("q")
	users, err := h.userService.Search(c.Request.Context(), viewerID(c), query)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"query": query,
	})
}

func (h *UserHandler) Discover(c *gin.Context) {
	users, err := h.userService.Discover(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *UserHandler) Follow(c *gin.Context) {
	if err := h.graphService.Follow(c.Request.Context(), middleware.GetIdentity(c), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Followed successfully"})
}

func (h *UserHandler) Unfollow(c *gin.Context) {
	if err := h.graphService.Unfollow(c.Request.Context(), middleware.GetUserID(c), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Unfollowed successfully"})
}

func (h *UserHandler) GetFollowers(c *gin.Context) {
	page := pageParam(c)
	followers, err := h.graphService.ListFollowers(c.Request.Context(), c.Param("id"), page)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"followers": followers,
		"page":      page,
	})
}

func (h *UserHandler) GetFollowing(c *gin.Context) {
	page := pageParam(c)
	following, err := h.graphService.ListFollowing(c.Request.Context(), c.Param("id"), page)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"following": following,
		"page":      page,
	})
}

// viewerID is nil for anonymous callers on optionally authenticated routes.
func viewerID(c *gin.Context) *uuid.UUID {
	identity := middleware.GetIdentity(c)
	if identity == nil {
		return nil
	}
	id := identity.UserID
	return &id
}
