package handlers

import (
	"net/http"

	"github.com/feed-system/socialconnect/internal/middleware"
	"github.com/feed-system/socialconnect/internal/services"
	"github.com/feed-system/socialconnect/pkg/logger"
	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	adminService *services.AdminService
	logger       *logger.Logger
}

func NewAdminHandler(adminService *services.AdminService, logger *logger.Logger) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		logger:       logger,
	}
}

func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.adminService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, err := h.adminService.ListUsers(c.Request.Context(), pageParam(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *AdminHandler) GetUser(c *gin.Context) {
	user, err := h.adminService.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// ToggleActive flips the account state; the route keeps its historical
// /deactivate name.
func (h *AdminHandler) ToggleActive(c *gin.Context) {
	user, err := h.adminService.ToggleActive(c.Request.Context(), middleware.GetIdentity(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	message := "User deactivated successfully"
	if user.IsActive {
		message = "User activated successfully"
	}
	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"user":    user,
	})
}

func (h *AdminHandler) ListPosts(c *gin.Context) {
	page, err := h.adminService.ListPosts(c.Request.Context(), pageParam(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *AdminHandler) DeletePost(c *gin.Context) {
	if err := h.adminService.DeletePost(c.Request.Context(), middleware.GetIdentity(c), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}
