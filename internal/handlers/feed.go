package handlers

import (
	"net/http"

	"github.com/feed-system/socialconnect/internal/middleware"
	"github.com/feed-system/socialconnect/internal/services"
	"github.com/feed-system/socialconnect/pkg/logger"
	"github.com/gin-gonic/gin"
)

type FeedHandler struct {
	feedService       *services.FeedService
	postService       *services.PostService
	engagementService *services.EngagementService
	logger            *logger.Logger
}

func NewFeedHandler(feedService *services.FeedService, postService *services.PostService, engagementService *services.EngagementService, logger *logger.Logger) *FeedHandler {
	return &FeedHandler{
		feedService:       feedService,
		postService:       postService,
		engagementService: engagementService,
		logger:            logger,
	}
}

// ListPosts serves the global feed.
func (h *FeedHandler) ListPosts(c *gin.Context) {
	feed, err := h.feedService.Global(c.Request.Context(), viewerID(c), pageParam(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, feed)
}

// GetFeed serves the caller's own posts plus posts of everyone they follow.
func (h *FeedHandler) GetFeed(c *gin.Context) {
	feed, err := h.feedService.Personalized(c.Request.Context(), middleware.GetUserID(c), pageParam(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, feed)
}

func (h *FeedHandler) CreatePost(c *gin.Context) {
	var req services.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	post, err := h.postService.Create(c.Request.Context(), middleware.GetIdentity(c), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Post created successfully",
		"post":    post,
	})
}

func (h *FeedHandler) GetPost(c *gin.Context) {
	post, err := h.postService.View(c.Request.Context(), viewerID(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"post": post})
}

func (h *FeedHandler) UpdatePost(c *gin.Context) {
	var req services.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	post, err := h.postService.Update(c.Request.Context(), middleware.GetIdentity(c), c.Param("id"), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Post updated successfully",
		"post":    post,
	})
}

func (h *FeedHandler) DeletePost(c *gin.Context) {
	if err := h.postService.Delete(c.Request.Context(), middleware.GetIdentity(c), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}

func (h *FeedHandler) LikePost(c *gin.Context) {
	post, err := h.engagementService.Like(c.Request.Context(), middleware.GetIdentity(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Post liked successfully",
		"like_count": post.LikeCount,
	})
}

func (h *FeedHandler) UnlikePost(c *gin.Context) {
	post, err := h.engagementService.Unlike(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Post unliked successfully",
		"like_count": post.LikeCount,
	})
}

func (h *FeedHandler) CreateComment(c *gin.Context) {
	var req services.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	comment, err := h.engagementService.AddComment(c.Request.Context(), middleware.GetIdentity(c), c.Param("id"), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Comment created successfully",
		"comment": comment,
	})
}

func (h *FeedHandler) GetPostComments(c *gin.Context) {
	comments, err := h.engagementService.ListComments(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments})
}
