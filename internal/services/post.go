package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/feed-system/socialconnect/internal/models"
	"github.com/feed-system/socialconnect/pkg/logger"
	"github.com/feed-system/socialconnect/pkg/queue"
	"github.com/google/uuid"
)

type PostService struct {
	users    UserStore
	posts    PostStore
	likes    LikeStore
	producer EventPublisher
	logger   *logger.Logger
}

func NewPostService(users UserStore, posts PostStore, likes LikeStore, producer EventPublisher, logger *logger.Logger) *PostService {
	return &PostService{
		users:    users,
		posts:    posts,
		likes:    likes,
		producer: producer,
		logger:   logger,
	}
}

type CreatePostRequest struct {
	Content  string              `json:"content" validate:"required,max=280"`
	ImageURL *string             `json:"image_url" validate:"omitempty,abs_url"`
	Category models.PostCategory `json:"category" validate:"omitempty,oneof=general announcement question"`
}

type UpdatePostRequest struct {
	Content  *string              `json:"content" validate:"omitempty,max=280"`
	ImageURL *string              `json:"image_url" validate:"omitempty,abs_url"`
	Category *models.PostCategory `json:"category" validate:"omitempty,oneof=general announcement question"`
}

func (s *PostService) Create(ctx context.Context, me *Identity, req *CreatePostRequest) (*models.Post, error) {
	req.Content = sanitizeText(req.Content)
	req.ImageURL = normalizeImageURL(req.ImageURL)
	if req.Category == "" {
		req.Category = models.CategoryGeneral
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	author, err := s.users.GetByID(ctx, me.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if author == nil {
		return nil, newError(ErrNotFound, "user not found")
	}

	post := &models.Post{
		UserID:   me.UserID,
		Content:  req.Content,
		ImageURL: req.ImageURL,
		Category: req.Category,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	post.User = author.Summary()

	publishEvent(ctx, s.producer, s.logger, me.UserID.String(), queue.EventPostCreated, queue.PostEventData{
		PostID: post.ID.String(),
		UserID: me.UserID.String(),
	})

	s.logger.WithFields(map[string]interface{}{
		"post_id": post.ID,
		"user_id": me.UserID,
	}).Info("Post created successfully")

	return post, nil
}

func (s *PostService) Get(ctx context.Context, postID string) (*models.Post, error) {
	id, err := parseID(postID, "post")
	if err != nil {
		return nil, err
	}
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	if post == nil {
		return nil, newError(ErrNotFound, "post not found")
	}
	return post, nil
}

// View is Get for API readers: a known viewer also gets is_liked.
func (s *PostService) View(ctx context.Context, viewer *uuid.UUID, postID string) (*models.Post, error) {
	post, err := s.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	if viewer != nil {
		if err := markLiked(ctx, s.likes, *viewer, []*models.Post{post}); err != nil {
			return nil, err
		}
	}
	return post, nil
}

// Update edits a post. Only the author may edit, administrators included.
func (s *PostService) Update(ctx context.Context, me *Identity, postID string, req *UpdatePostRequest) (*models.Post, error) {
	if req.Content != nil {
		clean := sanitizeText(*req.Content)
		if clean == "" {
			return nil, invalidField("content", "is required")
		}
		req.Content = &clean
	}
	if req.ImageURL != nil {
		trimmed := strings.TrimSpace(*req.ImageURL)
		req.ImageURL = &trimmed
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	post, err := s.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.UserID != me.UserID {
		return nil, newError(ErrForbidden, "you can only edit your own posts")
	}

	if req.Content != nil {
		post.Content = *req.Content
	}
	if req.ImageURL != nil {
		post.ImageURL = normalizeImageURL(req.ImageURL)
	}
	if req.Category != nil {
		post.Category = *req.Category
	}

	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}

	publishEvent(ctx, s.producer, s.logger, me.UserID.String(), queue.EventPostUpdated, queue.PostEventData{
		PostID: post.ID.String(),
		UserID: me.UserID.String(),
	})

	s.logger.WithField("post_id", post.ID).Info("Post updated successfully")
	return s.Get(ctx, postID)
}

// Delete removes a post with its comments, likes and notifications. Authors
// may delete their own posts, administrators any post.
func (s *PostService) Delete(ctx context.Context, me *Identity, postID string) error {
	post, err := s.Get(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != me.UserID && !me.IsAdmin {
		return newError(ErrForbidden, "you can only delete your own posts")
	}

	deleted, err := s.posts.DeleteCascade(ctx, post)
	if err != nil {
		return err
	}
	if !deleted {
		return newError(ErrNotFound, "post not found")
	}

	publishEvent(ctx, s.producer, s.logger, post.UserID.String(), queue.EventPostDeleted, queue.PostEventData{
		PostID: post.ID.String(),
		UserID: post.UserID.String(),
	})

	s.logger.WithFields(map[string]interface{}{
		"post_id":    post.ID,
		"deleted_by": me.UserID,
	}).Info("Post deleted successfully")

	return nil
}

// normalizeImageURL maps a blank image URL to no image.
func normalizeImageURL(raw *string) *string {
	if raw == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*raw)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
