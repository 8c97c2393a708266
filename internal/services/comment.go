package services

import (
	"context"
	"fmt"

	"github.com/feed-system/socialconnect/internal/models"
	"github.com/feed-system/socialconnect/pkg/queue"
)

type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,max=500"`
}

// AddComment stores a comment and notifies the post owner unless they wrote
// it themselves.
func (s *EngagementService) AddComment(ctx context.Context, me *Identity, postID string, req *CreateCommentRequest) (*models.Comment, error) {
	req.Content = sanitizeText(req.Content)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	post, err := s.existingPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	author, err := s.users.GetByID(ctx, me.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if author == nil {
		return nil, newError(ErrNotFound, "user not found")
	}

	comment := &models.Comment{
		PostID:  post.ID,
		UserID:  me.UserID,
		Content: req.Content,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	comment.User = author.Summary()

	if post.UserID != me.UserID {
		postRef := post.ID
		s.notifications.Notify(ctx, NotifyParams{
			TargetID:      post.UserID,
			ActorID:       me.UserID,
			Type:          models.NotificationComment,
			Message:       notificationMessage(models.NotificationComment, author.Username),
			RelatedPostID: &postRef,
		})
	}

	publishEvent(ctx, s.producer, s.logger, me.UserID.String(), queue.EventCommentCreated, queue.CommentEventData{
		CommentID: comment.ID.String(),
		UserID:    me.UserID.String(),
		PostID:    post.ID.String(),
	})

	s.logger.WithFields(map[string]interface{}{
		"comment_id": comment.ID,
		"post_id":    post.ID,
		"user_id":    me.UserID,
	}).Info("Comment created successfully")

	return comment, nil
}

// ListComments returns a post's comments oldest first.
func (s *EngagementService) ListComments(ctx context.Context, postID string) ([]*models.Comment, error) {
	post, err := s.existingPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByPost(ctx, post.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}
	if comments == nil {
		comments = []*models.Comment{}
	}
	return comments, nil
}
