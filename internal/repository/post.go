package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/feed-system/socialconnect/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

// Create inserts the post and increments the author's posts_count.
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("User").Create(post).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).
			Where("id = ?", post.UserID).
			UpdateColumn("posts_count", increment("posts_count")).Error
	})
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

func (r *PostRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).
		Preload("User").
		First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return &post, nil
}

// Update writes the editable columns of post.
func (r *PostRepository) Update(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", post.ID).
		Updates(map[string]interface{}{
			"content":   post.Content,
			"image_url": post.ImageURL,
			"category":  post.Category,
		}).Error; err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	return nil
}

// DeleteCascade removes the post together with its comments, likes and the
// notifications that reference it, then decrements the author's posts_count.
// It reports whether the post row existed.
func (r *PostRepository) DeleteCascade(ctx context.Context, post *models.Post) (bool, error) {
	deleted := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("related_post_id = ?", post.ID).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", post.ID).Delete(&models.Post{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		deleted = true
		return tx.Model(&models.User{}).
			Where("id = ?", post.UserID).
			UpdateColumn("posts_count", decrement("posts_count")).Error
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete post: %w", err)
	}
	return deleted, nil
}

// ListGlobal returns all posts newest first.
func (r *PostRepository) ListGlobal(ctx context.Context, offset, limit int) ([]*models.Post, error) {
	var posts []*models.Post
	if err := r.db.WithContext(ctx).
		Preload("User").
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

// ListPersonalized returns posts written by userID or by anyone userID follows.
func (r *PostRepository) ListPersonalized(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*models.Post, error) {
	var posts []*models.Post
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ? OR user_id IN (SELECT following_id FROM follows WHERE follower_id = ?)", userID, userID).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to list personalized posts: %w", err)
	}
	return posts, nil
}

func (r *PostRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return count, nil
}
