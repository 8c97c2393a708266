package repository

import (
	"context"
	"fmt"

	"github.com/feed-system/socialconnect/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LikeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) *LikeRepository {
	return &LikeRepository{db: db}
}

// Create inserts the like and increments posts.like_count atomically. A
// second like for the same pair fails with ErrDuplicate and leaves the
// counter untouched.
func (r *LikeRepository) Create(ctx context.Context, like *models.Like) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(like).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).
			Where("id = ?", like.PostID).
			UpdateColumn("like_count", increment("like_count")).Error
	})
	if err != nil {
		return translate(err, "create like")
	}
	return nil
}

// Delete removes the like if present and reports whether one was removed.
func (r *LikeRepository) Delete(ctx context.Context, userID, postID uuid.UUID) (bool, error) {
	removed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		removed = true
		return tx.Model(&models.Post{}).
			Where("id = ?", postID).
			UpdateColumn("like_count", decrement("like_count")).Error
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete like: %w", err)
	}
	return removed, nil
}

func (r *LikeRepository) Exists(ctx context.Context, userID, postID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check like status: %w", err)
	}
	return count > 0, nil
}

// LikedAmong reports which of postIDs userID has liked.
func (r *LikeRepository) LikedAmong(ctx context.Context, userID uuid.UUID, postIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	result := make(map[uuid.UUID]bool, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to check like status: %w", err)
	}
	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}
