package repository

import (
	"context"
	"fmt"

	"github.com/feed-system/socialconnect/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FollowRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) *FollowRepository {
	return &FollowRepository{db: db}
}

// Create inserts the edge and bumps both users' counters in one transaction.
func (r *FollowRepository) Create(ctx context.Context, follow *models.Follow) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Follower", "Following").Create(follow).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).
			Where("id = ?", follow.FollowingID).
			UpdateColumn("followers_count", increment("followers_count")).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).
			Where("id = ?", follow.FollowerID).
			UpdateColumn("following_count", increment("following_count")).Error
	})
	if err != nil {
		return translate(err, "create follow")
	}
	return nil
}

// Delete removes the edge if present and reports whether a row was removed.
func (r *FollowRepository) Delete(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	removed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("follower_id = ? AND following_id = ?", followerID, followingID).
			Delete(&models.Follow{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		removed = true
		if err := tx.Model(&models.User{}).
			Where("id = ?", followingID).
			UpdateColumn("followers_count", decrement("followers_count")).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).
			Where("id = ?", followerID).
			UpdateColumn("following_count", decrement("following_count")).Error
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete follow: %w", err)
	}
	return removed, nil
}

func (r *FollowRepository) Exists(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check follow status: %w", err)
	}
	return count > 0, nil
}

// ListFollowers returns edges pointing at userID, most recent first.
func (r *FollowRepository) ListFollowers(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*models.Follow, error) {
	var follows []*models.Follow
	if err := r.db.WithContext(ctx).
		Preload("Follower").
		Where("following_id = ?", userID).
		Order("created_at DESC, follower_id DESC").
		Offset(offset).
		Limit(limit).
		Find(&follows).Error; err != nil {
		return nil, fmt.Errorf("failed to get followers: %w", err)
	}
	return follows, nil
}

// ListFollowing returns edges leaving userID, most recent first.
func (r *FollowRepository) ListFollowing(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*models.Follow, error) {
	var follows []*models.Follow
	if err := r.db.WithContext(ctx).
		Preload("Following").
		Where("follower_id = ?", userID).
		Order("created_at DESC, following_id DESC").
		Offset(offset).
		Limit(limit).
		Find(&follows).Error; err != nil {
		return nil, fmt.Errorf("failed to get following: %w", err)
	}
	return follows, nil
}

// FollowingAmong reports which of candidates followerID already follows.
func (r *FollowRepository) FollowingAmong(ctx context.Context, followerID uuid.UUID, candidates []uuid.UUID) (map[uuid.UUID]bool, error) {
	result := make(map[uuid.UUID]bool, len(candidates))
	if len(candidates) == 0 {
		return result, nil
	}
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND following_id IN ?", followerID, candidates).
		Pluck("following_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to check follow status: %w", err)
	}
	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}

func (r *FollowRepository) CountFollowers(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("following_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count followers: %w", err)
	}
	return count, nil
}

func (r *FollowRepository) CountFollowing(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count following: %w", err)
	}
	return count, nil
}
