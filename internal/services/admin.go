package services

import (
	"context"
	"fmt"

	"github.com/feed-system/socialconnect/internal/models"
	"github.com/feed-system/socialconnect/internal/reporting"
	"github.com/feed-system/socialconnect/pkg/logger"
	"github.com/feed-system/socialconnect/pkg/queue"
)

const adminPageSize = 50

// StatsSource is implemented by reporting.StatsReader.
type StatsSource interface {
	Stats(ctx context.Context) (*reporting.Stats, error)
}

// AdminService backs the moderation endpoints. Callers are expected to have
// passed the admin gate already.
type AdminService struct {
	stats    StatsSource
	users    UserStore
	posts    PostStore
	postSvc  *PostService
	profiles *UserService
	producer EventPublisher
	logger   *logger.Logger
}

func NewAdminService(stats StatsSource, users UserStore, posts PostStore, postSvc *PostService, profiles *UserService, producer EventPublisher, logger *logger.Logger) *AdminService {
	return &AdminService{
		stats:    stats,
		users:    users,
		posts:    posts,
		postSvc:  postSvc,
		profiles: profiles,
		producer: producer,
		logger:   logger,
	}
}

type UserPage struct {
	Users   []*models.User `json:"users"`
	Page    int            `json:"page"`
	HasMore bool           `json:"has_more"`
}

func (s *AdminService) Stats(ctx context.Context) (*reporting.Stats, error) {
	stats, err := s.stats.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}
	return stats, nil
}

func (s *AdminService) ListUsers(ctx context.Context, page int) (*UserPage, error) {
	if page < 1 {
		page = 1
	}
	offset, limit := pageBounds(page, adminPageSize)
	users, err := s.users.List(ctx, offset, limit+1)
	if err != nil {
		return nil, err
	}
	hasMore := len(users) > limit
	if hasMore {
		users = users[:limit]
	}
	if users == nil {
		users = []*models.User{}
	}
	return &UserPage{Users: users, Page: page, HasMore: hasMore}, nil
}

func (s *AdminService) GetUser(ctx context.Context, userID string) (*Profile, error) {
	profile, err := s.profiles.GetProfile(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	// administrators see contact details
	full, err := s.users.GetByID(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	if full != nil {
		profile.Email = full.Email
	}
	return profile, nil
}

// ToggleActive flips a user's is_active flag. Deactivated users can no longer
// authenticate. Administrators cannot deactivate themselves.
func (s *AdminService) ToggleActive(ctx context.Context, admin *Identity, userID string) (*models.User, error) {
	id, err := parseID(userID, "user")
	if err != nil {
		return nil, err
	}
	if id == admin.UserID {
		return nil, newError(ErrInvalidOperation, "you cannot deactivate your own account")
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, newError(ErrNotFound, "user not found")
	}

	active := !user.IsActive
	if err := s.users.Update(ctx, id, map[string]interface{}{"is_active": active}); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	user.IsActive = active

	publishEvent(ctx, s.producer, s.logger, id.String(), queue.EventUserUpdated, queue.UserEventData{
		UserID: id.String(),
	})

	action := "deactivated"
	if active {
		action = "activated"
	}
	s.logger.WithFields(map[string]interface{}{
		"user_id":  id,
		"admin_id": admin.UserID,
	}).Info("User " + action + " successfully")

	return user, nil
}

func (s *AdminService) ListPosts(ctx context.Context, page int) (*FeedPage, error) {
	if page < 1 {
		page = 1
	}
	offset, limit := pageBounds(page, adminPageSize)
	posts, err := s.posts.ListGlobal(ctx, offset, limit+1)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return newFeedPage(posts, page, limit), nil
}

func (s *AdminService) DeletePost(ctx context.Context, admin *Identity, postID string) error {
	return s.postSvc.Delete(ctx, admin, postID)
}
