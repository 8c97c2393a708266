package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/feed-system/socialconnect/internal/models"
	"github.com/feed-system/socialconnect/internal/repository"
	"github.com/feed-system/socialconnect/pkg/logger"
	"github.com/feed-system/socialconnect/pkg/queue"
	"github.com/google/uuid"
)

const (
	searchLimit   = 20
	discoverLimit = 12
)

type UserService struct {
	users    UserStore
	follows  FollowStore
	posts    PostStore
	producer EventPublisher
	logger   *logger.Logger
}

func NewUserService(users UserStore, follows FollowStore, posts PostStore, producer EventPublisher, logger *logger.Logger) *UserService {
	return &UserService{
		users:    users,
		follows:  follows,
		posts:    posts,
		producer: producer,
		logger:   logger,
	}
}

// Profile is a user as seen by a particular viewer.
type Profile struct {
	*models.User
	IsFollowing bool `json:"is_following"`
}

type UpdateProfileRequest struct {
	Username  *string `json:"username" validate:"omitempty,min=3,max=20,username"`
	Bio       *string `json:"bio" validate:"omitempty,max=160"`
	Website   *string `json:"website" validate:"omitempty,abs_url"`
	Location  *string `json:"location" validate:"omitempty,max=50"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,abs_url"`
	IsPrivate *bool   `json:"is_private"`
}

func (s *UserService) Me(ctx context.Context, me uuid.UUID) (*models.User, error) {
	user, err := s.load(ctx, me)
	if err != nil {
		return nil, err
	}
	if err := s.fillCounts(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetProfile returns another user's public profile. Counters are recomputed
// from the follow and post tables and the email address is withheld.
func (s *UserService) GetProfile(ctx context.Context, viewer *uuid.UUID, userID string) (*Profile, error) {
	id, err := parseID(userID, "user")
	if err != nil {
		return nil, err
	}
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.fillCounts(ctx, user); err != nil {
		return nil, err
	}

	profile := &Profile{User: user}
	if viewer == nil || *viewer != user.ID {
		user.Email = ""
	}
	if viewer != nil && *viewer != user.ID {
		profile.IsFollowing, err = s.follows.Exists(ctx, *viewer, user.ID)
		if err != nil {
			return nil, err
		}
	}
	return profile, nil
}

func (s *UserService) UpdateMe(ctx context.Context, me uuid.UUID, req *UpdateProfileRequest) (*models.User, error) {
	if req.Username != nil {
		trimmed := strings.TrimSpace(*req.Username)
		if trimmed == "" {
			return nil, invalidField("username", "is required")
		}
		req.Username = &trimmed
	}
	req.Bio = sanitizeOptional(req.Bio)
	req.Location = sanitizeOptional(req.Location)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	user, err := s.load(ctx, me)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Username != nil && *req.Username != user.Username {
		existing, err := s.users.GetByUsername(ctx, *req.Username)
		if err != nil {
			return nil, fmt.Errorf("failed to check username: %w", err)
		}
		if existing != nil {
			return nil, newError(ErrConflict, "username already taken")
		}
		updates["username"] = *req.Username
	}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}
	if req.Website != nil {
		updates["website"] = strings.TrimSpace(*req.Website)
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.AvatarURL != nil {
		updates["avatar_url"] = strings.TrimSpace(*req.AvatarURL)
	}
	if req.IsPrivate != nil {
		updates["is_private"] = *req.IsPrivate
	}

	if err := s.users.Update(ctx, me, updates); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, newError(ErrConflict, "username already taken")
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	publishEvent(ctx, s.producer, s.logger, me.String(), queue.EventUserUpdated, queue.UserEventData{
		UserID: me.String(),
	})

	s.logger.WithField("user_id", me).Info("User updated successfully")
	return s.Me(ctx, me)
}

// Search matches usernames and bios. An empty query yields no results rather
// than the whole user table.
func (s *UserService) Search(ctx context.Context, viewer *uuid.UUID, query string) ([]*Profile, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*Profile{}, nil
	}
	users, err := s.users.Search(ctx, query, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	return s.annotate(ctx, viewer, users)
}

// Discover suggests accounts the caller does not follow yet.
func (s *UserService) Discover(ctx context.Context, me uuid.UUID) ([]*Profile, error) {
	users, err := s.users.Discover(ctx, me, discoverLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to discover users: %w", err)
	}
	return s.annotate(ctx, &me, users)
}

func (s *UserService) annotate(ctx context.Context, viewer *uuid.UUID, users []*models.User) ([]*Profile, error) {
	following := map[uuid.UUID]bool{}
	if viewer != nil && len(users) > 0 {
		ids := make([]uuid.UUID, 0, len(users))
		for _, u := range users {
			ids = append(ids, u.ID)
		}
		var err error
		following, err = s.follows.FollowingAmong(ctx, *viewer, ids)
		if err != nil {
			return nil, err
		}
	}

	profiles := make([]*Profile, 0, len(users))
	for _, u := range users {
		if viewer == nil || *viewer != u.ID {
			u.Email = ""
		}
		profiles = append(profiles, &Profile{User: u, IsFollowing: following[u.ID]})
	}
	return profiles, nil
}

func (s *UserService) load(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, newError(ErrNotFound, "user not found")
	}
	return user, nil
}

func (s *UserService) fillCounts(ctx context.Context, user *models.User) error {
	var err error
	if user.FollowersCount, err = s.follows.CountFollowers(ctx, user.ID); err != nil {
		return err
	}
	if user.FollowingCount, err = s.follows.CountFollowing(ctx, user.ID); err != nil {
		return err
	}
	if user.PostsCount, err = s.posts.CountByUser(ctx, user.ID); err != nil {
		return err
	}
	return nil
}
