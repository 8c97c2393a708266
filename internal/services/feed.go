package services

import (
	"context"
	"fmt"

	"github.com/feed-system/socialconnect/internal/config"
	"github.com/feed-system/socialconnect/internal/models"
	"github.com/feed-system/socialconnect/pkg/cache"
	"github.com/feed-system/socialconnect/pkg/logger"
	"github.com/google/uuid"
)

const (
	globalFeedKeyPattern = "feed:global:*"
	// globalFeedGenKey sits outside globalFeedKeyPattern so invalidation
	// never resets it.
	globalFeedGenKey = "feed:global-gen"
)

// FeedService serves the global and personalized post listings. Global pages
// are shared by every viewer and cached in redis until the next post or
// engagement event invalidates them.
type FeedService struct {
	posts  PostStore
	likes  LikeStore
	cache  FeedCache
	config *config.FeedConfig
	logger *logger.Logger
}

func NewFeedService(posts PostStore, likes LikeStore, cache FeedCache, config *config.FeedConfig, logger *logger.Logger) *FeedService {
	return &FeedService{
		posts:  posts,
		likes:  likes,
		cache:  cache,
		config: config,
		logger: logger,
	}
}

type FeedPage struct {
	Posts   []*models.Post `json:"posts"`
	Page    int            `json:"page"`
	Limit   int            `json:"limit"`
	HasMore bool           `json:"has_more"`
}

// Global lists every post newest first. viewer is nil for anonymous callers;
// otherwise each post carries the viewer's is_liked flag.
func (s *FeedService) Global(ctx context.Context, viewer *uuid.UUID, page int) (*FeedPage, error) {
	if page < 1 {
		page = 1
	}

	// Pages are keyed by the current generation. A fill that raced with an
	// invalidation lands under the old generation and is never read again.
	gen := s.generation(ctx)
	key := globalFeedKey(gen, page)

	var result *FeedPage
	var cached FeedPage
	err := s.cache.GetJSON(ctx, key, &cached)
	switch {
	case err == nil:
		result = &cached
	default:
		if !cache.IsMiss(err) {
			s.logger.WithError(err).WithField("key", key).Warn("Failed to read feed cache")
		}
		offset, limit := pageBounds(page, s.config.PageSize)
		posts, err := s.posts.ListGlobal(ctx, offset, limit+1)
		if err != nil {
			return nil, fmt.Errorf("failed to get global feed: %w", err)
		}
		result = newFeedPage(posts, page, limit)

		if err := s.cache.SetJSON(ctx, key, result, s.config.CacheTTL); err != nil {
			s.logger.WithError(err).WithField("key", key).Warn("Failed to cache feed page")
		}
	}

	if viewer != nil {
		if err := markLiked(ctx, s.likes, *viewer, result.Posts); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// Personalized lists posts by the caller and by everyone the caller follows.
func (s *FeedService) Personalized(ctx context.Context, me uuid.UUID, page int) (*FeedPage, error) {
	if page < 1 {
		page = 1
	}
	offset, limit := pageBounds(page, s.config.PageSize)
	posts, err := s.posts.ListPersonalized(ctx, me, offset, limit+1)
	if err != nil {
		return nil, fmt.Errorf("failed to get personalized feed: %w", err)
	}
	result := newFeedPage(posts, page, limit)
	if err := markLiked(ctx, s.likes, me, result.Posts); err != nil {
		return nil, err
	}
	return result, nil
}

// Invalidate moves readers to a new generation and drops every cached page.
func (s *FeedService) Invalidate(ctx context.Context) error {
	if _, err := s.cache.Incr(ctx, globalFeedGenKey); err != nil {
		return fmt.Errorf("failed to bump feed generation: %w", err)
	}
	if err := s.cache.DeletePattern(ctx, globalFeedKeyPattern); err != nil {
		return fmt.Errorf("failed to invalidate feed cache: %w", err)
	}
	return nil
}

// generation is 0 until the first invalidation. Read failures fall back to 0
// and are only logged; the TTL still bounds staleness.
func (s *FeedService) generation(ctx context.Context) int64 {
	var gen int64
	if err := s.cache.GetJSON(ctx, globalFeedGenKey, &gen); err != nil && !cache.IsMiss(err) {
		s.logger.WithError(err).Warn("Failed to read feed generation")
	}
	return gen
}

func globalFeedKey(gen int64, page int) string {
	return fmt.Sprintf("feed:global:%d:%d", gen, page)
}

// newFeedPage expects up to limit+1 rows; the extra row only signals that a
// further page exists and is never returned.
func newFeedPage(posts []*models.Post, page, limit int) *FeedPage {
	hasMore := len(posts) > limit
	if hasMore {
		posts = posts[:limit]
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	return &FeedPage{Posts: posts, Page: page, Limit: limit, HasMore: hasMore}
}

// markLiked sets IsLiked on the posts viewer has liked.
func markLiked(ctx context.Context, likes LikeStore, viewer uuid.UUID, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	liked, err := likes.LikedAmong(ctx, viewer, ids)
	if err != nil {
		return fmt.Errorf("failed to load like state: %w", err)
	}
	for _, p := range posts {
		p.IsLiked = liked[p.ID]
	}
	return nil
}
