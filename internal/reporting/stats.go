package reporting

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

const recentLimit = 10

type Stats struct {
	TotalUsers    int64        `json:"total_users"`
	ActiveUsers   int64        `json:"active_users"`
	TotalPosts    int64        `json:"total_posts"`
	PostsToday    int64        `json:"posts_today"`
	TotalLikes    int64        `json:"total_likes"`
	TotalComments int64        `json:"total_comments"`
	TotalFollows  int64        `json:"total_follows"`
	RecentUsers   []RecentUser `json:"recent_users"`
	RecentPosts   []RecentPost `json:"recent_posts"`
}

type RecentUser struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type RecentPost struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// StatsReader computes the moderation dashboard figures with plain SQL,
// bypassing the ORM.
type StatsReader struct {
	db  Querier
	now func() time.Time
}

func NewStatsReader(db Querier) *StatsReader {
	return &StatsReader{db: db, now: time.Now}
}

const countsSQL = `
SELECT
	(SELECT COUNT(*) FROM users),
	(SELECT COUNT(*) FROM users WHERE is_active),
	(SELECT COUNT(*) FROM posts),
	(SELECT COUNT(*) FROM posts WHERE created_at >= $1),
	(SELECT COUNT(*) FROM likes),
	(SELECT COUNT(*) FROM comments),
	(SELECT COUNT(*) FROM follows)`

const recentUsersSQL = `
SELECT id::text, username, is_active, created_at
FROM users
ORDER BY created_at DESC
LIMIT $1`

const recentPostsSQL = `
SELECT p.id::text, p.user_id::text, u.username, p.content, p.created_at
FROM posts p
JOIN users u ON u.id = p.user_id
ORDER BY p.created_at DESC
LIMIT $1`

func (r *StatsReader) Stats(ctx context.Context) (*Stats, error) {
	now := r.now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var s Stats
	if err := r.db.QueryRow(ctx, countsSQL, startOfDay).Scan(
		&s.TotalUsers,
		&s.ActiveUsers,
		&s.TotalPosts,
		&s.PostsToday,
		&s.TotalLikes,
		&s.TotalComments,
		&s.TotalFollows,
	); err != nil {
		return nil, fmt.Errorf("failed to count totals: %w", err)
	}

	users, err := r.recentUsers(ctx)
	if err != nil {
		return nil, err
	}
	posts, err := r.recentPosts(ctx)
	if err != nil {
		return nil, err
	}
	s.RecentUsers = users
	s.RecentPosts = posts
	return &s, nil
}

func (r *StatsReader) recentUsers(ctx context.Context) ([]RecentUser, error) {
	rows, err := r.db.Query(ctx, recentUsersSQL, recentLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent users: %w", err)
	}
	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (RecentUser, error) {
		var u RecentUser
		err := row.Scan(&u.ID, &u.Username, &u.IsActive, &u.CreatedAt)
		return u, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan recent users: %w", err)
	}
	return users, nil
}

func (r *StatsReader) recentPosts(ctx context.Context) ([]RecentPost, error) {
	rows, err := r.db.Query(ctx, recentPostsSQL, recentLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent posts: %w", err)
	}
	posts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (RecentPost, error) {
		var p RecentPost
		err := row.Scan(&p.ID, &p.UserID, &p.Username, &p.Content, &p.CreatedAt)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan recent posts: %w", err)
	}
	return posts, nil
}
