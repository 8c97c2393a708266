package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
)

func TestStatsReaderStats(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	fixed := time.Date(2024, 3, 5, 15, 30, 0, 0, time.UTC)
	reader := NewStatsReader(mock)
	reader.now = func() time.Time { return fixed }

	mock.ExpectQuery(`SELECT\s+\(SELECT COUNT\(\*\) FROM users\)`).
		WithArgs(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)).
		WillReturnRows(pgxmock.NewRows([]string{"users", "active", "posts", "today", "likes", "comments", "follows"}).
			AddRow(int64(12), int64(10), int64(40), int64(3), int64(90), int64(25), int64(17)))

	mock.ExpectQuery(`FROM users\s+ORDER BY created_at DESC`).
		WithArgs(recentLimit).
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "is_active", "created_at"}).
			AddRow("u-1", "alice", true, fixed).
			AddRow("u-2", "bob", false, fixed.Add(-time.Hour)))

	mock.ExpectQuery(`FROM posts p\s+JOIN users u`).
		WithArgs(recentLimit).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "username", "content", "created_at"}).
			AddRow("p-1", "u-1", "alice", "hello", fixed))

	stats, err := reader.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalUsers != 12 || stats.ActiveUsers != 10 || stats.PostsToday != 3 || stats.TotalFollows != 17 {
		t.Fatalf("unexpected totals: %+v", stats)
	}
	if len(stats.RecentUsers) != 2 || stats.RecentUsers[1].IsActive {
		t.Fatalf("unexpected recent users: %+v", stats.RecentUsers)
	}
	if len(stats.RecentPosts) != 1 || stats.RecentPosts[0].Username != "alice" {
		t.Fatalf("unexpected recent posts: %+v", stats.RecentPosts)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStatsReaderPropagatesErrors(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	boom := errors.New("connection reset")
	mock.ExpectQuery(`SELECT\s+\(SELECT COUNT`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnError(boom)

	_, err = NewStatsReader(mock).Stats(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped driver error, got %v", err)
	}
}
