package models

import (
	"time"

	"github.com/google/uuid"
)

type PostCategory string

const (
	CategoryGeneral      PostCategory = "general"
	CategoryAnnouncement PostCategory = "announcement"
	CategoryQuestion     PostCategory = "question"
)

func (c PostCategory) Valid() bool {
	switch c {
	case CategoryGeneral, CategoryAnnouncement, CategoryQuestion:
		return true
	}
	return false
}

type Post struct {
	ID           uuid.UUID    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID       uuid.UUID    `json:"user_id" gorm:"type:uuid;not null;index"`
	Content      string       `json:"content" gorm:"type:text;not null"`
	ImageURL     *string      `json:"image_url"`
	Category     PostCategory `json:"category" gorm:"type:varchar(20);not null;default:general"`
	LikeCount    int64        `json:"like_count" gorm:"not null;default:0"`
	CommentCount int64        `json:"comment_count" gorm:"not null;default:0"`
	// IsLiked is per viewer and never stored or cached.
	IsLiked bool `json:"is_liked" gorm:"-"`
	CreatedAt    time.Time    `json:"created_at" gorm:"index"`
	UpdatedAt    time.Time    `json:"updated_at"`

	User *UserSummary `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// Like has a composite identity: at most one row per (user, post).
type Like struct {
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;primaryKey"`
	PostID    uuid.UUID `json:"post_id" gorm:"type:uuid;primaryKey;index"`
	CreatedAt time.Time `json:"created_at"`
}

type Comment struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	PostID    uuid.UUID `json:"post_id" gorm:"type:uuid;not null;index"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User *UserSummary `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (Post) TableName() string {
	return "posts"
}

func (Like) TableName() string {
	return "likes"
}

func (Comment) TableName() string {
	return "comments"
}
