package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Username       string    `json:"username" gorm:"size:20;uniqueIndex;not null"`
	Email          string    `json:"email,omitempty" gorm:"uniqueIndex;not null"`
	PasswordHash   string    `json:"-" gorm:"not null"`
	Bio            string    `json:"bio" gorm:"size:160"`
	Website        string    `json:"website"`
	Location       string    `json:"location" gorm:"size:50"`
	AvatarURL      string    `json:"avatar_url"`
	FollowersCount int64     `json:"followers_count" gorm:"not null;default:0"`
	FollowingCount int64     `json:"following_count" gorm:"not null;default:0"`
	PostsCount     int64     `json:"posts_count" gorm:"not null;default:0"`
	IsPrivate      bool      `json:"is_private" gorm:"not null;default:false"`
	IsAdmin        bool      `json:"is_admin" gorm:"not null;default:false"`
	IsActive       bool      `json:"is_active" gorm:"not null;default:true;index"`
	CreatedAt      time.Time `json:"created_at" gorm:"index"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// UserSummary is the public author projection embedded in posts, comments,
// follow edges and notifications.
type UserSummary struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	Username  string    `json:"username"`
	AvatarURL string    `json:"avatar_url"`
}

func (u *User) Summary() *UserSummary {
	return &UserSummary{ID: u.ID, Username: u.Username, AvatarURL: u.AvatarURL}
}

// Follow is a directed edge; the composite primary key forbids duplicates.
type Follow struct {
	FollowerID  uuid.UUID `json:"follower_id" gorm:"type:uuid;primaryKey"`
	FollowingID uuid.UUID `json:"following_id" gorm:"type:uuid;primaryKey;index"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`

	Follower  *UserSummary `json:"follower,omitempty" gorm:"foreignKey:FollowerID"`
	Following *UserSummary `json:"following,omitempty" gorm:"foreignKey:FollowingID"`
}

func (User) TableName() string {
	return "users"
}

func (UserSummary) TableName() string {
	return "users"
}

func (Follow) TableName() string {
	return "follows"
}
