package storage

import (
	"context"
	"errors"

	"github.com/fireworld/fireworld/internal/app/domain/activity"
	"github.com/fireworld/fireworld/internal/app/domain/message"
	"github.com/fireworld/fireworld/internal/app/domain/post"
	"github.com/fireworld/fireworld/internal/app/domain/user"
)

// ErrNameTaken is returned by CreateUser when the display name is in use.
var ErrNameTaken = errors.New("name already taken")

// UserStore persists user accounts. Lookups that find nothing return
// sql.ErrNoRows so callers translate misses uniformly.
type UserStore interface {
	CreateUser(ctx context.Context, u user.User) (user.User, error)
	GetUser(ctx context.Context, id string) (user.User, error)
	GetUserByName(ctx context.Context, name string) (user.User, error)
	ListUsers(ctx context.Context, exceptID string) ([]user.User, error)
}

// PostStore persists posts.
type PostStore interface {
	CreatePost(ctx context.Context, p post.Post) (post.Post, error)
	GetPost(ctx context.Context, id string) (post.Post, error)
	// ListPosts returns enriched posts newest-first. An empty ownerID lists
	// everyone's posts. limit <= 0 means no limit.
	ListPosts(ctx context.Context, ownerID string, offset, limit int) ([]post.Post, error)
	// DeletePost removes the post only when both id and owner match.
	DeletePost(ctx context.Context, id, ownerID string) error
}

// ActivityStore persists likes and comments.
type ActivityStore interface {
	CreateActivity(ctx context.Context, act activity.Activity) (activity.Activity, error)
	// ToggleLike atomically removes an existing like for (postID, userID) or
	// inserts one. removed reports which branch was taken.
	ToggleLike(ctx context.Context, postID, userID string) (act activity.Activity, removed bool, err error)
	ListPostActivities(ctx context.Context, postID string) ([]activity.Activity, error)
	// DeleteActivity removes the activity only when both id and owner match.
	DeleteActivity(ctx context.Context, id, userID string) error
}

// MessageStore persists direct messages.
type MessageStore interface {
	CreateMessage(ctx context.Context, m message.Message) (message.Message, error)
	// ListConversation returns every message whose unordered participant pair
	// is exactly {userA, userB}, ascending by creation time, enriched with
	// sender profiles.
	ListConversation(ctx context.Context, userA, userB string) ([]message.Message, error)
}
