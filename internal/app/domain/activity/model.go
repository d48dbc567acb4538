// Package activity defines likes and comments attached to posts.
package activity

import "time"

// Kind discriminates activity rows.
type Kind string

const (
	KindLike    Kind = "like"
	KindComment Kind = "comment"
)

// Valid reports whether k is a known activity kind.
func (k Kind) Valid() bool {
	return k == KindLike || k == KindComment
}

// Activity is a like or a comment on a post.
type Activity struct {
	ID             string    `json:"activityID"`
	Kind           Kind      `json:"type"`
	PostID         string    `json:"postID"`
	UserID         string    `json:"userID"`
	Message        string    `json:"message,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	AuthorName     string    `json:"name,omitempty"`
	AuthorImageURL string    `json:"imageUrl,omitempty"`
}
