// Package post defines the feed post model.
package post

import (
	"time"

	"github.com/fireworld/fireworld/internal/app/domain/activity"
)

// Post is a feed entry with its author and attached activity.
type Post struct {
	ID             string              `json:"postID"`
	OwnerID        string              `json:"ownerID"`
	Text           string              `json:"text"`
	CreatedAt      time.Time           `json:"createdAt"`
	AuthorName     string              `json:"name,omitempty"`
	AuthorImageURL string              `json:"imageUrl,omitempty"`
	Activities     []activity.Activity `json:"activities"`
}
