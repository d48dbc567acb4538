// Package message defines direct messages between two users.
package message

import (
	"sort"
	"time"
)

// Message is a direct message from one user to another.
type Message struct {
	ID             string    `json:"messageID"`
	SenderID       string    `json:"userID"`
	RecipientID    string    `json:"toWhoID"`
	Body           string    `json:"message"`
	CreatedAt      time.Time `json:"createdAt"`
	SenderName     string    `json:"name,omitempty"`
	SenderImageURL string    `json:"imageUrl,omitempty"`
}

// PairKey canonicalises a conversation pair so {A,B} and {B,A} share a key.
func PairKey(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}

// Merge combines message lists into one timeline, dropping duplicate IDs
// and ordering by (CreatedAt, ID). Merging the same lists again yields the
// same result, which lets callers reconcile history with live deliveries.
func Merge(lists ...[]Message) []Message {
	seen := make(map[string]struct{})
	var out []Message
	for _, list := range lists {
		for _, m := range list {
			if _, dup := seen[m.ID]; dup {
				continue
			}
			seen[m.ID] = struct{}{}
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
