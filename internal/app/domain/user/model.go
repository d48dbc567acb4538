// Package user defines the account model.
package user

import "time"

// User is a registered account. PasswordHash never leaves the server.
type User struct {
	ID           string    `json:"userID"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	ImageURL     string    `json:"imageUrl,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Profile is the public projection of a User.
type Profile struct {
	ID       string `json:"userID"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// Profile strips private fields.
func (u User) Profile() Profile {
	return Profile{ID: u.ID, Name: u.Name, ImageURL: u.ImageURL}
}
