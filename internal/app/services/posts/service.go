// Package posts manages post creation, listing, and owner-checked deletion.
package posts

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/fireworld/fireworld/internal/app/apperr"
	"github.com/fireworld/fireworld/internal/app/domain/post"
	"github.com/fireworld/fireworld/internal/app/storage"
	"github.com/fireworld/fireworld/pkg/logger"
)

// Service manages posts.
type Service struct {
	store storage.PostStore
	log   *logger.Logger
}

// New constructs a post service.
func New(store storage.PostStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("posts")
	}
	return &Service{store: store, log: log}
}

// Create inserts a post owned by ownerID.
func (s *Service) Create(ctx context.Context, text, ownerID string) (post.Post, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return post.Post{}, apperr.New(apperr.KindValidation, "Text is required")
	}

	created, err := s.store.CreatePost(ctx, post.Post{OwnerID: ownerID, Text: text})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return post.Post{}, apperr.New(apperr.KindNotFound, "Owner not found")
		}
		return post.Post{}, err
	}
	s.log.WithField("post_id", created.ID).WithField("owner_id", ownerID).Info("post created")
	return created, nil
}

// List returns enriched posts newest-first. Page numbers start at 1; a zero
// limit disables pagination. An empty ownerID lists all posts.
func (s *Service) List(ctx context.Context, ownerID string, page, limit int) ([]post.Post, error) {
	if page < 1 {
		page = 1
	}
	if limit < 0 {
		limit = 0
	}
	offset := 0
	if limit > 0 {
		offset = (page - 1) * limit
	}

	result, err := s.store.ListPosts(ctx, ownerID, offset, limit)
	if err != nil {
		return nil, err
	}
	if result == nil {
		result = []post.Post{}
	}
	return result, nil
}

// Delete removes a post when the caller owns it. A post owned by someone else
// yields a forbidden error; an absent post yields not found.
func (s *Service) Delete(ctx context.Context, postID, ownerID string) error {
	existing, err := s.store.GetPost(ctx, postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.New(apperr.KindNotFound, "Post not found")
		}
		return err
	}
	if existing.OwnerID != ownerID {
		return apperr.New(apperr.KindForbidden, "Not the post owner")
	}

	if err := s.store.DeletePost(ctx, postID, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.New(apperr.KindNotFound, "Post not found")
		}
		return err
	}
	s.log.WithField("post_id", postID).WithField("owner_id", ownerID).Info("post deleted")
	return nil
}
