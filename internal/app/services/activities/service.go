// Package activities manages likes and comments on posts.
package activities

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/fireworld/fireworld/internal/app/apperr"
	"github.com/fireworld/fireworld/internal/app/domain/activity"
	"github.com/fireworld/fireworld/internal/app/storage"
	"github.com/fireworld/fireworld/pkg/logger"
)

// Result is the outcome of Create. Removed is true when a like toggle removed
// an existing like ("unlike").
type Result struct {
	Activity activity.Activity
	Removed  bool
}

// Service manages post activities.
type Service struct {
	posts storage.PostStore
	store storage.ActivityStore
	log   *logger.Logger
}

// New constructs an activity service.
func New(posts storage.PostStore, store storage.ActivityStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("activities")
	}
	return &Service{posts: posts, store: store, log: log}
}

// Create records an activity. Likes toggle: an existing like for the same
// (post, user) is removed instead of duplicated. Comments always append and
// require a message.
func (s *Service) Create(ctx context.Context, kind activity.Kind, postID, userID, msg string) (Result, error) {
	kind = activity.Kind(strings.ToLower(string(kind)))
	if !kind.Valid() {
		return Result{}, apperr.Newf(apperr.KindValidation, "unsupported activity type %q", kind)
	}
	if strings.TrimSpace(postID) == "" {
		return Result{}, apperr.New(apperr.KindValidation, "Type and postID are required")
	}

	if s.posts != nil {
		if _, err := s.posts.GetPost(ctx, postID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return Result{}, apperr.New(apperr.KindNotFound, "Post not found")
			}
			return Result{}, err
		}
	}

	switch kind {
	case activity.KindLike:
		act, removed, err := s.store.ToggleLike(ctx, postID, userID)
		if err != nil {
			return Result{}, err
		}
		s.log.WithField("post_id", postID).
			WithField("user_id", userID).
			WithField("removed", removed).
			Debug("like toggled")
		return Result{Activity: act, Removed: removed}, nil

	case activity.KindComment:
		msg = strings.TrimSpace(msg)
		if msg == "" {
			return Result{}, apperr.New(apperr.KindValidation, "Message is required for comments")
		}
		act, err := s.store.CreateActivity(ctx, activity.Activity{
			Kind:    activity.KindComment,
			PostID:  postID,
			UserID:  userID,
			Message: msg,
		})
		if err != nil {
			return Result{}, err
		}
		s.log.WithField("activity_id", act.ID).WithField("post_id", postID).Debug("comment created")
		return Result{Activity: act}, nil
	}

	return Result{}, apperr.Newf(apperr.KindValidation, "unsupported activity type %q", kind)
}

// ListByPost returns all activities for a post, newest-first, with author
// profiles attached.
func (s *Service) ListByPost(ctx context.Context, postID string) ([]activity.Activity, error) {
	if strings.TrimSpace(postID) == "" {
		return nil, apperr.New(apperr.KindValidation, "Post ID is required")
	}
	result, err := s.store.ListPostActivities(ctx, postID)
	if err != nil {
		return nil, err
	}
	if result == nil {
		result = []activity.Activity{}
	}
	return result, nil
}

// Delete removes an activity when the caller authored it.
func (s *Service) Delete(ctx context.Context, activityID, userID string) error {
	if err := s.store.DeleteActivity(ctx, activityID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.New(apperr.KindNotFound, "Activity not found")
		}
		return err
	}
	s.log.WithField("activity_id", activityID).WithField("user_id", userID).Debug("activity deleted")
	return nil
}
