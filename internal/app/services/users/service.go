// Package users exposes the user directory.
package users

import (
	"context"

	"github.com/fireworld/fireworld/internal/app/domain/user"
	"github.com/fireworld/fireworld/internal/app/storage"
	"github.com/fireworld/fireworld/pkg/logger"
)

// Service lists user profiles.
type Service struct {
	store storage.UserStore
	log   *logger.Logger
}

// New constructs a user directory service.
func New(store storage.UserStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("users")
	}
	return &Service{store: store, log: log}
}

// List returns everyone except the caller, sorted by name, as public
// profiles without password hashes.
func (s *Service) List(ctx context.Context, callerID string) ([]user.Profile, error) {
	all, err := s.store.ListUsers(ctx, callerID)
	if err != nil {
		return nil, err
	}

	profiles := make([]user.Profile, 0, len(all))
	for _, u := range all {
		profiles = append(profiles, u.Profile())
	}
	return profiles, nil
}
