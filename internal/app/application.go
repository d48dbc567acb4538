// Package app wires the FireWorld services together.
package app

import (
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/fireworld/fireworld/internal/app/realtime"
	"github.com/fireworld/fireworld/internal/app/services/activities"
	"github.com/fireworld/fireworld/internal/app/services/auth"
	"github.com/fireworld/fireworld/internal/app/services/chat"
	"github.com/fireworld/fireworld/internal/app/services/messages"
	"github.com/fireworld/fireworld/internal/app/services/news"
	"github.com/fireworld/fireworld/internal/app/services/posts"
	"github.com/fireworld/fireworld/internal/app/services/users"
	"github.com/fireworld/fireworld/internal/app/storage"
	"github.com/fireworld/fireworld/internal/app/storage/memory"
	"github.com/fireworld/fireworld/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Users      storage.UserStore
	Posts      storage.PostStore
	Activities storage.ActivityStore
	Messages   storage.MessageStore
}

// Options carries cross-service settings and optional external integrations.
type Options struct {
	JWTSecret string

	NewsFetcher  news.Fetcher  // nil disables the news feed
	NewsCache    *redis.Client // nil disables headline caching
	NewsCacheTTL time.Duration

	Chat *chat.Service // nil disables the AI chat endpoint
}

// Application ties domain services together.
type Application struct {
	log *logger.Logger

	Hub        *realtime.Hub
	Auth       *auth.Service
	Posts      *posts.Service
	Activities *activities.Service
	Messages   *messages.Service
	Users      *users.Service
	News       *news.Service
	Chat       *chat.Service
}

// New builds a fully initialised application with the provided stores.
func New(stores Stores, opts Options, log *logger.Logger) *Application {
	if log == nil {
		log = logger.NewDefault("app")
	}

	mem := memory.New()
	if stores.Users == nil {
		stores.Users = mem
	}
	if stores.Posts == nil {
		stores.Posts = mem
	}
	if stores.Activities == nil {
		stores.Activities = mem
	}
	if stores.Messages == nil {
		stores.Messages = mem
	}

	hub := realtime.NewHub(log)

	a := &Application{
		log:        log,
		Hub:        hub,
		Auth:       auth.New(stores.Users, opts.JWTSecret, log),
		Posts:      posts.New(stores.Posts, log),
		Activities: activities.New(stores.Posts, stores.Activities, log),
		Messages:   messages.New(stores.Users, stores.Messages, hub, log),
		Users:      users.New(stores.Users, log),
		Chat:       opts.Chat,
	}

	if opts.NewsFetcher != nil {
		a.News = news.New(opts.NewsFetcher, opts.NewsCache, opts.NewsCacheTTL, log)
	}
	return a
}
