// Package news aggregates top headlines from an external news API, with an
// optional Redis cache in front of the upstream.
package news

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/fireworld/fireworld/internal/app/apperr"
	domain "github.com/fireworld/fireworld/internal/app/domain/news"
	"github.com/fireworld/fireworld/pkg/logger"
)

const cacheKey = "fireworld:news:latest"

// Service serves cached headlines.
type Service struct {
	fetcher Fetcher
	cache   *redis.Client
	ttl     time.Duration
	log     *logger.Logger
}

// New constructs a news service. cache may be nil to disable caching.
func New(fetcher Fetcher, cache *redis.Client, ttl time.Duration, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("news")
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Service{fetcher: fetcher, cache: cache, ttl: ttl, log: log}
}

// Latest returns the current top headlines, preferring the cache. A cache
// failure falls through to the upstream; an upstream failure is reported as
// an upstream error.
func (s *Service) Latest(ctx context.Context) ([]domain.Article, error) {
	if s.fetcher == nil {
		return nil, apperr.New(apperr.KindUpstream, "news fetcher not configured")
	}

	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached []domain.Article
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
		} else if err != redis.Nil {
			s.log.WithError(err).Warn("news cache read failed")
		}
	}

	articles, err := s.fetcher.Fetch(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, "Failed to fetch news", err)
	}
	if articles == nil {
		articles = []domain.Article{}
	}

	if s.cache != nil {
		if raw, err := json.Marshal(articles); err == nil {
			if err := s.cache.Set(ctx, cacheKey, raw, s.ttl).Err(); err != nil {
				s.log.WithError(err).Warn("news cache write failed")
			}
		}
	}
	return articles, nil
}
