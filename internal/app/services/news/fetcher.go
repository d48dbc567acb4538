package news

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	domain "github.com/fireworld/fireworld/internal/app/domain/news"
	"github.com/fireworld/fireworld/pkg/logger"
)

// Fetcher retrieves top headlines.
type Fetcher interface {
	Fetch(ctx context.Context) ([]domain.Article, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context) ([]domain.Article, error)

func (f FetcherFunc) Fetch(ctx context.Context) ([]domain.Article, error) {
	if f == nil {
		return nil, nil
	}
	return f(ctx)
}

// HTTPFetcher pulls headlines from thenewsapi.com-compatible endpoints.
type HTTPFetcher struct {
	client   *http.Client
	endpoint *url.URL
	apiKey   string
	locale   string
	limit    int
	log      *logger.Logger
}

// NewHTTPFetcher constructs a fetcher for the given base URL.
func NewHTTPFetcher(client *http.Client, baseURL, apiKey, locale string, limit int, log *logger.Logger) (*HTTPFetcher, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, fmt.Errorf("news endpoint required")
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/") + "/top")
	if err != nil {
		return nil, fmt.Errorf("parse news endpoint: %w", err)
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if log == nil {
		log = logger.NewDefault("news-fetcher")
	}
	if limit <= 0 {
		limit = 5
	}
	return &HTTPFetcher{
		client:   client,
		endpoint: parsed,
		apiKey:   strings.TrimSpace(apiKey),
		locale:   locale,
		limit:    limit,
		log:      log,
	}, nil
}

func (f *HTTPFetcher) Fetch(ctx context.Context) ([]domain.Article, error) {
	requestURL := *f.endpoint
	q := requestURL.Query()
	q.Set("api_token", f.apiKey)
	if f.locale != "" {
		q.Set("locale", f.locale)
	}
	q.Set("limit", strconv.Itoa(f.limit))
	requestURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build news request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("news request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("news status %d", resp.StatusCode)
	}

	var payload struct {
		Data []domain.Article `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode news response: %w", err)
	}
	return payload.Data, nil
}
