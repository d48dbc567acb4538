// Package chat forwards user messages to an OpenAI-compatible chat
// completion API.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fireworld/fireworld/internal/app/apperr"
	"github.com/fireworld/fireworld/pkg/logger"
)

// Service calls the chat completion endpoint.
type Service struct {
	client   *http.Client
	endpoint *url.URL
	apiKey   string
	model    string
	log      *logger.Logger
}

// New constructs a chat service for the given API base URL.
func New(client *http.Client, baseURL, apiKey, model string, log *logger.Logger) (*Service, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, fmt.Errorf("chat endpoint required")
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/") + "/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("parse chat endpoint: %w", err)
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if log == nil {
		log = logger.NewDefault("chat")
	}
	if model == "" {
		model = "gpt-3.5-turbo"
	}
	return &Service{
		client:   client,
		endpoint: parsed,
		apiKey:   strings.TrimSpace(apiKey),
		model:    model,
		log:      log,
	}, nil
}

// Complete sends one user message and returns the assistant reply.
func (s *Service) Complete(ctx context.Context, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", apperr.New(apperr.KindValidation, "Message is required")
	}

	body, err := json.Marshal(map[string]any{
		"model": s.model,
		"messages": []map[string]string{
			{"role": "user", "content": message},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", apperr.Wrap(apperr.KindUpstream, "Failed to process your request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", apperr.Wrap(apperr.KindUpstream, "Failed to process your request", fmt.Errorf("chat status %d", resp.StatusCode))
	}

	var payload struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", apperr.Wrap(apperr.KindUpstream, "Failed to process your request", err)
	}
	if len(payload.Choices) == 0 {
		return "", apperr.New(apperr.KindUpstream, "Failed to process your request")
	}
	return payload.Choices[0].Message.Content, nil
}
