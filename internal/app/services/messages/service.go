// Package messages manages direct messages and their realtime delivery.
package messages

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/fireworld/fireworld/internal/app/apperr"
	"github.com/fireworld/fireworld/internal/app/domain/message"
	"github.com/fireworld/fireworld/internal/app/realtime"
	"github.com/fireworld/fireworld/internal/app/storage"
	"github.com/fireworld/fireworld/pkg/logger"
)

// Service manages direct messages.
type Service struct {
	users storage.UserStore
	store storage.MessageStore
	hub   *realtime.Hub
	log   *logger.Logger
}

// New constructs a message service. The hub may be nil, in which case sends
// are persisted without realtime fan-out.
func New(users storage.UserStore, store storage.MessageStore, hub *realtime.Hub, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("messages")
	}
	return &Service{users: users, store: store, hub: hub, log: log}
}

// Send persists a message after verifying both participants exist, then
// publishes the enriched record to realtime subscribers of either side.
func (s *Service) Send(ctx context.Context, senderID, recipientID, body string) (message.Message, error) {
	if strings.TrimSpace(body) == "" {
		return message.Message{}, apperr.New(apperr.KindValidation, "Message and recipient ID are required")
	}
	if strings.TrimSpace(recipientID) == "" {
		return message.Message{}, apperr.New(apperr.KindValidation, "Message and recipient ID are required")
	}

	if err := s.requireUsers(ctx, senderID, recipientID); err != nil {
		return message.Message{}, err
	}

	created, err := s.store.CreateMessage(ctx, message.Message{
		SenderID:    senderID,
		RecipientID: recipientID,
		Body:        body,
	})
	if err != nil {
		return message.Message{}, err
	}

	if s.hub != nil {
		s.hub.Publish(created)
	}
	s.log.WithField("message_id", created.ID).
		WithField("sender_id", senderID).
		WithField("recipient_id", recipientID).
		Debug("message sent")
	return created, nil
}

// Conversation returns every message between the two users, ascending by
// creation time.
func (s *Service) Conversation(ctx context.Context, userID, otherUserID string) ([]message.Message, error) {
	if strings.TrimSpace(otherUserID) == "" {
		return nil, apperr.New(apperr.KindValidation, "Other user ID is required")
	}
	if err := s.requireUsers(ctx, userID, otherUserID); err != nil {
		return nil, err
	}

	result, err := s.store.ListConversation(ctx, userID, otherUserID)
	if err != nil {
		return nil, err
	}
	if result == nil {
		result = []message.Message{}
	}
	return result, nil
}

// Subscribe opens a realtime subscription for the user. The dispose func
// tears it down.
func (s *Service) Subscribe(userID string) (<-chan message.Message, func(), error) {
	if s.hub == nil {
		return nil, nil, apperr.New(apperr.KindUpstream, "realtime delivery not configured")
	}
	ch, dispose := s.hub.Subscribe(userID)
	return ch, dispose, nil
}

func (s *Service) requireUsers(ctx context.Context, ids ...string) error {
	for _, id := range ids {
		if _, err := s.users.GetUser(ctx, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperr.Newf(apperr.KindNotFound, "User %s not found", id)
			}
			return err
		}
	}
	return nil
}
