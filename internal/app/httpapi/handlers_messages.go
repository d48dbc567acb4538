package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/fireworld/fireworld/internal/app/domain/message"
	"github.com/fireworld/fireworld/internal/app/metrics"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

type sendMessageRequest struct {
	ToWhoID string `json:"toWhoID"`
	Message string `json:"message"`
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, err)
		return
	}

	m, err := s.app.Messages.Send(r.Context(), UserID(r.Context()), req.ToWhoID, req.Message)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	metrics.RecordMessageSent()
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) handleConversation(w http.ResponseWriter, r *http.Request) {
	msgs, err := s.app.Messages.Conversation(r.Context(), UserID(r.Context()), r.URL.Query().Get("otherUserID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

// handleMessageStream upgrades to a websocket and pushes the caller's
// messages as they arrive. With ?otherUserID= the stored conversation is
// replayed first; history and live deliveries are merged by message ID so a
// message is never written twice.
func (s *Server) handleMessageStream(w http.ResponseWriter, r *http.Request) {
	userID := UserID(r.Context())

	// Subscribe before loading history. A message stored in between lands
	// in the subscription buffer and the merge below drops the duplicate.
	events, dispose, err := s.app.Messages.Subscribe(userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	var history []message.Message
	if other := r.URL.Query().Get("otherUserID"); other != "" {
		history, err = s.app.Messages.Conversation(r.Context(), userID, other)
		if err != nil {
			dispose()
			writeServiceError(w, err)
			return
		}
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		dispose()
		s.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	metrics.SubscriberOpened()
	go s.streamMessages(conn, history, events, dispose)
}

func (s *Server) streamMessages(conn *websocket.Conn, history []message.Message, events <-chan message.Message, dispose func()) {
	defer func() {
		dispose()
		conn.Close()
		metrics.SubscriberClosed()
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	sent := make(map[string]struct{}, len(history))
	for _, m := range message.Merge(history) {
		if err := s.writeMessage(conn, m); err != nil {
			return
		}
		sent[m.ID] = struct{}{}
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case m, ok := <-events:
			if !ok {
				return
			}
			if _, dup := sent[m.ID]; dup {
				continue
			}
			if err := s.writeMessage(conn, m); err != nil {
				return
			}
			sent[m.ID] = struct{}{}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (s *Server) writeMessage(conn *websocket.Conn, m message.Message) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(m)
}
