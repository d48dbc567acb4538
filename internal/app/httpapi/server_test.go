package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/fireworld/fireworld/internal/app"
	"github.com/fireworld/fireworld/pkg/logger"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	application := app.New(app.Stores{}, app.Options{JWTSecret: "test-secret"}, logger.NewDefault("httpapi-test"))
	srv := NewServer(application, Options{AllowedOrigins: []string{"*"}}, logger.NewDefault("httpapi-test"))
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url, token string, payload interface{}) (*http.Response, map[string]json.RawMessage) {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	decoded := make(map[string]json.RawMessage)
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func register(t *testing.T, baseURL, name string) (userID, token string) {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, baseURL+"/api/auth", "", map[string]string{
		"name":     name,
		"password": "password",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: status %d", name, resp.StatusCode)
	}

	var tok string
	if err := json.Unmarshal(body["token"], &tok); err != nil {
		t.Fatalf("decode token: %v", err)
	}
	var u struct {
		UserID string `json:"userID"`
	}
	if err := json.Unmarshal(body["user"], &u); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	return u.UserID, tok
}

func TestAuthFlow(t *testing.T) {
	ts := newTestServer(t)

	_, token := register(t, ts.URL, "alice")

	t.Run("DuplicateName", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/auth", "", map[string]string{
			"name": "alice", "password": "password2",
		})
		if resp.StatusCode != http.StatusConflict {
			t.Fatalf("expected 409, got %d", resp.StatusCode)
		}
		if !strings.Contains(string(body["error"]), "Username already exists") {
			t.Errorf("unexpected error body %s", body["error"])
		}
	})

	t.Run("Login", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodPut, ts.URL+"/api/auth", "", map[string]string{
			"name": "alice", "password": "password",
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
	})

	t.Run("BadLogin", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodPut, ts.URL+"/api/auth", "", map[string]string{
			"name": "alice", "password": "wrong!",
		})
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", resp.StatusCode)
		}
	})

	t.Run("Verify", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/auth", token, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		if !strings.Contains(string(body["name"]), "alice") {
			t.Errorf("unexpected verify body %s", body["name"])
		}
	})

	t.Run("NoToken", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/posts", "", nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", resp.StatusCode)
		}
		if !strings.Contains(string(body["error"]), "No token provided") {
			t.Errorf("unexpected error body %s", body["error"])
		}
	})

	t.Run("GarbageToken", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodGet, ts.URL+"/api/posts", "nonsense", nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", resp.StatusCode)
		}
	})
}

func TestPostLifecycle(t *testing.T) {
	ts := newTestServer(t)

	_, aliceToken := register(t, ts.URL, "alice")
	_, bobToken := register(t, ts.URL, "bob")

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/posts", aliceToken, map[string]string{"text": "hello world"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create post: status %d", resp.StatusCode)
	}
	var postID string
	if err := json.Unmarshal(body["postID"], &postID); err != nil {
		t.Fatalf("decode postID: %v", err)
	}

	t.Run("EmptyText", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodPost, ts.URL+"/api/posts", aliceToken, map[string]string{"text": "  "})
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", resp.StatusCode)
		}
	})

	t.Run("List", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/posts")
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("unauthenticated list should 401, got %d", resp.StatusCode)
		}

		resp2, err := doAuthedGet(ts.URL+"/api/posts", bobToken)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		defer resp2.Body.Close()
		if resp2.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp2.StatusCode)
		}

		var posts []map[string]interface{}
		if err := json.NewDecoder(resp2.Body).Decode(&posts); err != nil {
			t.Fatalf("decode: %v", err)
		}
		found := false
		for _, p := range posts {
			if p["postID"] == postID {
				found = true
				if p["name"] != "alice" {
					t.Errorf("expected author alice, got %v", p["name"])
				}
			}
		}
		if !found {
			t.Fatalf("created post %s missing from the list", postID)
		}
	})

	t.Run("DeleteByNonOwner", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodDelete, ts.URL+"/api/posts/"+postID, bobToken, nil)
		if resp.StatusCode != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", resp.StatusCode)
		}
	})

	t.Run("DeleteMissing", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodDelete, ts.URL+"/api/posts/no-such-id", aliceToken, nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", resp.StatusCode)
		}
	})

	t.Run("DeleteByOwner", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodDelete, ts.URL+"/api/posts/"+postID, aliceToken, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
	})
}

func TestActivityEndpoints(t *testing.T) {
	ts := newTestServer(t)

	_, aliceToken := register(t, ts.URL, "alice")

	_, body := doJSON(t, http.MethodPost, ts.URL+"/api/posts", aliceToken, map[string]string{"text": "like me"})
	var postID string
	if err := json.Unmarshal(body["postID"], &postID); err != nil {
		t.Fatalf("decode postID: %v", err)
	}

	like := map[string]string{"type": "like", "postID": postID}

	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/api/activity", aliceToken, like)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("first like: status %d", resp.StatusCode)
	}

	resp, body = doJSON(t, http.MethodPost, ts.URL+"/api/activity", aliceToken, like)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unlike: status %d", resp.StatusCode)
	}
	var marker string
	if err := json.Unmarshal(body["type"], &marker); err != nil {
		t.Fatalf("toggle response missing type field: %v", err)
	}
	if marker != "unlike" {
		t.Errorf("expected type unlike, got %q", marker)
	}
	var markerPostID string
	if err := json.Unmarshal(body["postID"], &markerPostID); err != nil || markerPostID != postID {
		t.Errorf("expected postID %s in toggle response, got %s", postID, body["postID"])
	}

	t.Run("CommentNeedsMessage", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodPost, ts.URL+"/api/activity", aliceToken, map[string]string{
			"type": "comment", "postID": postID,
		})
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", resp.StatusCode)
		}
	})

	t.Run("ListByPost", func(t *testing.T) {
		doJSON(t, http.MethodPost, ts.URL+"/api/activity", aliceToken, map[string]string{
			"type": "comment", "postID": postID, "message": "nice",
		})
		resp, _ := doJSON(t, http.MethodGet, ts.URL+"/api/activity?postID="+postID, aliceToken, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
	})
}

func TestMessageEndpoints(t *testing.T) {
	ts := newTestServer(t)

	aliceID, aliceToken := register(t, ts.URL, "alice")
	bobID, bobToken := register(t, ts.URL, "bob")

	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/api/messages", aliceToken, map[string]string{
		"toWhoID": bobID, "message": "hello bob",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("send: status %d", resp.StatusCode)
	}

	t.Run("UnknownRecipient", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodPost, ts.URL+"/api/messages", aliceToken, map[string]string{
			"toWhoID": "ghost", "message": "anyone there",
		})
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", resp.StatusCode)
		}
	})

	t.Run("Conversation", func(t *testing.T) {
		resp, err := doAuthedGet(ts.URL+"/api/messages?otherUserID="+aliceID, bobToken)
		if err != nil {
			t.Fatalf("conversation: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		var msgs []map[string]interface{}
		if err := json.NewDecoder(resp.Body).Decode(&msgs); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(msgs) != 1 {
			t.Fatalf("expected 1 message, got %d", len(msgs))
		}
	})
}

func TestMessageStream(t *testing.T) {
	ts := newTestServer(t)

	aliceID, aliceToken := register(t, ts.URL, "alice")
	bobID, bobToken := register(t, ts.URL, "bob")

	// Seed one stored message so the stream replays history first.
	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/api/messages", aliceToken, map[string]string{
		"toWhoID": bobID, "message": "before connect",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("seed message: status %d", resp.StatusCode)
	}

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") +
		fmt.Sprintf("/api/messages/stream?token=%s&otherUserID=%s", bobToken, aliceID)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial stream: %v", err)
	}
	defer conn.Close()

	readMessage := func() map[string]interface{} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var got map[string]interface{}
		if err := conn.ReadJSON(&got); err != nil {
			t.Fatalf("read stream: %v", err)
		}
		return got
	}

	if got := readMessage(); got["message"] != "before connect" {
		t.Fatalf("expected history replay, got %v", got)
	}

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/api/messages", aliceToken, map[string]string{
		"toWhoID": bobID, "message": "after connect",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("live message: status %d", resp.StatusCode)
	}

	if got := readMessage(); got["message"] != "after connect" {
		t.Fatalf("expected live delivery, got %v", got)
	}

	// Each stored message arrives exactly once even though live events and
	// history replay can overlap.
	conn.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	var extra map[string]interface{}
	if err := conn.ReadJSON(&extra); err == nil {
		t.Fatalf("unexpected duplicate frame %v", extra)
	}
}

func TestUsersEndpoint(t *testing.T) {
	ts := newTestServer(t)

	_, aliceToken := register(t, ts.URL, "alice")
	register(t, ts.URL, "bob")
	register(t, ts.URL, "carol")

	resp, err := doAuthedGet(ts.URL+"/api/users", aliceToken)
	if err != nil {
		t.Fatalf("users: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var profiles []map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&profiles); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(profiles) != 2 {
		t.Fatalf("expected 2 other users, got %d", len(profiles))
	}
	for _, p := range profiles {
		if p["name"] == "alice" {
			t.Error("caller must be excluded from the directory")
		}
		if _, leaked := p["password_hash"]; leaked {
			t.Error("password hash leaked")
		}
	}
}

func TestUnconfiguredIntegrations(t *testing.T) {
	ts := newTestServer(t)
	_, token := register(t, ts.URL, "alice")

	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/api/news", token, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("news: expected 404, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/api/chat", token, map[string]string{"message": "hi"})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("chat: expected 404, got %d", resp.StatusCode)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz: expected 200, got %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("metrics: expected 200, got %d", resp.StatusCode)
	}
}

func doAuthedGet(url, token string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return http.DefaultClient.Do(req)
}
