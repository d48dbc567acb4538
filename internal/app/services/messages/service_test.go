package messages

import (
	"context"
	"testing"
	"time"

	"github.com/fireworld/fireworld/internal/app/apperr"
	"github.com/fireworld/fireworld/internal/app/domain/user"
	"github.com/fireworld/fireworld/internal/app/realtime"
	"github.com/fireworld/fireworld/internal/app/storage/memory"
	"github.com/fireworld/fireworld/pkg/logger"
)

func setup(t *testing.T) (*Service, user.User, user.User) {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	log := logger.NewDefault("messages-test")

	alice, err := store.CreateUser(ctx, user.User{Name: "alice"})
	if err != nil {
		t.Fatalf("create alice: %v", err)
	}
	bob, err := store.CreateUser(ctx, user.User{Name: "bob"})
	if err != nil {
		t.Fatalf("create bob: %v", err)
	}
	return New(store, store, realtime.NewHub(log), log), alice, bob
}

func TestSendValidation(t *testing.T) {
	svc, alice, bob := setup(t)
	ctx := context.Background()

	t.Run("EmptyBody", func(t *testing.T) {
		_, err := svc.Send(ctx, alice.ID, bob.ID, "   ")
		if apperr.KindOf(err) != apperr.KindValidation {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("EmptyRecipient", func(t *testing.T) {
		_, err := svc.Send(ctx, alice.ID, "", "hi")
		if apperr.KindOf(err) != apperr.KindValidation {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("UnknownRecipient", func(t *testing.T) {
		_, err := svc.Send(ctx, alice.ID, "ghost", "hi")
		if apperr.KindOf(err) != apperr.KindNotFound {
			t.Fatalf("expected not found, got %v", err)
		}
	})
}

func TestSendDeliversToSubscribers(t *testing.T) {
	svc, alice, bob := setup(t)
	ctx := context.Background()

	events, dispose, err := svc.Subscribe(bob.ID)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer dispose()

	sent, err := svc.Send(ctx, alice.ID, bob.ID, "hello bob")
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if sent.SenderName != "alice" {
		t.Errorf("expected sender name alice, got %q", sent.SenderName)
	}

	select {
	case got := <-events:
		if got.ID != sent.ID {
			t.Errorf("expected message %s, got %s", sent.ID, got.ID)
		}
		if got.Body != "hello bob" {
			t.Errorf("unexpected body %q", got.Body)
		}
	case <-time.After(time.Second):
		t.Fatal("message was not delivered to subscriber")
	}
}

func TestConversation(t *testing.T) {
	svc, alice, bob := setup(t)
	ctx := context.Background()

	carol := mustUser(t, svc, "carol")

	if _, err := svc.Send(ctx, alice.ID, bob.ID, "one"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := svc.Send(ctx, bob.ID, alice.ID, "two"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := svc.Send(ctx, alice.ID, carol, "other thread"); err != nil {
		t.Fatalf("send: %v", err)
	}

	t.Run("BothDirections", func(t *testing.T) {
		msgs, err := svc.Conversation(ctx, alice.ID, bob.ID)
		if err != nil {
			t.Fatalf("Conversation failed: %v", err)
		}
		if len(msgs) != 2 {
			t.Fatalf("expected 2 messages, got %d", len(msgs))
		}
		if msgs[0].Body != "one" || msgs[1].Body != "two" {
			t.Errorf("messages out of order: %q, %q", msgs[0].Body, msgs[1].Body)
		}
	})

	t.Run("SymmetricPair", func(t *testing.T) {
		fromBob, err := svc.Conversation(ctx, bob.ID, alice.ID)
		if err != nil {
			t.Fatalf("Conversation failed: %v", err)
		}
		if len(fromBob) != 2 {
			t.Fatalf("expected the same thread from either side, got %d messages", len(fromBob))
		}
	})

	t.Run("MissingOther", func(t *testing.T) {
		_, err := svc.Conversation(ctx, alice.ID, "")
		if apperr.KindOf(err) != apperr.KindValidation {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}

func mustUser(t *testing.T, svc *Service, name string) string {
	t.Helper()
	u, err := svc.users.CreateUser(context.Background(), user.User{Name: name})
	if err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	return u.ID
}
