package posts

import (
	"context"
	"testing"

	"github.com/fireworld/fireworld/internal/app/apperr"
	"github.com/fireworld/fireworld/internal/app/domain/user"
	"github.com/fireworld/fireworld/internal/app/storage/memory"
	"github.com/fireworld/fireworld/pkg/logger"
)

func setup(t *testing.T) (*Service, *memory.Store, user.User) {
	t.Helper()
	store := memory.New()
	owner, err := store.CreateUser(context.Background(), user.User{Name: "alice"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return New(store, logger.NewDefault("posts-test")), store, owner
}

func TestCreatePost(t *testing.T) {
	svc, _, owner := setup(t)
	ctx := context.Background()

	t.Run("EmptyText", func(t *testing.T) {
		_, err := svc.Create(ctx, "   ", owner.ID)
		if apperr.KindOf(err) != apperr.KindValidation {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("Success", func(t *testing.T) {
		p, err := svc.Create(ctx, "hello world", owner.ID)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if p.ID == "" {
			t.Error("expected a post ID")
		}
		if p.OwnerID != owner.ID {
			t.Errorf("expected owner %s, got %s", owner.ID, p.OwnerID)
		}
	})
}

func TestListPosts(t *testing.T) {
	svc, store, owner := setup(t)
	ctx := context.Background()

	other, _ := store.CreateUser(ctx, user.User{Name: "bob"})
	for i := 0; i < 3; i++ {
		if _, err := svc.Create(ctx, "post", owner.ID); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if _, err := svc.Create(ctx, "bob post", other.ID); err != nil {
		t.Fatalf("create: %v", err)
	}

	t.Run("All", func(t *testing.T) {
		posts, err := svc.List(ctx, "", 1, 0)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(posts) != 4 {
			t.Fatalf("expected 4 posts, got %d", len(posts))
		}
	})

	t.Run("ByOwner", func(t *testing.T) {
		posts, err := svc.List(ctx, other.ID, 1, 0)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(posts) != 1 {
			t.Fatalf("expected 1 post, got %d", len(posts))
		}
	})

	t.Run("Paged", func(t *testing.T) {
		posts, err := svc.List(ctx, "", 2, 3)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(posts) != 1 {
			t.Fatalf("expected 1 post on second page, got %d", len(posts))
		}
	})

	t.Run("EmptyPageIsNotNil", func(t *testing.T) {
		posts, err := svc.List(ctx, "", 10, 5)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if posts == nil {
			t.Fatal("expected empty slice, got nil")
		}
	})
}

func TestDeletePost(t *testing.T) {
	svc, store, owner := setup(t)
	ctx := context.Background()

	other, _ := store.CreateUser(ctx, user.User{Name: "bob"})
	p, err := svc.Create(ctx, "to delete", owner.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	t.Run("NotOwner", func(t *testing.T) {
		err := svc.Delete(ctx, p.ID, other.ID)
		if apperr.KindOf(err) != apperr.KindForbidden {
			t.Fatalf("expected forbidden, got %v", err)
		}
	})

	t.Run("Missing", func(t *testing.T) {
		err := svc.Delete(ctx, "no-such-post", owner.ID)
		if apperr.KindOf(err) != apperr.KindNotFound {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("Owner", func(t *testing.T) {
		if err := svc.Delete(ctx, p.ID, owner.ID); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if err := svc.Delete(ctx, p.ID, owner.ID); apperr.KindOf(err) != apperr.KindNotFound {
			t.Fatalf("expected not found after delete, got %v", err)
		}
	})
}
