package message

import (
	"reflect"
	"testing"
	"time"
)

func TestPairKey(t *testing.T) {
	if PairKey("a", "b") != PairKey("b", "a") {
		t.Fatal("pair key must be order independent")
	}
	if PairKey("a", "b") == PairKey("a", "c") {
		t.Fatal("distinct pairs must not collide")
	}
}

func TestMerge(t *testing.T) {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m1 := Message{ID: "m1", Body: "first", CreatedAt: base}
	m2 := Message{ID: "m2", Body: "second", CreatedAt: base.Add(time.Minute)}
	m3 := Message{ID: "m3", Body: "third", CreatedAt: base.Add(2 * time.Minute)}

	t.Run("DedupAcrossLists", func(t *testing.T) {
		got := Merge([]Message{m1, m2}, []Message{m2, m3})
		if len(got) != 3 {
			t.Fatalf("expected 3 messages, got %d", len(got))
		}
		for i, want := range []string{"m1", "m2", "m3"} {
			if got[i].ID != want {
				t.Errorf("position %d: expected %s, got %s", i, want, got[i].ID)
			}
		}
	})

	t.Run("Idempotent", func(t *testing.T) {
		once := Merge([]Message{m3, m1, m2})
		twice := Merge(once, once)
		if !reflect.DeepEqual(once, twice) {
			t.Fatal("merging a merged list must not change it")
		}
	})

	t.Run("TiesBreakOnID", func(t *testing.T) {
		a := Message{ID: "a", CreatedAt: base}
		b := Message{ID: "b", CreatedAt: base}
		got := Merge([]Message{b, a})
		if got[0].ID != "a" || got[1].ID != "b" {
			t.Fatalf("equal timestamps must order by ID, got %s then %s", got[0].ID, got[1].ID)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		if got := Merge(nil, []Message{}); len(got) != 0 {
			t.Fatalf("expected empty result, got %d", len(got))
		}
	})
}
