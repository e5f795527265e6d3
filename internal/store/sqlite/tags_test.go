package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gamerec/gamerec/internal/domain"
	"github.com/gamerec/gamerec/internal/store"
)

func createTestTag(t *testing.T, s *Store, id, slug, label string) *domain.Tag {
	t.Helper()
	now := time.Now().UTC()
	tag := &domain.Tag{ID: id, Slug: slug, Label: label, CreatedAt: now, UpdatedAt: now}
	if err := s.CreateTag(context.Background(), tag); err != nil {
		t.Fatalf("create tag %s: %v", slug, err)
	}
	return tag
}

func TestCreateTag_DuplicateSlug(t *testing.T) {
	s := newTestStore(t)
	createTestTag(t, s, "tag-a", "open-world", "Open World")

	now := time.Now()
	err := s.CreateTag(context.Background(), &domain.Tag{
		ID: "tag-b", Slug: "open-world", Label: "open world", CreatedAt: now, UpdatedAt: now,
	})
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}

	got, err := s.GetTagBySlug(context.Background(), "open-world")
	if err != nil {
		t.Fatalf("get tag: %v", err)
	}
	if got.Label != "Open World" {
		t.Errorf("label should keep first casing, got %q", got.Label)
	}
}

func TestLinkGameTag_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	insertTestGame(t, s, 1, "Hollow Knight")
	tag := createTestTag(t, s, "tag-m", "metroidvania", "Metroidvania")

	inserted, err := s.LinkGameTag(ctx, 1, tag.ID)
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	if !inserted {
		t.Error("expected first link to insert")
	}

	inserted, err = s.LinkGameTag(ctx, 1, tag.ID)
	if err != nil {
		t.Fatalf("relink: %v", err)
	}
	if inserted {
		t.Error("expected second link to be a no-op")
	}

	tags, err := s.GetGameTags(ctx, 1)
	if err != nil {
		t.Fatalf("get game tags: %v", err)
	}
	if len(tags) != 1 {
		t.Errorf("expected 1 tag, got %d", len(tags))
	}
}

func TestGetTagSlugs_SortedPerGame(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	insertTestGame(t, s, 1, "One")
	insertTestGame(t, s, 2, "Two")
	insertTestGame(t, s, 3, "Three")

	zed := createTestTag(t, s, "tag-z", "zombies", "Zombies")
	act := createTestTag(t, s, "tag-a", "action", "Action")
	for _, link := range []struct {
		game int64
		tag  string
	}{{1, zed.ID}, {1, act.ID}, {2, act.ID}} {
		if _, err := s.LinkGameTag(ctx, link.game, link.tag); err != nil {
			t.Fatalf("link: %v", err)
		}
	}

	slugs, err := s.GetTagSlugs(ctx, []int64{1, 2, 3})
	if err != nil {
		t.Fatalf("get slugs: %v", err)
	}
	if got := slugs[1]; len(got) != 2 || got[0] != "action" || got[1] != "zombies" {
		t.Errorf("game 1 slugs: %v", got)
	}
	if got := slugs[2]; len(got) != 1 || got[0] != "action" {
		t.Errorf("game 2 slugs: %v", got)
	}
	if got, ok := slugs[3]; !ok || len(got) != 0 {
		t.Errorf("game 3 should map to empty slice, got %v (present=%v)", got, ok)
	}
}

func TestClearGameTags(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	insertTestGame(t, s, 1, "Game")
	tag := createTestTag(t, s, "tag-x", "puzzle", "Puzzle")
	if _, err := s.LinkGameTag(ctx, 1, tag.ID); err != nil {
		t.Fatalf("link: %v", err)
	}

	if err := s.ClearGameTags(ctx, 1); err != nil {
		t.Fatalf("clear: %v", err)
	}

	tags, err := s.GetGameTags(ctx, 1)
	if err != nil {
		t.Fatalf("get game tags: %v", err)
	}
	if len(tags) != 0 {
		t.Errorf("expected no links, got %d", len(tags))
	}

	all, err := s.ListTags(ctx)
	if err != nil {
		t.Fatalf("list tags: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("vocabulary should keep the tag, got %d", len(all))
	}
}
