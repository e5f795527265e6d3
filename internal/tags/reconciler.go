package tags

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gamerec/gamerec/internal/domain"
	"github.com/gamerec/gamerec/internal/id"
	"github.com/gamerec/gamerec/internal/store"
)

// Mode selects how existing links are treated.
type Mode int

const (
	// Additive links the given tags and leaves other links untouched.
	Additive Mode = iota
	// Replace clears the game's links before linking the given tags.
	Replace
)

func (m Mode) String() string {
	if m == Replace {
		return "replace"
	}
	return "additive"
}

// Result describes one reconciliation.
type Result struct {
	// Tags are the resolved vocabulary entries in first-seen order.
	Tags    []*domain.Tag
	Created int
	Linked  int
}

// Slugs returns the slugs of the resolved tags.
func (r *Result) Slugs() []string {
	out := make([]string, len(r.Tags))
	for i, t := range r.Tags {
		out[i] = t.Slug
	}
	return out
}

// Reconciler resolves raw tag strings to vocabulary tags and links them to games.
type Reconciler struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewReconciler creates a reconciler.
func NewReconciler(logger *slog.Logger) *Reconciler {
	return &Reconciler{logger: logger, now: time.Now}
}

// Reconcile resolves raw to tags, creating unseen ones, and links them to
// gameID. Running it twice with the same input creates no duplicate links.
func (r *Reconciler) Reconcile(ctx context.Context, st store.Tags, gameID int64, raw []string, mode Mode) (*Result, error) {
	if mode == Replace {
		if err := st.ClearGameTags(ctx, gameID); err != nil {
			return nil, fmt.Errorf("clear tags for game %d: %w", gameID, err)
		}
	}

	res := &Result{}
	seen := make(map[string]bool, len(raw))
	for _, rawTag := range raw {
		slug := Slug(rawTag)
		if slug == "" || seen[slug] {
			continue
		}
		seen[slug] = true

		tag, created, err := r.findOrCreate(ctx, st, slug, Label(rawTag))
		if err != nil {
			return nil, err
		}
		if created {
			res.Created++
		}

		inserted, err := st.LinkGameTag(ctx, gameID, tag.ID)
		if err != nil {
			return nil, fmt.Errorf("link tag %s to game %d: %w", slug, gameID, err)
		}
		if inserted {
			res.Linked++
		}
		res.Tags = append(res.Tags, tag)
	}

	r.logger.Debug("tags reconciled",
		"game_id", gameID,
		"mode", mode.String(),
		"tags", len(res.Tags),
		"created", res.Created,
		"linked", res.Linked,
	)

	return res, nil
}

func (r *Reconciler) findOrCreate(ctx context.Context, st store.Tags, slug, label string) (*domain.Tag, bool, error) {
	existing, err := st.GetTagBySlug(ctx, slug)
	if err == nil {
		return existing, false, nil
	}
	if !store.IsNotFound(err) {
		return nil, false, fmt.Errorf("get tag %s: %w", slug, err)
	}

	tagID, err := id.NewTagID()
	if err != nil {
		return nil, false, err
	}
	now := r.now().UTC()
	t := &domain.Tag{
		ID:        tagID,
		Slug:      slug,
		Label:     label,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := st.CreateTag(ctx, t); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			// Created concurrently; the first label wins.
			existing, err := st.GetTagBySlug(ctx, slug)
			if err != nil {
				return nil, false, fmt.Errorf("get tag %s: %w", slug, err)
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("create tag %s: %w", slug, err)
	}

	return t, true, nil
}
