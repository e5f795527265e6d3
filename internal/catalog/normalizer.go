// Package catalog turns raw catalog payloads into canonical game records and
// decides whether a game needs re-embedding.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gamerec/gamerec/internal/domain"
	domainerrors "github.com/gamerec/gamerec/internal/errors"
	"github.com/gamerec/gamerec/internal/store"
	"github.com/gamerec/gamerec/internal/tags"
	"github.com/gamerec/gamerec/internal/validation"
)

// Classification is the outcome of comparing a payload with the stored record.
type Classification string

// Classifications.
const (
	New       Classification = "NEW"
	Unchanged Classification = "UNCHANGED"
	Changed   Classification = "CHANGED"
)

// NeedsWrite reports whether the classification requires persisting the game.
func (c Classification) NeedsWrite() bool {
	return c == New || c == Changed
}

// Classify compares a stored record (nil when absent) with a fresh checksum.
func Classify(existing *domain.Game, checksum string) Classification {
	switch {
	case existing == nil:
		return New
	case existing.Checksum == checksum:
		return Unchanged
	default:
		return Changed
	}
}

// Normalized is a payload mapped onto the domain.
type Normalized struct {
	Game *domain.Game
	// Tags are the catalog tags, deduplicated by slug in first-seen order.
	Tags []string
}

// Result is the outcome of applying a normalized game to the store.
type Result struct {
	Game           *domain.Game
	Classification Classification
	// Previous is the record before this call, nil for NEW games.
	Previous *domain.Game
}

// Normalizer validates payloads and applies them by external identity.
type Normalizer struct {
	validator *validation.Validator
	now       func() time.Time
}

// NewNormalizer creates a normalizer.
func NewNormalizer(v *validation.Validator) *Normalizer {
	return &Normalizer{validator: v, now: time.Now}
}

// Normalize validates p and builds the canonical record and its checksum.
// It touches no storage.
func (n *Normalizer) Normalize(p Payload) (*Normalized, error) {
	if err := n.validator.Validate(p); err != nil {
		return nil, err
	}

	g := &domain.Game{
		ExternalID:  p.ExternalID,
		Slug:        strings.ToLower(strings.TrimSpace(p.Slug)),
		Title:       strings.Join(strings.Fields(p.Title), " "),
		Description: cleanText(p.Description),
		Summary:     cleanText(p.Summary),
		Storyline:   cleanText(p.Storyline),
		ReleaseDate: p.ReleaseDate.Time(),
		CoverURL:    strings.TrimSpace(p.CoverURL),
	}

	// Each of storyline and summary stands in for the other when missing.
	if g.Storyline == "" {
		g.Storyline = g.Summary
	}
	if g.Summary == "" {
		g.Summary = g.Storyline
	}

	if g.CoverURL == "" && p.CoverImageID != "" {
		g.CoverURL = fmt.Sprintf(coverURLFormat, p.CoverImageID)
	}

	tagLabels := tags.Dedupe(p.Tags)
	g.TagCache = tagLabels
	g.Checksum = Checksum(g.Title, g.Description, g.Summary)

	return &Normalized{Game: g, Tags: tagLabels}, nil
}

// Classify reads the stored record for g and classifies g against it
// without writing anything.
func (n *Normalizer) Classify(ctx context.Context, games store.Games, g *domain.Game) (Classification, *domain.Game, error) {
	existing, err := games.GetGame(ctx, g.ExternalID)
	if err != nil {
		if !store.IsNotFound(err) {
			return "", nil, fmt.Errorf("get game %d: %w", g.ExternalID, err)
		}
		existing = nil
	}
	return Classify(existing, g.Checksum), existing, nil
}

// Apply classifies g against the store and upserts it when NEW or CHANGED.
// UNCHANGED games cause no writes. Embeddings are left to the caller.
func (n *Normalizer) Apply(ctx context.Context, games store.Games, g *domain.Game) (*Result, error) {
	if g.Slug != "" {
		owner, err := games.GetGameBySlug(ctx, g.Slug)
		switch {
		case err == nil && owner.ExternalID != g.ExternalID:
			return nil, domainerrors.Conflictf("slug %q already belongs to game %d", g.Slug, owner.ExternalID).
				WithDetails(map[string]any{"slug": g.Slug, "owner": owner.ExternalID})
		case err != nil && !store.IsNotFound(err):
			return nil, fmt.Errorf("get game by slug %q: %w", g.Slug, err)
		}
	}

	class, existing, err := n.Classify(ctx, games, g)
	if err != nil {
		return nil, err
	}
	res := &Result{Game: g, Classification: class, Previous: existing}
	if !class.NeedsWrite() {
		res.Game = existing
		return res, nil
	}

	now := n.now().UTC()
	g.CreatedAt = now
	if existing != nil {
		g.CreatedAt = existing.CreatedAt
	}
	g.UpdatedAt = now

	if err := games.UpsertGame(ctx, g); err != nil {
		if domainerrors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Conflictf("game %d collides with an existing record", g.ExternalID).WithCause(err)
		}
		return nil, fmt.Errorf("upsert game %d: %w", g.ExternalID, err)
	}

	return res, nil
}
