// Package embedding produces per-field vectors for games. Providers are
// pluggable; a badger-backed cache sits in front of remote providers.
package embedding

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gamerec/gamerec/internal/domain"
	domainerrors "github.com/gamerec/gamerec/internal/errors"
)

// Request asks for the vector of one field's text.
type Request struct {
	Field domain.Field
	Text  string
}

// Provider turns texts into vectors. Results are returned in request order.
type Provider interface {
	Name() string
	Model() string
	Embed(ctx context.Context, reqs []Request) ([][]float32, error)
}

// Embedder builds the embeddings of a game from its normalized text.
type Embedder struct {
	provider Provider
	logger   *slog.Logger
	now      func() time.Time
}

// NewEmbedder creates an embedder. A nil provider disables embeddings and
// similarity falls back to tags only.
func NewEmbedder(p Provider, logger *slog.Logger) *Embedder {
	return &Embedder{provider: p, logger: logger, now: time.Now}
}

// Enabled reports whether a provider is configured.
func (e *Embedder) Enabled() bool {
	return e.provider != nil
}

// EmbedGame returns one embedding per field with non-empty text, in field
// priority order. Provider failures are reported as Unavailable.
func (e *Embedder) EmbedGame(ctx context.Context, g *domain.Game) ([]*domain.Embedding, error) {
	if e.provider == nil {
		return nil, nil
	}

	var reqs []Request
	for _, f := range domain.Fields {
		if text := g.FieldText(f); text != "" {
			reqs = append(reqs, Request{Field: f, Text: text})
		}
	}
	if len(reqs) == 0 {
		return nil, nil
	}

	vectors, err := e.provider.Embed(ctx, reqs)
	if err != nil {
		return nil, domainerrors.Wrapf(err, domainerrors.CodeUnavailable, "embed game %d", g.ExternalID)
	}
	if len(vectors) != len(reqs) {
		return nil, domainerrors.Unavailable(
			fmt.Sprintf("embed game %d: provider returned %d vectors for %d fields", g.ExternalID, len(vectors), len(reqs)))
	}

	now := e.now().UTC()
	out := make([]*domain.Embedding, 0, len(reqs))
	for i, r := range reqs {
		emb := &domain.Embedding{
			GameID:    g.ExternalID,
			Field:     r.Field,
			Vector:    vectors[i],
			Dimension: len(vectors[i]),
			Metadata: domain.EmbeddingMetadata{
				Model:    e.provider.Model(),
				Provider: e.provider.Name(),
				Checksum: g.Checksum,
			},
			UpdatedAt: now,
		}
		if err := emb.Validate(); err != nil {
			return nil, domainerrors.Wrap(err, domainerrors.CodeUnavailable, "provider returned an invalid vector")
		}
		out = append(out, emb)
	}

	e.logger.Debug("game embedded",
		"external_id", g.ExternalID,
		"fields", len(out),
		"model", e.provider.Model(),
	)
	return out, nil
}

// Fields returns the fields present in embs.
func Fields(embs []*domain.Embedding) []domain.Field {
	out := make([]domain.Field, len(embs))
	for i, e := range embs {
		out[i] = e.Field
	}
	return out
}
