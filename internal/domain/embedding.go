package domain

import (
	"fmt"
	"math"
	"time"
)

// Field names a semantic field that carries its own embedding.
type Field string

// Semantic fields.
const (
	FieldTitle     Field = "title"
	FieldStoryline Field = "storyline"
	FieldSummary   Field = "summary"
)

// Fields lists the semantic fields in their fixed priority order.
var Fields = []Field{FieldTitle, FieldStoryline, FieldSummary}

// ParseField returns the Field named s.
func ParseField(s string) (Field, error) {
	for _, f := range Fields {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown field %q", s)
}

// EmbeddingMetadata describes how a vector was produced.
type EmbeddingMetadata struct {
	Model    string `json:"model"`
	Provider string `json:"provider,omitempty"`
	// Checksum is the game checksum the vector was derived from.
	Checksum string `json:"checksum,omitempty"`
}

// Embedding is the vector for one (game, field) pair.
type Embedding struct {
	GameID    int64             `json:"game_id"`
	Field     Field             `json:"field"`
	Vector    []float32         `json:"vector"`
	Dimension int               `json:"dimension"`
	Metadata  EmbeddingMetadata `json:"metadata"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Validate checks that the declared dimension matches the vector and that
// every component is finite.
func (e *Embedding) Validate() error {
	if len(e.Vector) == 0 {
		return fmt.Errorf("embedding %d/%s: empty vector", e.GameID, e.Field)
	}
	if e.Dimension != len(e.Vector) {
		return fmt.Errorf("embedding %d/%s: dimension %d does not match vector length %d",
			e.GameID, e.Field, e.Dimension, len(e.Vector))
	}
	for i, v := range e.Vector {
		if f := float64(v); math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("embedding %d/%s: component %d is not finite", e.GameID, e.Field, i)
		}
	}
	return nil
}
