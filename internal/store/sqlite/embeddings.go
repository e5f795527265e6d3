package sqlite

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/goccy/go-json"

	"github.com/gamerec/gamerec/internal/domain"
	"github.com/gamerec/gamerec/internal/store"
)

const embeddingColumns = `game_id, field, dimension, vector, metadata, updated_at`

// packVector encodes a vector as little-endian float32s.
func packVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func unpackVector(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("vector blob length %d is not a multiple of 4", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v, nil
}

func scanEmbedding(scanner interface{ Scan(dest ...any) error }) (*domain.Embedding, error) {
	var (
		e         domain.Embedding
		field     string
		blob      []byte
		metadata  string
		updatedAt string
	)
	if err := scanner.Scan(&e.GameID, &field, &e.Dimension, &blob, &metadata, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if e.Field, err = domain.ParseField(field); err != nil {
		return nil, err
	}
	if e.Vector, err = unpackVector(blob); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(metadata), &e.Metadata); err != nil {
		return nil, fmt.Errorf("decode embedding metadata: %w", err)
	}
	if e.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

// UpsertEmbedding stores the vector for a (game, field) pair, replacing any
// previous one.
func (q *queries) UpsertEmbedding(ctx context.Context, e *domain.Embedding) error {
	if err := e.Validate(); err != nil {
		return store.ErrInvalidInput.WithCause(err)
	}
	meta, err := json.Marshal(e.Metadata)
	if err != nil {
		return fmt.Errorf("encode embedding metadata: %w", err)
	}

	_, err = q.q.ExecContext(ctx, `
		INSERT INTO embeddings (`+embeddingColumns+`) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(game_id, field) DO UPDATE SET
			dimension = excluded.dimension,
			vector = excluded.vector,
			metadata = excluded.metadata,
			updated_at = excluded.updated_at`,
		e.GameID, string(e.Field), e.Dimension, packVector(e.Vector), string(meta), formatTime(e.UpdatedAt))
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return store.ErrNotFound.WithMessage(fmt.Sprintf("game %d not found", e.GameID))
		}
		return fmt.Errorf("upsert embedding %d/%s: %w", e.GameID, e.Field, err)
	}
	return nil
}

// DeleteEmbeddingsExcept removes the game's vectors for every field not in keep.
func (q *queries) DeleteEmbeddingsExcept(ctx context.Context, gameID int64, keep []domain.Field) error {
	query := `DELETE FROM embeddings WHERE game_id = ?`
	args := []any{gameID}
	if len(keep) > 0 {
		query += ` AND field NOT IN (` + placeholders(len(keep)) + `)`
		for _, f := range keep {
			args = append(args, string(f))
		}
	}
	if _, err := q.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete embeddings for game %d: %w", gameID, err)
	}
	return nil
}

// GetEmbeddings returns a game's vectors in field priority order.
func (s *Store) GetEmbeddings(ctx context.Context, gameID int64) ([]*domain.Embedding, error) {
	byGame, err := s.GetEmbeddingsForGames(ctx, []int64{gameID})
	if err != nil {
		return nil, err
	}
	return byGame[gameID], nil
}

// GetEmbeddingsForGames returns vectors grouped by game, each group in field
// priority order. Games without vectors map to an empty slice.
func (s *Store) GetEmbeddingsForGames(ctx context.Context, gameIDs []int64) (map[int64][]*domain.Embedding, error) {
	result := make(map[int64][]*domain.Embedding, len(gameIDs))
	if len(gameIDs) == 0 {
		return result, nil
	}
	for _, id := range gameIDs {
		result[id] = []*domain.Embedding{}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+embeddingColumns+` FROM embeddings
		WHERE game_id IN (`+placeholders(len(gameIDs))+`)
		ORDER BY game_id,
			CASE field WHEN 'title' THEN 0 WHEN 'storyline' THEN 1 ELSE 2 END`,
		int64Args(gameIDs)...)
	if err != nil {
		return nil, fmt.Errorf("get embeddings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		e, err := scanEmbedding(rows)
		if err != nil {
			return nil, err
		}
		result[e.GameID] = append(result[e.GameID], e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return result, nil
}
