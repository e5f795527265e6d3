package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/gamerec/gamerec/internal/domain"
	"github.com/gamerec/gamerec/internal/store"
)

const tagColumns = `id, slug, label, created_at, updated_at`

func scanTag(scanner interface{ Scan(dest ...any) error }) (*domain.Tag, error) {
	var t domain.Tag
	var createdAt, updatedAt string

	if err := scanner.Scan(&t.ID, &t.Slug, &t.Label, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// GetTagBySlug retrieves a tag by its slug.
func (q *queries) GetTagBySlug(ctx context.Context, slug string) (*domain.Tag, error) {
	row := q.q.QueryRowContext(ctx, `SELECT `+tagColumns+` FROM tags WHERE slug = ?`, slug)

	t, err := scanTag(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return t, err
}

// CreateTag inserts a new tag. Returns store.ErrAlreadyExists on a slug
// (or id) collision.
func (q *queries) CreateTag(ctx context.Context, t *domain.Tag) error {
	_, err := q.q.ExecContext(ctx,
		`INSERT INTO tags (id, slug, label, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		t.ID, t.Slug, t.Label, formatTime(t.CreatedAt), formatTime(t.UpdatedAt))
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists.WithCause(err)
	}
	if err != nil {
		return fmt.Errorf("insert tag %s: %w", t.Slug, err)
	}
	return nil
}

// LinkGameTag links a tag to a game. Linking an existing pair is a no-op and
// reports false.
func (q *queries) LinkGameTag(ctx context.Context, gameID int64, tagID string) (bool, error) {
	res, err := q.q.ExecContext(ctx,
		`INSERT OR IGNORE INTO game_tags (game_id, tag_id, created_at) VALUES (?, ?, ?)`,
		gameID, tagID, formatTime(time.Now()))
	if err != nil {
		return false, fmt.Errorf("link game %d to tag %s: %w", gameID, tagID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ClearGameTags removes every tag link of a game. Tags themselves stay.
func (q *queries) ClearGameTags(ctx context.Context, gameID int64) error {
	if _, err := q.q.ExecContext(ctx, `DELETE FROM game_tags WHERE game_id = ?`, gameID); err != nil {
		return fmt.Errorf("clear tags for game %d: %w", gameID, err)
	}
	return nil
}

// ListTags returns the whole vocabulary ordered by slug.
func (s *Store) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+tagColumns+` FROM tags ORDER BY slug`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()
	return collectTags(rows)
}

// GetGameTags returns the tags linked to a game ordered by slug.
func (s *Store) GetGameTags(ctx context.Context, gameID int64) ([]*domain.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.slug, t.label, t.created_at, t.updated_at
		FROM tags t
		JOIN game_tags gt ON gt.tag_id = t.id
		WHERE gt.game_id = ?
		ORDER BY t.slug`, gameID)
	if err != nil {
		return nil, fmt.Errorf("get tags for game %d: %w", gameID, err)
	}
	defer rows.Close()
	return collectTags(rows)
}

// GetTagSlugs returns the sorted tag slugs of each game. Games without tags
// are present with an empty slice.
func (s *Store) GetTagSlugs(ctx context.Context, gameIDs []int64) (map[int64][]string, error) {
	result := make(map[int64][]string, len(gameIDs))
	if len(gameIDs) == 0 {
		return result, nil
	}
	for _, id := range gameIDs {
		result[id] = []string{}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT gt.game_id, t.slug
		FROM game_tags gt
		JOIN tags t ON t.id = gt.tag_id
		WHERE gt.game_id IN (`+placeholders(len(gameIDs))+`)`,
		int64Args(gameIDs)...)
	if err != nil {
		return nil, fmt.Errorf("get tag slugs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var gameID int64
		var slug string
		if err := rows.Scan(&gameID, &slug); err != nil {
			return nil, err
		}
		result[gameID] = append(result[gameID], slug)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	for _, slugs := range result {
		sort.Strings(slugs)
	}
	return result, nil
}

func collectTags(rows *sql.Rows) ([]*domain.Tag, error) {
	tags := []*domain.Tag{}
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return tags, nil
}
