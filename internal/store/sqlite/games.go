package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/gamerec/gamerec/internal/domain"
	"github.com/gamerec/gamerec/internal/store"
)

// gameColumns is the ordered list of columns selected in game queries.
// Must match the scan order in scanGame.
const gameColumns = `external_id, slug, title, description, summary, storyline,
	tag_cache, release_date, cover_url, checksum, created_at, updated_at`

func scanGame(scanner interface{ Scan(dest ...any) error }) (*domain.Game, error) {
	var g domain.Game

	var (
		slug        sql.NullString
		summary     sql.NullString
		storyline   sql.NullString
		tagCache    string
		releaseDate sql.NullString
		coverURL    sql.NullString
		createdAt   string
		updatedAt   string
	)

	err := scanner.Scan(
		&g.ExternalID,
		&slug,
		&g.Title,
		&g.Description,
		&summary,
		&storyline,
		&tagCache,
		&releaseDate,
		&coverURL,
		&g.Checksum,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	g.Slug = slug.String
	g.Summary = summary.String
	g.Storyline = storyline.String
	g.CoverURL = coverURL.String

	if err := json.Unmarshal([]byte(tagCache), &g.TagCache); err != nil {
		return nil, fmt.Errorf("decode tag cache for game %d: %w", g.ExternalID, err)
	}
	if g.ReleaseDate, err = parseNullableDate(releaseDate); err != nil {
		return nil, err
	}
	if g.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if g.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	return &g, nil
}

// GetGame retrieves a game by external id.
// Returns store.ErrNotFound if the game does not exist.
func (q *queries) GetGame(ctx context.Context, externalID int64) (*domain.Game, error) {
	row := q.q.QueryRowContext(ctx,
		`SELECT `+gameColumns+` FROM games WHERE external_id = ?`, externalID)

	g, err := scanGame(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return g, err
}

// GetGameBySlug retrieves a game by slug.
// Returns store.ErrNotFound if no game owns the slug.
func (q *queries) GetGameBySlug(ctx context.Context, slug string) (*domain.Game, error) {
	row := q.q.QueryRowContext(ctx,
		`SELECT `+gameColumns+` FROM games WHERE slug = ?`, slug)

	g, err := scanGame(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return g, err
}

// UpsertGame inserts a game or updates every mutable column in place.
// created_at is kept from the first insert. A slug owned by another game
// returns store.ErrAlreadyExists.
func (q *queries) UpsertGame(ctx context.Context, g *domain.Game) error {
	tagCache := g.TagCache
	if tagCache == nil {
		tagCache = []string{}
	}
	tagJSON, err := json.Marshal(tagCache)
	if err != nil {
		return fmt.Errorf("encode tag cache: %w", err)
	}

	_, err = q.q.ExecContext(ctx, `
		INSERT INTO games (
			external_id, slug, title, description, summary, storyline,
			tag_cache, release_date, cover_url, checksum, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(external_id) DO UPDATE SET
			slug = excluded.slug,
			title = excluded.title,
			description = excluded.description,
			summary = excluded.summary,
			storyline = excluded.storyline,
			tag_cache = excluded.tag_cache,
			release_date = excluded.release_date,
			cover_url = excluded.cover_url,
			checksum = excluded.checksum,
			updated_at = excluded.updated_at`,
		g.ExternalID,
		nullString(g.Slug),
		g.Title,
		g.Description,
		nullString(g.Summary),
		nullString(g.Storyline),
		string(tagJSON),
		nullDate(g.ReleaseDate),
		nullString(g.CoverURL),
		g.Checksum,
		formatTime(g.CreatedAt),
		formatTime(g.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists.WithCause(err)
	}
	if err != nil {
		return fmt.Errorf("upsert game %d: %w", g.ExternalID, err)
	}
	return nil
}

// DeleteGame removes a game; tag links, favorites, and embeddings cascade.
func (s *Store) DeleteGame(ctx context.Context, externalID int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM games WHERE external_id = ?`, externalID)
	if err != nil {
		return fmt.Errorf("delete game %d: %w", externalID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListGames returns games ordered by release date (newest first, undated
// last) and then external id.
func (s *Store) ListGames(ctx context.Context, opts store.ListGamesOptions) ([]*domain.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE 1 = 1`
	var args []any

	if opts.ReleasedOn != nil {
		query += ` AND release_date = ?`
		args = append(args, opts.ReleasedOn.UTC().Format(time.DateOnly))
	}
	if opts.ReleasedSince != nil {
		query += ` AND release_date >= ?`
		args = append(args, opts.ReleasedSince.UTC().Format(time.DateOnly))
	}

	query += ` ORDER BY release_date IS NULL, release_date DESC, external_id ASC`

	if opts.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, opts.Limit, opts.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	return collectGames(rows)
}

// GetGames returns the games with the given ids ordered by external id.
// Unknown ids are skipped.
func (s *Store) GetGames(ctx context.Context, externalIDs []int64) ([]*domain.Game, error) {
	if len(externalIDs) == 0 {
		return []*domain.Game{}, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+gameColumns+` FROM games WHERE external_id IN (`+placeholders(len(externalIDs))+`)
		ORDER BY external_id ASC`,
		int64Args(externalIDs)...)
	if err != nil {
		return nil, fmt.Errorf("get games: %w", err)
	}
	defer rows.Close()

	return collectGames(rows)
}

// CountGames returns the number of games.
func (s *Store) CountGames(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM games`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count games: %w", err)
	}
	return n, nil
}

func collectGames(rows *sql.Rows) ([]*domain.Game, error) {
	games := []*domain.Game{}
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return games, nil
}
