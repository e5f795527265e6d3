package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gamerec/gamerec/internal/domain"
	"github.com/gamerec/gamerec/internal/store"
)

// UpsertFavorite marks a game as favorite. Re-favoriting replaces the notes
// and keeps the original created_at. An unknown game returns store.ErrNotFound.
func (s *Store) UpsertFavorite(ctx context.Context, f *domain.Favorite) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO favorites (game_id, notes, created_at) VALUES (?, ?, ?)
		ON CONFLICT(game_id) DO UPDATE SET notes = excluded.notes`,
		f.GameID, nullString(f.Notes), formatTime(f.CreatedAt))
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return store.ErrNotFound.WithMessage(fmt.Sprintf("game %d not found", f.GameID))
		}
		return fmt.Errorf("upsert favorite %d: %w", f.GameID, err)
	}
	return nil
}

// DeleteFavorite removes a favorite. Returns store.ErrNotFound if the game was
// not a favorite.
func (s *Store) DeleteFavorite(ctx context.Context, gameID int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM favorites WHERE game_id = ?`, gameID)
	if err != nil {
		return fmt.Errorf("delete favorite %d: %w", gameID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListFavorites returns every favorite with its game, ordered by game id.
func (s *Store) ListFavorites(ctx context.Context) ([]*domain.Favorite, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT f.notes, f.created_at,
			g.external_id, g.slug, g.title, g.description, g.summary, g.storyline,
			g.tag_cache, g.release_date, g.cover_url, g.checksum, g.created_at, g.updated_at
		FROM favorites f
		JOIN games g ON g.external_id = f.game_id
		ORDER BY f.game_id`)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	favorites := []*domain.Favorite{}
	for rows.Next() {
		var (
			notes     sql.NullString
			createdAt string
		)
		g, err := scanGame(prefixScanner{rows: rows, prefix: []any{&notes, &createdAt}})
		if err != nil {
			return nil, err
		}
		fav := &domain.Favorite{GameID: g.ExternalID, Notes: notes.String, Game: g}
		if fav.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		favorites = append(favorites, fav)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return favorites, nil
}

// prefixScanner scans leading columns into prefix before handing the rest
// to the wrapped scan.
type prefixScanner struct {
	rows   *sql.Rows
	prefix []any
}

func (p prefixScanner) Scan(dest ...any) error {
	return p.rows.Scan(append(p.prefix, dest...)...)
}
