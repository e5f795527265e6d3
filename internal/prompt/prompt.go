// Package prompt renders ranked candidates and favorite context into the
// text handed to the recommendation agent.
package prompt

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	domainerrors "github.com/gamerec/gamerec/internal/errors"
	"github.com/gamerec/gamerec/internal/ranking"
	"github.com/gamerec/gamerec/internal/similarity"
)

// Defaults for Options.
const (
	DefaultPrecision          = 3
	DefaultCandidateTextLimit = 320
	DefaultFavoriteTextLimit  = 200
)

const instructions = `You are deciding whether newly released games are worth recommending to a player.
Judge each candidate against the player's favorites listed below. Scores are
similarity estimates between 0 and 1; treat them as evidence, not as the decision.`

const singleSchema = `{"recommend": <true|false>, "reason": "<one or two sentences>"}`

const batchSchema = `[{"id": <candidate id>, "recommend": <true|false>, "reason": "<one or two sentences>"}]`

// Options controls rendering.
type Options struct {
	// Limit keeps only the top-N candidates; 0 keeps all.
	Limit int
	// Precision is the number of decimals scores are rounded to.
	Precision          int
	CandidateTextLimit int
	FavoriteTextLimit  int
}

// Favorite is a favorite game with its user notes.
type Favorite struct {
	Profile *similarity.Profile
	Notes   string
}

// Prompt is the rendered text plus the same data in structured form.
type Prompt struct {
	Text    string  `json:"text"`
	Payload Payload `json:"payload"`
}

// Payload is the structured form of a prompt.
type Payload struct {
	ResponseSchema string           `json:"response_schema"`
	Favorites      []FavoriteEntry  `json:"favorites"`
	Candidates     []CandidateEntry `json:"candidates"`
}

// FavoriteEntry describes one favorite.
type FavoriteEntry struct {
	ExternalID int64    `json:"external_id"`
	Title      string   `json:"title"`
	Tags       []string `json:"tags"`
	Notes      string   `json:"notes,omitempty"`
	About      string   `json:"about,omitempty"`
}

// SignalEntry is one signal of the best match. Score is nil when unavailable.
type SignalEntry struct {
	Signal similarity.Signal `json:"signal"`
	Score  *float64          `json:"score"`
	Weight float64           `json:"weight"`
}

// CandidateEntry describes one ranked candidate.
type CandidateEntry struct {
	Rank        int               `json:"rank"`
	ExternalID  int64             `json:"external_id"`
	Title       string            `json:"title"`
	ReleaseDate string            `json:"release_date,omitempty"`
	Matched     ranking.GameRef   `json:"matched_favorite"`
	Score       float64           `json:"score"`
	Dominant    similarity.Signal `json:"dominant_signal"`
	Gloss       string            `json:"gloss"`
	Signals     []SignalEntry     `json:"signals"`
	About       string            `json:"about,omitempty"`
}

// Builder renders prompts. Identical input always renders identical bytes.
type Builder struct {
	opts Options
}

// NewBuilder creates a builder, filling unset options with defaults.
func NewBuilder(opts Options) *Builder {
	if opts.Precision <= 0 {
		opts.Precision = DefaultPrecision
	}
	if opts.CandidateTextLimit <= 0 {
		opts.CandidateTextLimit = DefaultCandidateTextLimit
	}
	if opts.FavoriteTextLimit <= 0 {
		opts.FavoriteTextLimit = DefaultFavoriteTextLimit
	}
	return &Builder{opts: opts}
}

// WithLimit returns a copy of the builder keeping the top-n candidates.
func (b *Builder) WithLimit(n int) *Builder {
	opts := b.opts
	opts.Limit = n
	return &Builder{opts: opts}
}

// Build renders ranked, which must already be in ranking order.
func (b *Builder) Build(ranked []*ranking.Ranked, favorites []Favorite) (*Prompt, error) {
	if len(ranked) == 0 {
		return nil, domainerrors.EmptyInput("no candidates to render")
	}
	ranked = ranking.Truncate(ranked, b.opts.Limit)

	p := Payload{ResponseSchema: singleSchema}
	if len(ranked) > 1 {
		p.ResponseSchema = batchSchema
	}

	favs := slices.Clone(favorites)
	slices.SortFunc(favs, func(a, c Favorite) int {
		return cmp.Compare(a.Profile.ID(), c.Profile.ID())
	})
	for _, f := range favs {
		g := f.Profile.Game
		p.Favorites = append(p.Favorites, FavoriteEntry{
			ExternalID: g.ExternalID,
			Title:      g.Title,
			Tags:       sortedTags(f.Profile.Tags),
			Notes:      oneLine(f.Notes),
			About:      Truncate(about(g.Summary, g.Description), b.opts.FavoriteTextLimit),
		})
	}

	for i, r := range ranked {
		p.Candidates = append(p.Candidates, b.candidate(i+1, r))
	}

	return &Prompt{Text: b.render(p), Payload: p}, nil
}

func (b *Builder) candidate(rank int, r *ranking.Ranked) CandidateEntry {
	g := r.Candidate.Game
	e := CandidateEntry{
		Rank:       rank,
		ExternalID: g.ExternalID,
		Title:      g.Title,
		Matched:    ranking.GameRef{ExternalID: r.Matched.Game.ExternalID, Title: r.Matched.Game.Title},
		Score:      b.round(r.Overall),
		Dominant:   r.Dominant(),
		About:      Truncate(about(g.Summary, g.Description), b.opts.CandidateTextLimit),
	}
	if g.ReleaseDate != nil {
		e.ReleaseDate = g.ReleaseDate.UTC().Format(time.DateOnly)
	}
	e.Gloss = Gloss(e.Dominant, similarity.Intersection(r.Candidate.Tags, r.Matched.Tags))

	for _, s := range similarity.Signals {
		c, _ := r.Breakdown.Get(s)
		entry := SignalEntry{Signal: s, Weight: b.round(c.Weight)}
		if c.Available {
			v := b.round(c.Score)
			entry.Score = &v
		}
		e.Signals = append(e.Signals, entry)
	}
	return e
}

func (b *Builder) render(p Payload) string {
	var sb strings.Builder
	sb.WriteString(instructions)
	sb.WriteString("\n\nRespond with ONLY JSON of the form:\n")
	sb.WriteString(p.ResponseSchema)
	sb.WriteString("\n\n## Favorites\n")

	for _, f := range p.Favorites {
		fmt.Fprintf(&sb, "- %s (id %d)", f.Title, f.ExternalID)
		if len(f.Tags) > 0 {
			fmt.Fprintf(&sb, " [%s]", strings.Join(f.Tags, ", "))
		}
		sb.WriteByte('\n')
		if f.Notes != "" {
			fmt.Fprintf(&sb, "  Notes: %s\n", f.Notes)
		}
		if f.About != "" {
			fmt.Fprintf(&sb, "  About: %s\n", f.About)
		}
	}

	sb.WriteString("\n## Candidates\n")
	for _, c := range p.Candidates {
		fmt.Fprintf(&sb, "%d. %s (id %d", c.Rank, c.Title, c.ExternalID)
		if c.ReleaseDate != "" {
			fmt.Fprintf(&sb, ", released %s", c.ReleaseDate)
		}
		sb.WriteString(")\n")
		fmt.Fprintf(&sb, "   Best match: %s (id %d)\n", c.Matched.Title, c.Matched.ExternalID)
		fmt.Fprintf(&sb, "   Score: %s\n", b.format(c.Score))
		fmt.Fprintf(&sb, "   Why: %s\n", c.Gloss)
		sb.WriteString("   Signals:")
		for _, s := range c.Signals {
			val := "n/a"
			if s.Score != nil {
				val = b.format(*s.Score)
			}
			fmt.Fprintf(&sb, " %s=%s", s.Signal, val)
		}
		sb.WriteByte('\n')
		if c.About != "" {
			fmt.Fprintf(&sb, "   About: %s\n", c.About)
		}
	}

	return sb.String()
}

func (b *Builder) round(v float64) float64 {
	scale := math.Pow10(b.opts.Precision)
	r := math.Round(v*scale) / scale
	if r == 0 {
		return 0 // no negative zero
	}
	return r
}

func (b *Builder) format(v float64) string {
	return strconv.FormatFloat(v, 'f', b.opts.Precision, 64)
}

// Gloss describes which signal drove a match.
func Gloss(dominant similarity.Signal, sharedTags []string) string {
	switch dominant {
	case similarity.SignalTag:
		if len(sharedTags) == 0 {
			return "matched mostly on tags"
		}
		return "shares tags " + strings.Join(sharedTags, ", ")
	case similarity.SignalTitle:
		return "title is semantically close"
	case similarity.SignalStoryline:
		return "storyline is semantically close"
	case similarity.SignalSummary:
		return "summary is semantically close"
	default:
		return "no dominant signal"
	}
}

const ellipsis = "..."

// Truncate collapses s onto one line and shortens it to at most limit runes,
// ellipsis included, cutting at a word boundary.
func Truncate(s string, limit int) string {
	s = oneLine(s)
	runes := []rune(s)
	if limit <= 0 || len(runes) <= limit {
		return s
	}
	keep := limit - len(ellipsis)
	if keep <= 0 {
		return string(runes[:limit])
	}
	cut := string(runes[:keep])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + ellipsis
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func about(summary, description string) string {
	if strings.TrimSpace(summary) != "" {
		return summary
	}
	return description
}

func sortedTags(tags []string) []string {
	out := slices.Clone(tags)
	slices.Sort(out)
	return slices.Compact(out)
}
