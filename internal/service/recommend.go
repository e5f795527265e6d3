package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gamerec/gamerec/internal/agent"
	"github.com/gamerec/gamerec/internal/domain"
	domainerrors "github.com/gamerec/gamerec/internal/errors"
	"github.com/gamerec/gamerec/internal/metrics"
	"github.com/gamerec/gamerec/internal/notify"
	"github.com/gamerec/gamerec/internal/prompt"
	"github.com/gamerec/gamerec/internal/ranking"
	"github.com/gamerec/gamerec/internal/similarity"
	"github.com/gamerec/gamerec/internal/store"
)

// RankRequest selects candidates to rank against the favorites.
type RankRequest struct {
	// CandidateIDs ranks exactly these games. When empty, every game that is
	// not a favorite is a candidate, filtered by the release options.
	CandidateIDs  []int64
	ReleasedOn    *time.Time
	ReleasedSince *time.Time
	// Limit keeps the top-N candidates; 0 uses the configured default.
	Limit int
}

// Ranking is a sorted candidate list with the favorites it was scored against.
type Ranking struct {
	Candidates []*ranking.Ranked
	Favorites  []prompt.Favorite
}

// RecommendItem is the outcome for one judged candidate.
type RecommendItem struct {
	ExternalID int64           `json:"external_id"`
	Title      string          `json:"title"`
	Score      float64         `json:"score"`
	Verdict    *domain.Verdict `json:"verdict,omitempty"`
	Notified   bool            `json:"notified"`
	Error      string          `json:"error,omitempty"`
	Err        error           `json:"-"`
}

// RecommendReport collects the verdicts of one recommendation run.
type RecommendReport struct {
	Items       []RecommendItem `json:"items"`
	Recommended int             `json:"recommended"`
	Failed      int             `json:"failed"`
}

// RecommendOptions configures a RecommendService.
type RecommendOptions struct {
	// DefaultLimit applies when a request has no limit.
	DefaultLimit int
	// Workers bounds parallel candidate scoring.
	Workers int
}

// RecommendService ranks candidates, renders prompts, and hands them to the
// agent.
type RecommendService struct {
	store    store.Store
	engine   *similarity.Engine
	builder  *prompt.Builder
	judge    agent.Judge
	notifier notify.Notifier
	metrics  *metrics.Metrics
	opts     RecommendOptions
	logger   *slog.Logger
}

// NewRecommendService creates a new recommend service. judge may be nil, in
// which case Recommend reports the agent as unavailable.
func NewRecommendService(
	st store.Store,
	engine *similarity.Engine,
	builder *prompt.Builder,
	judge agent.Judge,
	notifier notify.Notifier,
	m *metrics.Metrics,
	opts RecommendOptions,
	logger *slog.Logger,
) *RecommendService {
	if notifier == nil {
		notifier = notify.Noop{}
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &RecommendService{
		store:    st,
		engine:   engine,
		builder:  builder,
		judge:    judge,
		notifier: notifier,
		metrics:  m,
		opts:     opts,
		logger:   logger,
	}
}

// Rank scores candidates against every favorite and returns them sorted and
// truncated to the request limit. Candidates that are favorites are skipped.
func (s *RecommendService) Rank(ctx context.Context, req RankRequest) (*Ranking, error) {
	start := time.Now()

	favs, err := s.store.ListFavorites(ctx)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	if len(favs) == 0 {
		return nil, domainerrors.EmptyInput("no favorites to rank against")
	}

	favGames := make([]*domain.Game, len(favs))
	for i, f := range favs {
		favGames[i] = f.Game
	}
	favProfiles, err := s.loadProfiles(ctx, favGames)
	if err != nil {
		return nil, err
	}

	candGames, err := s.candidateGames(ctx, req)
	if err != nil {
		return nil, err
	}
	candProfiles, err := s.loadProfiles(ctx, candGames)
	if err != nil {
		return nil, err
	}
	candProfiles = ranking.ExcludeFavorites(candProfiles, favs)

	// Each worker writes only its own slot; ordering is decided after.
	ranked := make([]*ranking.Ranked, len(candProfiles))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for i, c := range candProfiles {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := ranking.RankOne(s.engine, c, favProfiles)
			if err != nil {
				return fmt.Errorf("rank game %d: %w", c.ID(), err)
			}
			ranked[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	ranking.Sort(ranked)

	limit := req.Limit
	if limit <= 0 {
		limit = s.opts.DefaultLimit
	}
	ranked = ranking.Truncate(ranked, limit)

	promptFavs := make([]prompt.Favorite, len(favs))
	for i, f := range favs {
		promptFavs[i] = prompt.Favorite{Profile: favProfiles[i], Notes: f.Notes}
	}

	s.metrics.ObserveRank(start)
	s.logger.Debug("candidates ranked",
		"candidates", len(candProfiles),
		"favorites", len(favProfiles),
		"returned", len(ranked),
		"duration", time.Since(start),
	)
	return &Ranking{Candidates: ranked, Favorites: promptFavs}, nil
}

// Prompt ranks candidates and renders all of them into one prompt. The
// request limit, or the default limit, decides how many are kept.
func (s *RecommendService) Prompt(ctx context.Context, req RankRequest) (*prompt.Prompt, error) {
	r, err := s.Rank(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.builder.WithLimit(len(r.Candidates)).Build(r.Candidates, r.Favorites)
}

// Recommend asks the agent about each top-ranked candidate with its own
// prompt and notifies on accepted ones. A failing candidate is recorded and
// the run continues.
func (s *RecommendService) Recommend(ctx context.Context, req RankRequest) (*RecommendReport, error) {
	if s.judge == nil {
		return nil, domainerrors.Unavailable("no agent command configured")
	}

	r, err := s.Rank(ctx, req)
	if err != nil {
		return nil, err
	}

	report := &RecommendReport{Items: make([]RecommendItem, 0, len(r.Candidates))}
	for _, c := range r.Candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		item := s.recommendOne(ctx, c, r.Favorites)
		if item.Err != nil {
			item.Error = item.Err.Error()
			report.Failed++
			s.logger.Warn("recommendation failed", "external_id", item.ExternalID, "error", item.Err)
		} else if item.Verdict.Recommend {
			report.Recommended++
		}
		report.Items = append(report.Items, item)
	}

	s.logger.Info("recommendation run finished",
		"candidates", len(r.Candidates),
		"recommended", report.Recommended,
		"failed", report.Failed,
	)
	return report, nil
}

func (s *RecommendService) recommendOne(ctx context.Context, c *ranking.Ranked, favs []prompt.Favorite) RecommendItem {
	g := c.Candidate.Game
	item := RecommendItem{ExternalID: g.ExternalID, Title: g.Title, Score: c.Overall}

	p, err := s.builder.Build([]*ranking.Ranked{c}, favs)
	if err != nil {
		item.Err = err
		return item
	}

	verdict, err := s.judge.Judge(ctx, p.Text)
	if err != nil {
		item.Err = err
		return item
	}
	item.Verdict = verdict
	s.metrics.ObserveVerdict(verdict.Recommend)

	if !verdict.Recommend {
		return item
	}

	err = s.notifier.Notify(ctx, notify.Recommendation{
		ExternalID:   g.ExternalID,
		Title:        g.Title,
		ReleaseDate:  g.ReleaseDate,
		CoverURL:     g.CoverURL,
		MatchedTitle: c.Matched.Game.Title,
		Score:        c.Overall,
		Reason:       verdict.Reason,
	})
	if err != nil {
		item.Err = fmt.Errorf("notify: %w", err)
		return item
	}
	item.Notified = true
	return item
}

func (s *RecommendService) candidateGames(ctx context.Context, req RankRequest) ([]*domain.Game, error) {
	if len(req.CandidateIDs) == 0 {
		games, err := s.store.ListGames(ctx, store.ListGamesOptions{
			ReleasedOn:    req.ReleasedOn,
			ReleasedSince: req.ReleasedSince,
		})
		if err != nil {
			return nil, fmt.Errorf("list candidates: %w", err)
		}
		return games, nil
	}

	ids := slices.Clone(req.CandidateIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	games, err := s.store.GetGames(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get candidates: %w", err)
	}
	if len(games) != len(ids) {
		found := make(map[int64]bool, len(games))
		for _, g := range games {
			found[g.ExternalID] = true
		}
		for _, id := range ids {
			if !found[id] {
				return nil, domainerrors.NotFoundf("game %d not found", id)
			}
		}
	}
	return games, nil
}

// loadProfiles attaches tag slugs and embeddings to games, preserving order.
func (s *RecommendService) loadProfiles(ctx context.Context, games []*domain.Game) ([]*similarity.Profile, error) {
	ids := make([]int64, len(games))
	for i, g := range games {
		ids[i] = g.ExternalID
	}

	slugs, err := s.store.GetTagSlugs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}
	embs, err := s.store.GetEmbeddingsForGames(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load embeddings: %w", err)
	}

	profiles := make([]*similarity.Profile, len(games))
	for i, g := range games {
		profiles[i] = similarity.NewProfile(g, slugs[g.ExternalID], embs[g.ExternalID])
	}
	return profiles, nil
}
