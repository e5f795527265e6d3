package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/gamerec/gamerec/internal/errors"
	"github.com/gamerec/gamerec/internal/prompt"
	"github.com/gamerec/gamerec/internal/ranking"
	"github.com/gamerec/gamerec/internal/service"
)

func (s *Server) registerRankingRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "rankCandidates",
		Method:      http.MethodPost,
		Path:        "/api/v1/rankings",
		Summary:     "Rank candidates",
		Description: "Scores candidates against every favorite and returns them best first",
		Tags:        []string{"Recommendations"},
	}, s.handleRank)

	huma.Register(s.api, huma.Operation{
		OperationID: "buildPrompt",
		Method:      http.MethodPost,
		Path:        "/api/v1/prompts",
		Summary:     "Build prompt",
		Description: "Renders the ranked candidates into the agent prompt",
		Tags:        []string{"Recommendations"},
	}, s.handlePrompt)

	huma.Register(s.api, huma.Operation{
		OperationID: "recommend",
		Method:      http.MethodPost,
		Path:        "/api/v1/recommendations",
		Summary:     "Run recommendations",
		Description: "Asks the agent about each top candidate and notifies on accepted ones",
		Tags:        []string{"Recommendations"},
		Middlewares: s.rateLimited(),
	}, s.handleRecommend)
}

// === DTOs ===

// RankRequestBody selects candidates.
type RankRequestBody struct {
	CandidateIDs  []int64 `json:"candidate_ids,omitempty" doc:"Rank exactly these games"`
	ReleasedOn    string  `json:"released_on,omitempty" doc:"Only candidates released on this day (YYYY-MM-DD)"`
	ReleasedSince string  `json:"released_since,omitempty" doc:"Only candidates released on or after this day (YYYY-MM-DD)"`
	Limit         int     `json:"limit,omitempty" minimum:"0" doc:"Keep the top-N candidates; 0 uses the server default"`
}

// RankInput wraps the rank request for Huma.
type RankInput struct {
	Body RankRequestBody `required:"false"`
}

// RankOutput wraps the ranking for Huma.
type RankOutput struct {
	Body struct {
		Candidates []ranking.Summary `json:"candidates"`
	}
}

// PromptOutput wraps a prompt for Huma.
type PromptOutput struct {
	Body *prompt.Prompt
}

// RecommendOutput wraps a recommendation report for Huma.
type RecommendOutput struct {
	Body *service.RecommendReport
}

// === Handlers ===

func (s *Server) handleRank(ctx context.Context, input *RankInput) (*RankOutput, error) {
	req, err := toRankRequest(input.Body)
	if err != nil {
		return nil, err
	}
	r, err := s.services.Recommend.Rank(ctx, req)
	if err != nil {
		return nil, err
	}

	out := &RankOutput{}
	out.Body.Candidates = ranking.Summarize(r.Candidates)
	return out, nil
}

func (s *Server) handlePrompt(ctx context.Context, input *RankInput) (*PromptOutput, error) {
	req, err := toRankRequest(input.Body)
	if err != nil {
		return nil, err
	}
	p, err := s.services.Recommend.Prompt(ctx, req)
	if err != nil {
		return nil, err
	}
	return &PromptOutput{Body: p}, nil
}

func (s *Server) handleRecommend(ctx context.Context, input *RankInput) (*RecommendOutput, error) {
	req, err := toRankRequest(input.Body)
	if err != nil {
		return nil, err
	}
	report, err := s.services.Recommend.Recommend(ctx, req)
	if err != nil {
		return nil, err
	}
	return &RecommendOutput{Body: report}, nil
}

func toRankRequest(b RankRequestBody) (service.RankRequest, error) {
	on, err := parseDate("released_on", b.ReleasedOn)
	if err != nil {
		return service.RankRequest{}, err
	}
	since, err := parseDate("released_since", b.ReleasedSince)
	if err != nil {
		return service.RankRequest{}, err
	}
	return service.RankRequest{
		CandidateIDs:  b.CandidateIDs,
		ReleasedOn:    on,
		ReleasedSince: since,
		Limit:         b.Limit,
	}, nil
}

// parseDate parses an optional YYYY-MM-DD value.
func parseDate(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return nil, domainerrors.ValidationWithDetails(
			"invalid "+field,
			map[string]string{field: "must be a date in YYYY-MM-DD format"},
		)
	}
	return &t, nil
}
