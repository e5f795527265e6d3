package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns server health and the number of ingested games",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status string `json:"status" doc:"Overall status: healthy or unhealthy"`
	Games  int    `json:"games" doc:"Number of ingested games"`
	Error  string `json:"error,omitempty" doc:"Why the database check failed"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) handleHealthCheck(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
	_, total, err := s.services.Games.List(ctx, listOne)
	if err != nil {
		s.logger.Error("health check failed", "error", err)
		return &HealthOutput{Body: HealthResponse{Status: "unhealthy", Error: err.Error()}}, nil
	}
	return &HealthOutput{Body: HealthResponse{Status: "healthy", Games: total}}, nil
}
