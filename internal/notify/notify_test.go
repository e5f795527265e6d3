package notify

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamerec/gamerec/internal/logger"
)

func TestWebhook_Notify(t *testing.T) {
	var got webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	released := time.Date(2024, 9, 19, 0, 0, 0, 0, time.UTC)
	err := NewWebhook(srv.URL, "gamerec", logger.Discard()).Notify(context.Background(), Recommendation{
		ExternalID:   7,
		Title:        "Nova Drift",
		ReleaseDate:  &released,
		CoverURL:     "https://example.com/c.jpg",
		MatchedTitle: "Asteroids",
		Score:        0.77777,
		Reason:       "Same arcade shooter core.",
	})
	require.NoError(t, err)

	assert.Equal(t, "gamerec", got.Username)
	require.Len(t, got.Embeds, 1)
	e := got.Embeds[0]
	assert.Equal(t, "Nova Drift", e.Title)
	assert.Equal(t, "Same arcade shooter core.", e.Description)
	assert.Equal(t, embedColor, e.Color)
	assert.Equal(t, "game 7", e.Footer.Text)
	require.NotNil(t, e.Thumbnail)
	assert.Equal(t, []embedField{
		{Name: "Score", Value: "0.778", Inline: true},
		{Name: "Because you liked", Value: "Asteroids", Inline: true},
		{Name: "Released", Value: "2024-09-19", Inline: true},
	}, e.Fields)
}

func TestWebhook_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	err := NewWebhook(srv.URL, "", logger.Discard()).Notify(context.Background(), Recommendation{Title: "X"})
	assert.ErrorContains(t, err, "status 400")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	long := strings.Repeat("é", 3000)
	out := truncate(long, maxDescriptionLen)
	assert.Equal(t, maxDescriptionLen, len([]rune(out)))
	assert.True(t, strings.HasSuffix(out, "..."))
}

func TestNoop(t *testing.T) {
	assert.NoError(t, Noop{}.Notify(context.Background(), Recommendation{}))
}
