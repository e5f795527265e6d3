// Package notify announces accepted recommendations.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"
)

// Recommendation is a candidate the agent accepted.
type Recommendation struct {
	ExternalID   int64
	Title        string
	ReleaseDate  *time.Time
	CoverURL     string
	MatchedTitle string
	Score        float64
	Reason       string
}

// Notifier delivers recommendations somewhere a person will see them.
type Notifier interface {
	Notify(ctx context.Context, r Recommendation) error
}

// Noop drops every recommendation.
type Noop struct{}

// Notify implements Notifier.
func (Noop) Notify(context.Context, Recommendation) error { return nil }

const (
	embedColor        = 0x5865F2
	maxDescriptionLen = 2048
)

// Webhook posts Discord-compatible embeds.
type Webhook struct {
	url         string
	username    string
	client      *http.Client
	rateLimiter *rate.Limiter
	logger      *slog.Logger
}

var _ Notifier = (*Webhook)(nil)

// NewWebhook creates a webhook notifier limited to one message per second
// with a burst of 5.
func NewWebhook(url, username string, logger *slog.Logger) *Webhook {
	return &Webhook{
		url:         url,
		username:    username,
		client:      &http.Client{Timeout: 10 * time.Second},
		rateLimiter: rate.NewLimiter(rate.Every(time.Second), 5),
		logger:      logger,
	}
}

// Notify implements Notifier.
func (w *Webhook) Notify(ctx context.Context, r Recommendation) error {
	if err := w.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	body, err := json.Marshal(webhookPayload{
		Username: w.username,
		Embeds:   []embed{buildEmbed(r)},
	})
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	w.logger.Info("recommendation sent", "external_id", r.ExternalID, "title", r.Title)
	return nil
}

func buildEmbed(r Recommendation) embed {
	fields := []embedField{
		{Name: "Score", Value: strconv.FormatFloat(r.Score, 'f', 3, 64), Inline: true},
	}
	if r.MatchedTitle != "" {
		fields = append(fields, embedField{Name: "Because you liked", Value: r.MatchedTitle, Inline: true})
	}
	if r.ReleaseDate != nil {
		fields = append(fields, embedField{Name: "Released", Value: r.ReleaseDate.Format(time.DateOnly), Inline: true})
	}

	e := embed{
		Title:       r.Title,
		Description: truncate(r.Reason, maxDescriptionLen),
		Color:       embedColor,
		Fields:      fields,
		Footer:      embedFooter{Text: "game " + strconv.FormatInt(r.ExternalID, 10)},
	}
	if r.CoverURL != "" {
		e.Thumbnail = &embedImage{URL: r.CoverURL}
	}
	return e
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

type webhookPayload struct {
	Username string  `json:"username,omitempty"`
	Embeds   []embed `json:"embeds"`
}

type embed struct {
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color"`
	Fields      []embedField `json:"fields,omitempty"`
	Thumbnail   *embedImage  `json:"thumbnail,omitempty"`
	Footer      embedFooter  `json:"footer"`
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type embedImage struct {
	URL string `json:"url"`
}

type embedFooter struct {
	Text string `json:"text"`
}
