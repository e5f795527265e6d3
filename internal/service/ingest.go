package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gamerec/gamerec/internal/catalog"
	"github.com/gamerec/gamerec/internal/domain"
	"github.com/gamerec/gamerec/internal/embedding"
	domainerrors "github.com/gamerec/gamerec/internal/errors"
	"github.com/gamerec/gamerec/internal/id"
	"github.com/gamerec/gamerec/internal/metrics"
	"github.com/gamerec/gamerec/internal/store"
	"github.com/gamerec/gamerec/internal/tags"
)

// IngestItem is the outcome for one payload of a batch.
type IngestItem struct {
	Index          int                    `json:"index"`
	ExternalID     int64                  `json:"external_id"`
	Title          string                 `json:"title,omitempty"`
	Classification catalog.Classification `json:"classification,omitempty"`
	Tags           []string               `json:"tags,omitempty"`
	Embedded       []domain.Field         `json:"embedded,omitempty"`
	Error          string                 `json:"error,omitempty"`
	ErrorCode      domainerrors.Code      `json:"error_code,omitempty"`
	Err            error                  `json:"-"`
}

// Failed reports whether the item was not ingested.
func (i *IngestItem) Failed() bool { return i.Err != nil }

// IngestCounts summarizes a batch.
type IngestCounts struct {
	New       int `json:"new"`
	Changed   int `json:"changed"`
	Unchanged int `json:"unchanged"`
	Failed    int `json:"failed"`
}

// IngestReport is the per-item summary of one batch.
type IngestReport struct {
	RunID    string        `json:"run_id"`
	Items    []IngestItem  `json:"items"`
	Counts   IngestCounts  `json:"counts"`
	Duration time.Duration `json:"duration_ns"`
}

// IngestService orchestrates normalization, tag reconciliation, and
// embedding for catalog payloads.
type IngestService struct {
	store      store.Store
	normalizer *catalog.Normalizer
	reconciler *tags.Reconciler
	embedder   *embedding.Embedder
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// NewIngestService creates a new ingest service.
func NewIngestService(
	st store.Store,
	normalizer *catalog.Normalizer,
	reconciler *tags.Reconciler,
	embedder *embedding.Embedder,
	m *metrics.Metrics,
	logger *slog.Logger,
) *IngestService {
	return &IngestService{
		store:      st,
		normalizer: normalizer,
		reconciler: reconciler,
		embedder:   embedder,
		metrics:    m,
		logger:     logger,
	}
}

// IngestBatch ingests payloads in order. A failing payload is recorded in
// the report and never stops the rest of the batch. Only context
// cancellation aborts the run.
func (s *IngestService) IngestBatch(ctx context.Context, payloads []catalog.Payload) (*IngestReport, error) {
	runID, err := id.NewRunID()
	if err != nil {
		return nil, fmt.Errorf("generate run id: %w", err)
	}
	start := time.Now()
	log := s.logger.With("run_id", runID)

	report := &IngestReport{RunID: runID, Items: make([]IngestItem, 0, len(payloads))}
	for i, p := range payloads {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		item := s.ingestOne(ctx, p)
		item.Index = i

		if item.Failed() {
			item.Error = item.Err.Error()
			item.ErrorCode = domainerrors.CodeOf(item.Err)
			report.Counts.Failed++
			s.metrics.ObserveIngestFailure()
			log.Warn("ingest failed", "index", i, "external_id", item.ExternalID, "error", item.Err)
		} else {
			switch item.Classification {
			case catalog.New:
				report.Counts.New++
			case catalog.Changed:
				report.Counts.Changed++
			case catalog.Unchanged:
				report.Counts.Unchanged++
			}
			s.metrics.ObserveIngest(string(item.Classification))
		}
		report.Items = append(report.Items, item)
	}

	report.Duration = time.Since(start)
	log.Info("ingest run finished",
		"items", len(payloads),
		"new", report.Counts.New,
		"changed", report.Counts.Changed,
		"unchanged", report.Counts.Unchanged,
		"failed", report.Counts.Failed,
		"duration", report.Duration,
	)
	return report, nil
}

// ImportFile decodes a JSON array or JSON-lines file of payloads and
// ingests it. A file that cannot be decoded is a validation error.
func (s *IngestService) ImportFile(ctx context.Context, path string) (*IngestReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	payloads, err := catalog.DecodePayloads(data)
	if err != nil {
		return nil, domainerrors.Wrapf(err, domainerrors.CodeValidation, "decode %s", path)
	}
	return s.IngestBatch(ctx, payloads)
}

func (s *IngestService) ingestOne(ctx context.Context, p catalog.Payload) IngestItem {
	item := IngestItem{ExternalID: p.ExternalID, Title: p.Title}

	n, err := s.normalizer.Normalize(p)
	if err != nil {
		item.Err = err
		return item
	}
	g := n.Game
	item.Title = g.Title

	class, _, err := s.normalizer.Classify(ctx, s.store, g)
	if err != nil {
		item.Err = err
		return item
	}
	if !class.NeedsWrite() {
		item.Classification = class
		return item
	}

	// Vectors are fetched before the transaction opens; a provider failure
	// leaves the stored game and its checksum untouched.
	embs, err := s.embedder.EmbedGame(ctx, g)
	if err != nil {
		item.Err = err
		return item
	}

	err = s.store.WithTx(ctx, func(tx store.Tx) error {
		res, err := s.normalizer.Apply(ctx, tx, g)
		if err != nil {
			return err
		}
		item.Classification = res.Classification
		if !res.Classification.NeedsWrite() {
			return nil
		}

		tagRes, err := s.reconciler.Reconcile(ctx, tx, g.ExternalID, n.Tags, tags.Replace)
		if err != nil {
			return err
		}
		item.Tags = tagRes.Slugs()

		for _, e := range embs {
			if err := tx.UpsertEmbedding(ctx, e); err != nil {
				return fmt.Errorf("store %s embedding: %w", e.Field, err)
			}
		}
		item.Embedded = embedding.Fields(embs)
		return tx.DeleteEmbeddingsExcept(ctx, g.ExternalID, item.Embedded)
	})
	if err != nil {
		item.Classification = ""
		item.Tags = nil
		item.Embedded = nil
		item.Err = err
		return item
	}

	s.logger.Debug("game ingested",
		"external_id", g.ExternalID,
		"classification", item.Classification,
		"tags", len(item.Tags),
		"embedded", len(item.Embedded),
	)
	return item
}
