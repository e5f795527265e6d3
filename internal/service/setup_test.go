package service

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gamerec/gamerec/internal/catalog"
	"github.com/gamerec/gamerec/internal/domain"
	"github.com/gamerec/gamerec/internal/embedding"
	"github.com/gamerec/gamerec/internal/logger"
	"github.com/gamerec/gamerec/internal/metrics"
	"github.com/gamerec/gamerec/internal/notify"
	"github.com/gamerec/gamerec/internal/prompt"
	"github.com/gamerec/gamerec/internal/similarity"
	"github.com/gamerec/gamerec/internal/store/sqlite"
	"github.com/gamerec/gamerec/internal/tags"
	"github.com/gamerec/gamerec/internal/validation"
)

// stubProvider returns a fixed vector unless the text has an override.
type stubProvider struct {
	mu       sync.Mutex
	calls    int
	err      error
	override map[string][]float32
}

func (p *stubProvider) Name() string  { return "stub" }
func (p *stubProvider) Model() string { return "stub-model" }

func (p *stubProvider) Embed(_ context.Context, reqs []embedding.Request) ([][]float32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	out := make([][]float32, len(reqs))
	for i, r := range reqs {
		if v, ok := p.override[r.Text]; ok {
			out[i] = v
			continue
		}
		out[i] = []float32{1, 1, 0}
	}
	return out, nil
}

func (p *stubProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// stubJudge recommends any prompt that mentions accept.
type stubJudge struct {
	accept  string
	err     error
	prompts []string
}

func (j *stubJudge) Judge(_ context.Context, p string) (*domain.Verdict, error) {
	j.prompts = append(j.prompts, p)
	if j.err != nil {
		return nil, j.err
	}
	if strings.Contains(p, j.accept) {
		return &domain.Verdict{Recommend: true, Reason: "close to a favorite"}, nil
	}
	return &domain.Verdict{Recommend: false, Reason: "not a fit"}, nil
}

type recordingNotifier struct {
	sent []notify.Recommendation
}

func (n *recordingNotifier) Notify(_ context.Context, r notify.Recommendation) error {
	n.sent = append(n.sent, r)
	return nil
}

type testEnv struct {
	store     *sqlite.Store
	provider  *stubProvider
	judge     *stubJudge
	notifier  *recordingNotifier
	ingest    *IngestService
	favorites *FavoriteService
	games     *GameService
	recommend *RecommendService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := logger.Discard()

	st, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	engine, err := similarity.NewEngine(similarity.DefaultWeights())
	require.NoError(t, err)

	env := &testEnv{
		store:    st,
		provider: &stubProvider{},
		judge:    &stubJudge{},
		notifier: &recordingNotifier{},
	}
	m := metrics.New()
	env.ingest = NewIngestService(
		st,
		catalog.NewNormalizer(validation.New()),
		tags.NewReconciler(log),
		embedding.NewEmbedder(env.provider, log),
		m,
		log,
	)
	env.favorites = NewFavoriteService(st, log)
	env.games = NewGameService(st)
	env.recommend = NewRecommendService(
		st, engine, prompt.NewBuilder(prompt.Options{}), env.judge, env.notifier, m,
		RecommendOptions{DefaultLimit: 10, Workers: 4}, log,
	)
	return env
}

func testPayload(id int64, title string, tagLabels ...string) catalog.Payload {
	return catalog.Payload{
		ExternalID:  id,
		Title:       title,
		Description: title + " is a game.",
		Tags:        tagLabels,
	}
}

func (e *testEnv) mustIngest(t *testing.T, payloads ...catalog.Payload) *IngestReport {
	t.Helper()
	report, err := e.ingest.IngestBatch(context.Background(), payloads)
	require.NoError(t, err)
	require.Zero(t, report.Counts.Failed, "unexpected failures: %+v", report.Items)
	return report
}
