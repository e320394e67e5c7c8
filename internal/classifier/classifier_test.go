package classifier

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/distress/internal/cache"
	"github.com/ppiankov/distress/internal/model"
	"github.com/ppiankov/distress/internal/worker"
)

func TestNewScores(t *testing.T) {
	s := NewScores(0.7, 0.2, 0.1)

	assert.InDelta(t, -0.54, s.Sentiment, 1e-9)
	assert.InDelta(t, 0.7, s.Confidence, 1e-9)
	assert.InDelta(t, 1.0, s.Negative+s.Neutral+s.Positive, 1e-9)
}

func TestNewScores_Normalizes(t *testing.T) {
	s := NewScores(0, 2, 2)

	assert.InDelta(t, 0.5, s.Neutral, 1e-9)
	assert.InDelta(t, 0.5, s.Positive, 1e-9)
	assert.InDelta(t, 0.375, s.Sentiment, 1e-9)
	assert.InDelta(t, 0.5, s.Confidence, 1e-9)
}

func TestNewScores_ZeroIsNeutral(t *testing.T) {
	assert.Equal(t, model.NeutralScore(), NewScores(0, 0, 0))
	assert.Equal(t, model.NeutralScore(), NewScores(-1, 0, 0))
}

func TestParseProbabilities(t *testing.T) {
	s, err := parseProbabilities("```json\n{\"negative\": 0.8, \"neutral\": 0.1, \"positive\": 0.1}\n```")
	require.NoError(t, err)
	assert.InDelta(t, 0.8, s.Negative, 1e-9)

	_, err = parseProbabilities("I think it is negative.")
	assert.Error(t, err)

	_, err = parseProbabilities(`{"negative": 0, "neutral": 0, "positive": 0}`)
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abcdef", 3))
	assert.Equal(t, "abc", truncate("abc", 10))
	assert.Equal(t, "déf", truncate("défaut", 3))
	assert.Equal(t, "abc", truncate("abc", 0))
}

func TestWordlist(t *testing.T) {
	c := NewWordlist()
	ctx := context.Background()

	neg, err := c.Classify(ctx, "Sales declined and losses widened amid weak demand.")
	require.NoError(t, err)
	assert.InDelta(t, 0.75, neg.Negative, 1e-9)
	assert.InDelta(t, 0.25, neg.Neutral, 1e-9)
	assert.Less(t, neg.Sentiment, 0.0)

	pos, err := c.Classify(ctx, "Margins improved on strong demand.")
	require.NoError(t, err)
	assert.Greater(t, pos.Sentiment, 0.0)

	neu, err := c.Classify(ctx, "The company operates stores in Ohio.")
	require.NoError(t, err)
	assert.Equal(t, 1.0, neu.Neutral)
	assert.Zero(t, neu.Sentiment)
}

func TestStatic(t *testing.T) {
	s := NewStatic(0.6)
	s.Scores = map[string]model.ClassifierScore{"Bad.": {Sentiment: -0.9, Confidence: 0.9}}

	got, err := s.Classify(context.Background(), "Anything.")
	require.NoError(t, err)
	assert.Equal(t, 0.6, got.Sentiment)

	got, err = s.Classify(context.Background(), "Bad.")
	require.NoError(t, err)
	assert.Equal(t, -0.9, got.Sentiment)
	assert.Equal(t, 2, s.Calls())
}

func TestNew(t *testing.T) {
	tests := []struct {
		provider string
		want     string
		wantErr  bool
	}{
		{"wordlist", "wordlist", false},
		{"", "neutral", false},
		{"neutral", "neutral", false},
		{"ollama", "ollama", false},
		{"finbert", "finbert", false},
		{"openai", "", true},
		{"claude", "", true},
		{"bert-from-mars", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			c, err := New(model.ClassifierConfig{Provider: tt.provider})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Name())
		})
	}
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(model.ClassifierConfig{Provider: "bert-from-mars"})
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestBuild(t *testing.T) {
	ctx := context.Background()

	cfg := model.DefaultConfig()
	cfg.Cache.Enabled = false
	cfg.Classifier.Provider = "openai"

	// Missing key degrades to neutral
	c, err := Build(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, "neutral", c.Name())

	cfg.Classifier.Strict = true
	_, err = Build(ctx, cfg)
	assert.Error(t, err)

	cfg.Classifier.Provider = "bert-from-mars"
	cfg.Classifier.Strict = false
	_, err = Build(ctx, cfg)
	assert.ErrorIs(t, err, ErrUnknownProvider)

	cfg.Classifier.Provider = "ollama"
	c, err = Build(ctx, cfg)
	require.NoError(t, err)
	g, ok := c.(*Guard)
	require.True(t, ok)
	_, limited := g.Unwrap().(*RateLimited)
	assert.True(t, limited, "remote providers are rate limited")
}

// recorder records the sentences it receives
type recorder struct {
	mu    sync.Mutex
	seen  []string
	err   error
	score model.ClassifierScore
}

func (r *recorder) Name() string { return "recorder" }

func (r *recorder) Classify(_ context.Context, sentence string) (model.ClassifierScore, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, sentence)
	return r.score, r.err
}

// batchRecorder adds a batch endpoint that can be made to fail
type batchRecorder struct {
	recorder
	batchErr   error
	batchCalls int
}

func (b *batchRecorder) ClassifyBatch(_ context.Context, sentences []string) ([]model.ClassifierScore, error) {
	b.batchCalls++
	if b.batchErr != nil {
		return nil, b.batchErr
	}
	out := make([]model.ClassifierScore, len(sentences))
	for i := range out {
		out[i] = b.score
	}
	return out, nil
}

func TestGuard_ErrorBecomesNeutral(t *testing.T) {
	g := NewGuard(&recorder{err: errors.New("boom")}, 0)

	got, err := g.Classify(context.Background(), "Sales fell.")
	require.NoError(t, err)
	assert.Equal(t, model.NeutralScore(), got)
}

func TestGuard_InvalidScoreBecomesNeutral(t *testing.T) {
	g := NewGuard(&recorder{score: model.ClassifierScore{Sentiment: 3}}, 0)

	got, err := g.Classify(context.Background(), "Sales fell.")
	require.NoError(t, err)
	assert.Equal(t, model.NeutralScore(), got)
}

func TestGuard_Truncates(t *testing.T) {
	r := &recorder{}
	g := NewGuard(r, 5)

	_, err := g.Classify(context.Background(), "Substantial doubt exists.")
	require.NoError(t, err)
	assert.Equal(t, []string{"Subst"}, r.seen)
}

func TestGuard_BatchFallsBackPerSentence(t *testing.T) {
	b := &batchRecorder{
		recorder: recorder{score: model.ClassifierScore{Sentiment: -0.5, Confidence: 0.8}},
		batchErr: errors.New("batch too large"),
	}
	g := NewGuard(b, 0)

	scores, err := g.ClassifyBatch(context.Background(), []string{"a one", "b two", "c three"})
	require.NoError(t, err)
	require.Len(t, scores, 3)
	assert.Equal(t, 1, b.batchCalls)
	assert.Equal(t, []string{"a one", "b two", "c three"}, b.seen)
	for _, s := range scores {
		assert.Equal(t, -0.5, s.Sentiment)
	}
}

func TestGuard_BatchSuccess(t *testing.T) {
	b := &batchRecorder{recorder: recorder{score: model.ClassifierScore{Sentiment: 0.2, Confidence: 0.6}}}
	g := NewGuard(b, 0)

	scores, err := g.ClassifyBatch(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, scores, 2)
	assert.Equal(t, 1, b.batchCalls)
	assert.Empty(t, b.seen)
}

func TestCached(t *testing.T) {
	s := NewStatic(0.4)
	c := NewCached(s, cache.NewMemoryCache(time.Minute, time.Minute), "", time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := c.Classify(ctx, "Margins improved.")
		require.NoError(t, err)
		assert.Equal(t, 0.4, got.Sentiment)
	}
	assert.Equal(t, 1, s.Calls())

	scores, err := c.ClassifyBatch(ctx, []string{"Margins improved.", "Sales grew."})
	require.NoError(t, err)
	assert.Len(t, scores, 2)
	assert.Equal(t, 2, s.Calls(), "only the miss is classified")
}

func TestCached_DoesNotCacheErrors(t *testing.T) {
	s := &Static{Err: errors.New("down")}
	c := NewCached(s, cache.NewMemoryCache(time.Minute, time.Minute), "", time.Minute)
	ctx := context.Background()

	_, err := c.Classify(ctx, "Sales fell.")
	assert.Error(t, err)

	s.Err = nil
	_, err = c.Classify(ctx, "Sales fell.")
	assert.NoError(t, err)
	assert.Equal(t, 2, s.Calls())
}

func TestRateLimited(t *testing.T) {
	limiter := worker.NewLimiter(1, 1)
	r := NewRateLimited(NewStatic(0.1), limiter)

	_, err := r.Classify(context.Background(), "First.")
	require.NoError(t, err)

	// Bucket is empty; a cancelled context must not wait a full second
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = r.Classify(ctx, "Second.")
	assert.Error(t, err)
}
