package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ppiankov/distress/internal/cache"
	"github.com/ppiankov/distress/internal/model"
	"github.com/ppiankov/distress/internal/trace"
	"github.com/ppiankov/distress/internal/worker"
)

// classifyEach uses the batch endpoint when c has one, else one call per sentence
func classifyEach(ctx context.Context, c Classifier, sentences []string) ([]model.ClassifierScore, error) {
	if bc, ok := c.(BatchClassifier); ok {
		scores, err := bc.ClassifyBatch(ctx, sentences)
		if err != nil {
			return nil, err
		}
		if len(scores) != len(sentences) {
			return nil, fmt.Errorf("batch returned %d scores for %d sentences", len(scores), len(sentences))
		}
		return scores, nil
	}

	scores := make([]model.ClassifierScore, len(sentences))
	for i, s := range sentences {
		score, err := c.Classify(ctx, s)
		if err != nil {
			return nil, err
		}
		scores[i] = score
	}
	return scores, nil
}

// Guard truncates input and converts every classifier failure into the neutral
// default. Its methods never return an error.
type Guard struct {
	inner    Classifier
	maxChars int
}

// NewGuard wraps c. maxChars <= 0 disables truncation.
func NewGuard(c Classifier, maxChars int) *Guard {
	if g, ok := c.(*Guard); ok {
		c = g.inner
	}
	return &Guard{inner: c, maxChars: maxChars}
}

// Name returns the wrapped provider name
func (g *Guard) Name() string {
	return g.inner.Name()
}

// Unwrap returns the guarded classifier
func (g *Guard) Unwrap() Classifier {
	return g.inner
}

// Classify scores a sentence, substituting the neutral default on failure
func (g *Guard) Classify(ctx context.Context, sentence string) (model.ClassifierScore, error) {
	ctx, span := trace.StartSpan(ctx, "classify-sentence", attribute.String("provider", g.inner.Name()))
	defer span.End()

	score, err := g.inner.Classify(ctx, truncate(sentence, g.maxChars))
	if err == nil {
		err = validate(score)
	}
	if err != nil {
		zerolog.Ctx(ctx).Warn().
			Err(err).
			Str("provider", g.inner.Name()).
			Str("sentence", truncate(sentence, 60)).
			Msg("classifier failed, using neutral score")
		return model.NeutralScore(), nil
	}
	return score, nil
}

// ClassifyBatch scores sentences in one call when possible. A failed batch is
// retried one sentence at a time so a single bad input only neutralizes itself.
func (g *Guard) ClassifyBatch(ctx context.Context, sentences []string) ([]model.ClassifierScore, error) {
	if _, ok := g.inner.(BatchClassifier); ok && len(sentences) > 1 {
		bctx, span := trace.StartSpan(ctx, "classify-batch",
			attribute.String("provider", g.inner.Name()),
			attribute.Int("size", len(sentences)))

		inputs := make([]string, len(sentences))
		for i, s := range sentences {
			inputs[i] = truncate(s, g.maxChars)
		}
		scores, err := classifyEach(bctx, g.inner, inputs)
		span.End()

		if err == nil {
			for i := range scores {
				if validate(scores[i]) != nil {
					scores[i] = model.NeutralScore()
				}
			}
			return scores, nil
		}
		zerolog.Ctx(ctx).Warn().
			Err(err).
			Str("provider", g.inner.Name()).
			Int("size", len(sentences)).
			Msg("batch classification failed, retrying per sentence")
	}

	scores := make([]model.ClassifierScore, len(sentences))
	for i, s := range sentences {
		scores[i], _ = g.Classify(ctx, s)
	}
	return scores, nil
}

// validate rejects scores outside the documented ranges
func validate(s model.ClassifierScore) error {
	for _, v := range []float64{s.Sentiment, s.Negative, s.Neutral, s.Positive, s.Confidence} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("non-finite score %v", v)
		}
	}
	if s.Sentiment < -1 || s.Sentiment > 1 {
		return fmt.Errorf("sentiment %v outside [-1, 1]", s.Sentiment)
	}
	if s.Confidence < 0 || s.Confidence > 1 {
		return fmt.Errorf("confidence %v outside [0, 1]", s.Confidence)
	}
	return nil
}

// Cached stores classifier results keyed by provider, model and sentence
type Cached struct {
	inner Classifier
	store cache.Cache
	model string
	ttl   time.Duration
}

// NewCached wraps c with a result cache
func NewCached(c Classifier, store cache.Cache, modelName string, ttl time.Duration) *Cached {
	return &Cached{inner: c, store: store, model: modelName, ttl: ttl}
}

// Name returns the wrapped provider name
func (c *Cached) Name() string {
	return c.inner.Name()
}

func (c *Cached) key(sentence string) string {
	return cache.CacheKey(c.inner.Name(), c.model, sentence)
}

func (c *Cached) get(sentence string) (model.ClassifierScore, bool) {
	data, ok := c.store.Get(c.key(sentence))
	if !ok {
		return model.ClassifierScore{}, false
	}
	var score model.ClassifierScore
	if err := json.Unmarshal(data, &score); err != nil {
		return model.ClassifierScore{}, false
	}
	return score, true
}

func (c *Cached) put(ctx context.Context, sentence string, score model.ClassifierScore) {
	data, err := json.Marshal(score)
	if err != nil {
		return
	}
	if err := c.store.Set(c.key(sentence), data, c.ttl); err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("cache write failed")
	}
}

// Classify returns the cached score or classifies and caches. Errors are not cached.
func (c *Cached) Classify(ctx context.Context, sentence string) (model.ClassifierScore, error) {
	if score, ok := c.get(sentence); ok {
		return score, nil
	}
	score, err := c.inner.Classify(ctx, sentence)
	if err != nil {
		return model.ClassifierScore{}, err
	}
	c.put(ctx, sentence, score)
	return score, nil
}

// ClassifyBatch serves hits from the cache and classifies only the misses
func (c *Cached) ClassifyBatch(ctx context.Context, sentences []string) ([]model.ClassifierScore, error) {
	scores := make([]model.ClassifierScore, len(sentences))

	var missIdx []int
	var misses []string
	for i, s := range sentences {
		if score, ok := c.get(s); ok {
			scores[i] = score
			continue
		}
		missIdx = append(missIdx, i)
		misses = append(misses, s)
	}
	if len(misses) == 0 {
		return scores, nil
	}

	fresh, err := classifyEach(ctx, c.inner, misses)
	if err != nil {
		return nil, err
	}
	for j, i := range missIdx {
		scores[i] = fresh[j]
		c.put(ctx, misses[j], fresh[j])
	}
	return scores, nil
}

// RateLimited waits on a limiter keyed by provider name before each request
type RateLimited struct {
	inner   Classifier
	limiter *worker.Limiter
}

// NewRateLimited wraps c with a rate limiter
func NewRateLimited(c Classifier, limiter *worker.Limiter) *RateLimited {
	return &RateLimited{inner: c, limiter: limiter}
}

// Name returns the wrapped provider name
func (r *RateLimited) Name() string {
	return r.inner.Name()
}

// Classify waits for clearance, then classifies
func (r *RateLimited) Classify(ctx context.Context, sentence string) (model.ClassifierScore, error) {
	if err := r.limiter.Wait(ctx, r.inner.Name()); err != nil {
		return model.ClassifierScore{}, fmt.Errorf("rate limit: %w", err)
	}
	return r.inner.Classify(ctx, sentence)
}

// ClassifyBatch spends one token per request: once for a batch endpoint, once
// per sentence otherwise
func (r *RateLimited) ClassifyBatch(ctx context.Context, sentences []string) ([]model.ClassifierScore, error) {
	bc, ok := r.inner.(BatchClassifier)
	if !ok {
		return classifyEach(ctx, classifierFunc{name: r.Name(), fn: r.Classify}, sentences)
	}
	if err := r.limiter.Wait(ctx, r.inner.Name()); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}
	return bc.ClassifyBatch(ctx, sentences)
}

type classifierFunc struct {
	name string
	fn   func(ctx context.Context, sentence string) (model.ClassifierScore, error)
}

func (f classifierFunc) Name() string { return f.name }

func (f classifierFunc) Classify(ctx context.Context, sentence string) (model.ClassifierScore, error) {
	return f.fn(ctx, sentence)
}
