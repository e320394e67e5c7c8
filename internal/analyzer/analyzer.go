package analyzer

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ppiankov/distress/internal/classifier"
	"github.com/ppiankov/distress/internal/extract"
	"github.com/ppiankov/distress/internal/lexicon"
	"github.com/ppiankov/distress/internal/model"
	"github.com/ppiankov/distress/internal/score"
	"github.com/ppiankov/distress/internal/trace"
	"github.com/ppiankov/distress/internal/worker"
)

// ErrEmptyDocument is returned by callers when AnalyzeText yields no result
var ErrEmptyDocument = errors.New("empty document")

// minSentenceChars is the trimmed length a sentence must exceed to be analyzed
const minSentenceChars = 10

// Options tunes an Analyzer. Zero values select the built-in lexicon and
// extractor and sequential, unbatched classification.
type Options struct {
	Lexicon         *lexicon.Store
	Extractor       *extract.FinancialExtractor
	SentenceWorkers int
	BatchSize       int
	MaxInputChars   int
}

// Analyzer scores sentences and documents for distress language. It holds
// only read-only tables and is safe for concurrent use.
type Analyzer struct {
	classifier *classifier.Guard
	risk       *score.RiskScorer
	composer   *score.Composer
	workers    int
	batchSize  int
}

// New creates an Analyzer around a sentence classifier. The classifier is
// guarded so its failures degrade to neutral scores.
func New(c classifier.Classifier, opts Options) *Analyzer {
	if c == nil {
		c = classifier.Neutral{}
	}
	if opts.Lexicon == nil {
		opts.Lexicon = lexicon.Default()
	}
	if opts.Extractor == nil {
		opts.Extractor = extract.NewFinancialExtractor()
	}

	return &Analyzer{
		classifier: classifier.NewGuard(c, opts.MaxInputChars),
		risk:       score.NewRiskScorer(opts.Lexicon, opts.Extractor),
		composer:   score.NewComposer(opts.Lexicon),
		workers:    opts.SentenceWorkers,
		batchSize:  opts.BatchSize,
	}
}

// ClassifierName returns the name of the underlying classifier
func (a *Analyzer) ClassifierName() string {
	return a.classifier.Name()
}

// AnalyzeSentence produces the per-sentence record, or nil for blank input
func (a *Analyzer) AnalyzeSentence(ctx context.Context, sentence string) *model.SentenceResult {
	sentence = strings.TrimSpace(sentence)
	if sentence == "" {
		return nil
	}

	base, _ := a.classifier.Classify(ctx, sentence)
	return a.build(sentence, base)
}

// build assembles a SentenceResult from a trimmed sentence and its classifier score
func (a *Analyzer) build(sentence string, base model.ClassifierScore) *model.SentenceResult {
	risk := a.risk.Score(sentence)
	shifters, words := a.composer.Detect(sentence)
	final := a.composer.Compose(base.Sentiment, risk, shifters, words)

	terms := make([]string, len(risk.Indicators))
	byCategory := make(map[model.Category][]string)
	for i, ind := range risk.Indicators {
		terms[i] = ind.Term
		byCategory[ind.Category] = append(byCategory[ind.Category], ind.Term)
	}

	shifterWords := make([]string, len(shifters))
	for i, sh := range shifters {
		shifterWords[i] = sh.Word
	}

	metrics := risk.Metrics
	if metrics == nil {
		metrics = []model.FinancialMetricMatch{}
	}

	return &model.SentenceResult{
		Sentence:             sentence,
		BaseScore:            base.Sentiment,
		BaseConfidence:       base.Confidence,
		Probabilities:        base,
		RiskScore:            risk.Score,
		RiskConfidence:       risk.Confidence,
		RiskIndicators:       terms,
		IndicatorsByCategory: byCategory,
		FinancialMetrics:     metrics,
		ValenceShifters:      shifterWords,
		FinalScore:           final,
		WordCount:            len(words),
		LanguageComplexity:   float64(len(shifters)) / float64(max(1, len(words))) * 10,
	}
}

// AnalyzeText analyzes a document. It returns nil only when the text is empty
// after preprocessing; otherwise a result is always produced.
func (a *Analyzer) AnalyzeText(ctx context.Context, text string) *model.DocumentResult {
	ctx, span := trace.StartSpan(ctx, "analyze-text", attribute.Int("chars", len(text)))
	defer span.End()

	if strings.TrimSpace(text) == "" {
		return nil
	}
	clean := extract.Preprocess(text)
	if strings.TrimSpace(clean) == "" {
		return nil
	}

	// 1. Segment and drop fragments
	var sentences []string
	for _, s := range extract.SegmentSentences(clean) {
		if s = strings.TrimSpace(s); len(s) > minSentenceChars {
			sentences = append(sentences, s)
		}
	}

	zerolog.Ctx(ctx).Debug().
		Int("sentences", len(sentences)).
		Str("classifier", a.classifier.Name()).
		Msg("analyzing document")

	// 2. Classify
	scores := a.classifyAll(ctx, sentences)

	// 3. Build sentence records
	results := make([]model.SentenceResult, 0, len(sentences))
	for i, s := range sentences {
		if r := a.build(s, scores[i]); r != nil {
			results = append(results, *r)
		}
	}

	// 4. Reduce
	return Aggregate(results, text)
}

// classifyAll scores every sentence, batching or fanning out per Options.
// Results are in sentence order.
func (a *Analyzer) classifyAll(ctx context.Context, sentences []string) []model.ClassifierScore {
	if len(sentences) == 0 {
		return nil
	}

	if a.batchSize > 1 {
		if _, ok := a.classifier.Unwrap().(classifier.BatchClassifier); ok {
			n := (len(sentences) + a.batchSize - 1) / a.batchSize
			chunks := worker.Map(ctx, max(1, a.workers), n, func(ctx context.Context, i int) []model.ClassifierScore {
				end := min(len(sentences), (i+1)*a.batchSize)
				scores, _ := a.classifier.ClassifyBatch(ctx, sentences[i*a.batchSize:end])
				return scores
			})

			scores := make([]model.ClassifierScore, 0, len(sentences))
			for i, chunk := range chunks {
				if chunk == nil {
					// Chunk never ran (cancelled context)
					end := min(len(sentences), (i+1)*a.batchSize)
					for range sentences[i*a.batchSize : end] {
						chunk = append(chunk, model.NeutralScore())
					}
				}
				scores = append(scores, chunk...)
			}
			return scores
		}
	}

	if a.workers > 1 {
		type slot struct {
			score model.ClassifierScore
			done  bool
		}
		slots := worker.Map(ctx, a.workers, len(sentences), func(ctx context.Context, i int) slot {
			score, _ := a.classifier.Classify(ctx, sentences[i])
			return slot{score: score, done: true}
		})

		scores := make([]model.ClassifierScore, len(sentences))
		for i, s := range slots {
			scores[i] = s.score
			if !s.done {
				scores[i] = model.NeutralScore()
			}
		}
		return scores
	}

	scores := make([]model.ClassifierScore, len(sentences))
	for i, s := range sentences {
		scores[i], _ = a.classifier.Classify(ctx, s)
	}
	return scores
}
