package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/ppiankov/distress/internal/model"
)

// ErrUnknownProvider is returned for an unsupported provider name
var ErrUnknownProvider = errors.New("unknown classifier provider")

// Classifier scores one sentence with class probabilities
type Classifier interface {
	Name() string
	Classify(ctx context.Context, sentence string) (model.ClassifierScore, error)
}

// BatchClassifier scores several sentences in one request. The returned slice
// has one entry per input sentence, in order.
type BatchClassifier interface {
	Classifier
	ClassifyBatch(ctx context.Context, sentences []string) ([]model.ClassifierScore, error)
}

// NewScores normalizes raw class probabilities and derives the sentiment score
// and confidence. Negative inputs count as zero; all-zero input is neutral.
func NewScores(negative, neutral, positive float64) model.ClassifierScore {
	negative = nonNegative(negative)
	neutral = nonNegative(neutral)
	positive = nonNegative(positive)

	total := negative + neutral + positive
	if total == 0 {
		return model.NeutralScore()
	}
	negative /= total
	neutral /= total
	positive /= total

	sentiment := (positive - negative) * (1 - 0.5*neutral)
	return model.ClassifierScore{
		Sentiment:  math.Max(-1, math.Min(1, sentiment)),
		Negative:   negative,
		Neutral:    neutral,
		Positive:   positive,
		Confidence: math.Max(negative, math.Max(neutral, positive)),
	}
}

func nonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Probabilities is the JSON contract the LLM providers are asked to answer with
type Probabilities struct {
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
	Positive float64 `json:"positive"`
}

const systemPrompt = `You are a financial sentiment classifier for corporate disclosures.
Classify the sentence as negative, neutral or positive from the perspective of the company's financial health.
Respond with only a JSON object of probabilities that sum to 1, for example:
{"negative": 0.7, "neutral": 0.2, "positive": 0.1}`

func userPrompt(sentence string) string {
	return "Sentence: " + sentence
}

// parseProbabilities extracts the probability object from an LLM reply. Models
// sometimes wrap JSON in prose or code fences, so the outermost braces are used.
func parseProbabilities(reply string) (model.ClassifierScore, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return model.ClassifierScore{}, fmt.Errorf("no JSON object in reply: %q", truncate(reply, 80))
	}

	var p Probabilities
	if err := json.Unmarshal([]byte(reply[start:end+1]), &p); err != nil {
		return model.ClassifierScore{}, fmt.Errorf("decode probabilities: %w", err)
	}
	if p.Negative+p.Neutral+p.Positive <= 0 {
		return model.ClassifierScore{}, errors.New("reply carries no probability mass")
	}
	return NewScores(p.Negative, p.Neutral, p.Positive), nil
}

// truncate shortens s to at most n runes
func truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	runes := 0
	for i := range s {
		if runes == n {
			return s[:i]
		}
		runes++
	}
	return s
}
