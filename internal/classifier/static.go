package classifier

import (
	"context"
	"sync/atomic"

	"github.com/ppiankov/distress/internal/model"
)

// Neutral always returns the neutral default. It is used when no classifier is
// configured or a configured provider cannot be built.
type Neutral struct{}

// Name returns the provider name
func (Neutral) Name() string { return "neutral" }

// Classify returns the neutral default
func (Neutral) Classify(context.Context, string) (model.ClassifierScore, error) {
	return model.NeutralScore(), nil
}

// Static is a deterministic classifier for tests and calibration runs. Sentences
// found in Scores get their entry; everything else gets Default. A non-nil Err
// fails every call.
type Static struct {
	Default model.ClassifierScore
	Scores  map[string]model.ClassifierScore
	Err     error

	calls atomic.Int64
}

// NewStatic returns a Static classifier answering every sentence with the given
// sentiment at full confidence
func NewStatic(sentiment float64) *Static {
	return &Static{Default: model.ClassifierScore{Sentiment: sentiment, Confidence: 1}}
}

// Name returns the provider name
func (s *Static) Name() string { return "static" }

// Classify looks the sentence up
func (s *Static) Classify(_ context.Context, sentence string) (model.ClassifierScore, error) {
	s.calls.Add(1)
	if s.Err != nil {
		return model.ClassifierScore{}, s.Err
	}
	if score, ok := s.Scores[sentence]; ok {
		return score, nil
	}
	return s.Default, nil
}

// Calls returns how many times Classify was invoked
func (s *Static) Calls() int {
	return int(s.calls.Load())
}
