package classifier

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ppiankov/distress/internal/cache"
	"github.com/ppiankov/distress/internal/model"
	"github.com/ppiankov/distress/internal/worker"
)

// Providers lists the supported provider names
var Providers = []string{"finbert", "openai", "anthropic", "ollama", "wordlist", "neutral"}

// New creates the bare classifier named by cfg.Provider
func New(cfg model.ClassifierConfig) (Classifier, error) {
	switch strings.ToLower(cfg.Provider) {
	case "finbert":
		return NewFinBERTClassifier(cfg)

	case "openai":
		return NewOpenAIClassifier(cfg)

	case "anthropic", "claude":
		return NewAnthropicClassifier(cfg)

	case "ollama":
		return NewOllamaClassifier(cfg)

	case "wordlist":
		return NewWordlist(), nil

	case "neutral", "", "none":
		return Neutral{}, nil

	default:
		return nil, fmt.Errorf("%w: %s (supported: %s)", ErrUnknownProvider, cfg.Provider, strings.Join(Providers, ", "))
	}
}

// Build creates the configured classifier with rate limiting and caching for
// remote providers, wrapped in a Guard. A misconfigured provider (for example a
// missing API key) degrades to Neutral with a warning unless Strict is set;
// unknown provider names always fail.
func Build(ctx context.Context, cfg *model.Config) (Classifier, error) {
	log := zerolog.Ctx(ctx)

	base, err := New(cfg.Classifier)
	if err != nil {
		if errors.Is(err, ErrUnknownProvider) || cfg.Classifier.Strict {
			return nil, err
		}
		log.Warn().Err(err).Str("provider", cfg.Classifier.Provider).Msg("classifier unavailable, using neutral scores")
		base = Neutral{}
	}

	c := base
	if isRemote(base) {
		c = NewRateLimited(c, worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize))
		if store := cache.New(cfg.Cache); store != nil {
			c = NewCached(c, store, cfg.Classifier.Model, cfg.Cache.MemoryTTL)
		}
	}

	return NewGuard(c, cfg.Classifier.MaxInputChars), nil
}

func isRemote(c Classifier) bool {
	switch c.(type) {
	case *FinBERTClassifier, *OpenAIClassifier, *AnthropicClassifier, *OllamaClassifier:
		return true
	}
	return false
}

func timeoutOrDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return 30 * time.Second
	}
	return d
}
