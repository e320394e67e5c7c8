package classifier

import (
	"context"

	"github.com/ppiankov/distress/internal/extract"
	"github.com/ppiankov/distress/internal/model"
)

// Financial tone words in the style of the Loughran-McDonald sentiment lists
var (
	positiveWords = toSet(
		"achieve", "achieved", "advantage", "benefit", "benefited", "better", "boost",
		"confident", "efficiency", "efficient", "enhance", "enhanced", "exceed", "exceeded",
		"expand", "expanded", "favorable", "gain", "gains", "grew", "growth", "improve",
		"improved", "improvement", "improving", "increase", "increased", "innovative",
		"leading", "momentum", "opportunity", "outperform", "outperformed", "positive",
		"profit", "profitability", "profitable", "progress", "record", "recovery",
		"resilient", "robust", "solid", "stable", "strength", "strengthen", "strong",
		"stronger", "succeed", "success", "successful", "surpassed",
	)
	negativeWords = toSet(
		"adverse", "adversely", "bankrupt", "bankruptcy", "breach", "challenging",
		"closure", "closures", "concern", "decline", "declined", "declines", "declining",
		"decrease", "decreased", "default", "deficit", "delinquent", "deteriorate",
		"deteriorated", "deterioration", "difficult", "difficulty", "disruption", "distress",
		"doubt", "downturn", "fail", "failed", "failure", "fell", "impairment", "impaired",
		"insufficient", "layoffs", "liquidation", "litigation", "loss", "losses", "negative",
		"negatively", "restructuring", "risk", "shortfall", "slowdown", "unable",
		"uncertain", "unfavorable", "violation", "weak", "weakened", "weakness", "worse",
		"writedown",
	)
)

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// Wordlist is an offline classifier counting financial tone words. With p
// positive and n negative hits, the probabilities are p/(p+n+1), n/(p+n+1) and
// 1/(p+n+1) for neutral.
type Wordlist struct{}

// NewWordlist creates the offline word-list classifier
func NewWordlist() *Wordlist {
	return &Wordlist{}
}

// Name returns the provider name
func (w *Wordlist) Name() string { return "wordlist" }

// Classify counts tone words in the sentence
func (w *Wordlist) Classify(_ context.Context, sentence string) (model.ClassifierScore, error) {
	var pos, neg float64
	for _, word := range extract.Words(sentence) {
		if _, ok := positiveWords[word]; ok {
			pos++
		}
		if _, ok := negativeWords[word]; ok {
			neg++
		}
	}
	return NewScores(neg, 1, pos), nil
}
