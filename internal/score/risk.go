package score

import (
	"github.com/ppiankov/distress/internal/extract"
	"github.com/ppiankov/distress/internal/lexicon"
	"github.com/ppiankov/distress/internal/model"
)

// CategoryWeights scale indicator scores by category
var CategoryWeights = map[model.Category]float64{
	model.CategoryCritical:   0.9,
	model.CategoryHigh:       0.7,
	model.CategoryHeadwinds:  0.6,
	model.CategoryModerate:   0.5,
	model.CategoryManagement: 0.4,
}

const unknownCategoryWeight = 0.3

// CategoryWeight returns the weight for a category, falling back to the unknown weight
func CategoryWeight(c model.Category) float64 {
	if w, ok := CategoryWeights[c]; ok {
		return w
	}
	return unknownCategoryWeight
}

// RiskScorer combines lexicon indicators and financial metrics into a risk score
type RiskScorer struct {
	lexicon   *lexicon.Store
	extractor *extract.FinancialExtractor
}

// NewRiskScorer creates a new risk scorer
func NewRiskScorer(store *lexicon.Store, extractor *extract.FinancialExtractor) *RiskScorer {
	return &RiskScorer{
		lexicon:   store,
		extractor: extractor,
	}
}

// Score calculates the risk score and confidence of a sentence
func (s *RiskScorer) Score(sentence string) model.RiskResult {
	// 1. Find risk phrases and numeric distress patterns
	indicators := s.lexicon.Lookup(sentence)
	metrics := s.extractor.Extract(sentence)

	var riskScore, confidence float64

	// 2. Mean of category-weighted indicator scores
	if len(indicators) > 0 {
		var sum float64
		for _, ind := range indicators {
			sum += ind.Score * CategoryWeight(ind.Category)
		}
		riskScore = sum / float64(len(indicators))
		confidence = min(1.0, 0.3*float64(len(indicators)))
	}

	// 3. Financial metrics add their mean severity and raise confidence
	if len(metrics) > 0 {
		var sum float64
		for _, m := range metrics {
			sum += m.Score
		}
		riskScore += sum / float64(len(metrics))
		confidence = max(confidence, 0.4)
	}

	return model.RiskResult{
		Score:      Clamp(riskScore, -1, 0),
		Confidence: confidence,
		Indicators: indicators,
		Metrics:    metrics,
	}
}

// Clamp limits v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
