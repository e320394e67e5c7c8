package analyzer

import (
	"math"

	"github.com/ppiankov/distress/internal/model"
	"github.com/ppiankov/distress/internal/score"
)

// Sentence weighting
const (
	riskWeightFactor    = 1.5
	criticalWeightBonus = 1.5
	highWeightBonus     = 1.2
)

// SentenceWeight is word_count·confidence plus the bonus-scaled risk confidence
func SentenceWeight(r *model.SentenceResult) float64 {
	riskWeight := r.RiskConfidence * riskWeightFactor
	switch {
	case r.HasCategory(model.CategoryCritical):
		riskWeight *= criticalWeightBonus
	case r.HasCategory(model.CategoryHigh):
		riskWeight *= highWeightBonus
	}
	return float64(r.WordCount)*r.BaseConfidence + riskWeight
}

// Aggregate reduces sentence records into a document result. Readability is
// computed over rawText.
func Aggregate(results []model.SentenceResult, rawText string) *model.DocumentResult {
	doc := &model.DocumentResult{
		IndicatorsByCategory: make(map[model.Category]int, len(model.Categories)),
		Sentences:            results,
	}
	for _, c := range model.Categories {
		doc.IndicatorsByCategory[c] = 0
	}

	var weighted, totalWeight, confidence float64
	sentiments := make([]float64, len(results))
	for i := range results {
		r := &results[i]

		w := SentenceWeight(r)
		weighted += r.FinalScore * w
		totalWeight += w
		confidence += r.BaseConfidence
		sentiments[i] = r.FinalScore

		if r.Flagged() {
			doc.SentencesWithRiskFlags++
		}
		if r.HasCategory(model.CategoryHeadwinds) {
			doc.SentencesWithHeadwinds++
		}
		if r.HasCategory(model.CategoryCritical) {
			doc.SentencesWithCritical++
		}

		doc.RiskIndicatorsCount += len(r.RiskIndicators)
		for c, terms := range r.IndicatorsByCategory {
			doc.IndicatorsByCategory[c] += len(terms)
		}
		doc.ShifterFrequency += len(r.ValenceShifters)
	}

	n := len(results)
	doc.TotalSentences = n

	if totalWeight > 0 {
		doc.DocumentSentiment = score.Clamp(weighted/totalWeight, -1, 1)
	}
	doc.Classification = Classify(doc.DocumentSentiment)

	if n > 0 {
		doc.SentimentStd = math.Sqrt(variance(sentiments))
		lo, hi := sentiments[0], sentiments[0]
		for _, s := range sentiments[1:] {
			lo, hi = min(lo, s), max(hi, s)
		}
		doc.SentimentRange = hi - lo

		doc.BankruptcyRisk = min(1, (float64(doc.SentencesWithRiskFlags)+1.5*float64(doc.SentencesWithCritical))/float64(n)*5)
		doc.EconomicHeadwinds = min(1, float64(doc.SentencesWithHeadwinds)/float64(n)*3)
		doc.AvgConfidence = confidence / float64(n)
	}

	doc.Complexity = Complexity(results, doc.DocumentSentiment)
	doc.ComplexityLevel = ComplexityLevel(doc.Complexity)

	doc.Readability = Readability(rawText)
	doc.FogIndex = doc.Readability.FogIndex
	doc.FleschKincaid = doc.Readability.FleschKincaid

	return doc
}

// Classify labels a document score; there is no neutral band
func Classify(documentSentiment float64) string {
	if documentSentiment < 0 {
		return model.ClassificationNegative
	}
	return model.ClassificationPositive
}

// Complexity estimates rhetorical density from shifter and indicator density,
// sentence-length variance and sentiment volatility, boosted for negative documents
func Complexity(results []model.SentenceResult, documentSentiment float64) float64 {
	n := len(results)
	if n == 0 {
		return 0
	}

	var shifters, indicators int
	var wordCounts []float64
	sentiments := make([]float64, n)
	for i := range results {
		r := &results[i]
		shifters += len(r.ValenceShifters)
		indicators += len(r.RiskIndicators)
		if r.WordCount > 0 {
			wordCounts = append(wordCounts, float64(r.WordCount))
		}
		sentiments[i] = r.FinalScore
	}

	valenceDensity := float64(shifters) / float64(n)
	riskDensity := float64(indicators) / float64(n)
	lengthComplexity := min(1, variance(wordCounts)/100)
	volatility := min(1, variance(sentiments)*2)

	c := valenceDensity*0.3 + riskDensity*0.25 + lengthComplexity*0.2 + volatility*0.25

	if documentSentiment < -0.1 {
		c += math.Abs(documentSentiment) * 0.15
		if riskDensity > 0.5 {
			c += 0.1
		}
	}

	return score.Clamp(c, 0, 1)
}

// ComplexityLevel bands a complexity score
func ComplexityLevel(c float64) string {
	switch {
	case c < 0.3:
		return model.ComplexityLow
	case c < 0.7:
		return model.ComplexityMedium
	default:
		return model.ComplexityHigh
	}
}

// variance is the population variance, 0 for an empty slice
func variance(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var mean float64
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))

	var sum float64
	for _, x := range xs {
		d := x - mean
		sum += d * d
	}
	return sum / float64(len(xs))
}
