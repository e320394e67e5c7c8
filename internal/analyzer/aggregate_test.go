package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ppiankov/distress/internal/model"
)

func TestSyllables(t *testing.T) {
	tests := []struct {
		word string
		want int
	}{
		{"the", 1},
		{"make", 1},
		{"agree", 2},
		{"going", 2},
		{"bankruptcy", 3},
		{"imminent", 3},
		{"rhythm", 1},
		{"Liquidity", 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Syllables(tt.word), tt.word)
	}
}

func TestReadability(t *testing.T) {
	r := Readability("The cat sat. The dog ran.")

	assert.Equal(t, 2, r.TotalSentences)
	assert.Equal(t, 6, r.TotalWords)
	assert.InDelta(t, 3.0, r.AvgSentenceLength, 1e-9)
	assert.InDelta(t, 1.0, r.AvgSyllablesPerWord, 1e-9)
	assert.Zero(t, r.ComplexWordsRatio)
	assert.InDelta(t, 1.2, r.FogIndex, 1e-9)
	assert.InDelta(t, -2.62, r.FleschKincaid, 1e-9)
}

func TestReadability_ComplexWords(t *testing.T) {
	r := Readability("Bankruptcy is imminent.")

	assert.Equal(t, 3, r.TotalWords)
	assert.InDelta(t, 2.0/3.0, r.ComplexWordsRatio, 1e-9)
	assert.InDelta(t, 0.4*(3+100*2.0/3.0), r.FogIndex, 1e-9)
}

func TestReadability_Empty(t *testing.T) {
	assert.Equal(t, model.Readability{}, Readability(""))
	assert.Equal(t, model.Readability{}, Readability("12 34 56."))
}

func TestClassify(t *testing.T) {
	assert.Equal(t, model.ClassificationNegative, Classify(-0.0001))
	assert.Equal(t, model.ClassificationPositive, Classify(0))
	assert.Equal(t, model.ClassificationPositive, Classify(0.3))
}

func TestComplexityLevel(t *testing.T) {
	assert.Equal(t, model.ComplexityLow, ComplexityLevel(0))
	assert.Equal(t, model.ComplexityLow, ComplexityLevel(0.2999))
	assert.Equal(t, model.ComplexityMedium, ComplexityLevel(0.3))
	assert.Equal(t, model.ComplexityMedium, ComplexityLevel(0.6999))
	assert.Equal(t, model.ComplexityHigh, ComplexityLevel(0.7))
}

func TestSentenceWeight(t *testing.T) {
	plain := &model.SentenceResult{WordCount: 10, BaseConfidence: 0.5, RiskConfidence: 0.4}
	assert.InDelta(t, 5+0.6, SentenceWeight(plain), 1e-9)

	high := &model.SentenceResult{
		WordCount: 10, BaseConfidence: 0.5, RiskConfidence: 0.4,
		IndicatorsByCategory: map[model.Category][]string{model.CategoryHigh: {"default"}},
	}
	assert.InDelta(t, 5+0.6*1.2, SentenceWeight(high), 1e-9)

	critical := &model.SentenceResult{
		WordCount: 10, BaseConfidence: 0.5, RiskConfidence: 0.4,
		IndicatorsByCategory: map[model.Category][]string{
			model.CategoryHigh:     {"default"},
			model.CategoryCritical: {"bankruptcy"},
		},
	}
	assert.InDelta(t, 5+0.6*1.5, SentenceWeight(critical), 1e-9)
}

func TestAggregate_Statistics(t *testing.T) {
	results := []model.SentenceResult{
		{
			FinalScore: -0.5, WordCount: 10, BaseConfidence: 1,
			RiskIndicators:       []string{"inflation"},
			IndicatorsByCategory: map[model.Category][]string{model.CategoryHeadwinds: {"inflation"}},
			ValenceShifters:      []string{"very", "but"},
		},
		{FinalScore: 0.5, WordCount: 10, BaseConfidence: 0.5},
	}

	doc := Aggregate(results, "")

	assert.Equal(t, 2, doc.TotalSentences)
	assert.InDelta(t, (-5.0+2.5)/15.0, doc.DocumentSentiment, 1e-9)
	assert.Equal(t, model.ClassificationNegative, doc.Classification)
	assert.InDelta(t, 0.5, doc.SentimentStd, 1e-9)
	assert.InDelta(t, 1.0, doc.SentimentRange, 1e-9)
	assert.InDelta(t, 0.75, doc.AvgConfidence, 1e-9)
	assert.Equal(t, 1, doc.SentencesWithRiskFlags)
	assert.Equal(t, 1, doc.SentencesWithHeadwinds)
	assert.InDelta(t, 1.0, doc.EconomicHeadwinds, 1e-9)
	assert.InDelta(t, 1.0, doc.BankruptcyRisk, 1e-9)
	assert.Equal(t, 2, doc.ShifterFrequency)
	assert.Equal(t, 1, doc.IndicatorsByCategory[model.CategoryHeadwinds])
	assert.Equal(t, 0, doc.IndicatorsByCategory[model.CategoryCritical])
	assert.Equal(t, model.Readability{}, doc.Readability)

	// valence 1.0*0.3 + risk 0.5*0.25 + length 0 + volatility min(1, 0.25*2)*0.25
	// + |doc|*0.15 for a document below -0.1
	want := 0.3 + 0.125 + 0.125 + (2.5/15.0)*0.15
	assert.InDelta(t, want, doc.Complexity, 1e-9)
	assert.Equal(t, model.ComplexityMedium, doc.ComplexityLevel)
}

func TestAggregate_Empty(t *testing.T) {
	doc := Aggregate(nil, "")

	assert.Zero(t, doc.TotalSentences)
	assert.Zero(t, doc.BankruptcyRisk)
	assert.Zero(t, doc.Complexity)
	assert.Equal(t, model.ClassificationPositive, doc.Classification)
	assert.Len(t, doc.IndicatorsByCategory, 5)
}
