package model

// Category classifies a risk phrase by severity family
type Category string

const (
	CategoryCritical   Category = "critical_bankruptcy"
	CategoryHigh       Category = "high_risk"
	CategoryModerate   Category = "moderate_risk"
	CategoryHeadwinds  Category = "economic_headwinds"
	CategoryManagement Category = "management_change"
	CategoryUnknown    Category = "unknown"
)

// Categories lists the known categories in ownership-resolution priority order
var Categories = []Category{
	CategoryCritical,
	CategoryHigh,
	CategoryModerate,
	CategoryHeadwinds,
	CategoryManagement,
}

// ShifterKind classifies a valence shifter
type ShifterKind string

const (
	ShifterAmplifier   ShifterKind = "amplifier"
	ShifterDeAmplifier ShifterKind = "de_amplifier"
	ShifterNegator     ShifterKind = "negator"
	ShifterAdversative ShifterKind = "adversative"
)

// MetricKind identifies the financial pattern rule that produced a metric
type MetricKind string

const (
	MetricCovenantRatio    MetricKind = "covenant_ratio"
	MetricCompSalesDecline MetricKind = "comp_sales_decline"
	MetricOperatingLoss    MetricKind = "operating_loss"
	MetricImpairmentAmount MetricKind = "impairment_amount"
	MetricNetLoss          MetricKind = "net_loss"
	MetricSalesDecline     MetricKind = "sales_decline"
)

// RiskTerm is a lexicon phrase with its severity and owning category
type RiskTerm struct {
	Phrase   string   `json:"phrase" yaml:"phrase"`
	Score    float64  `json:"score" yaml:"score"`
	Category Category `json:"category" yaml:"category"`
}

// ValenceShifter is a word that modifies sentiment intensity or sign
type ValenceShifter struct {
	Word   string      `json:"word"`
	Kind   ShifterKind `json:"kind"`
	Weight float64     `json:"weight"`
}

// RiskIndicatorMatch is a lexicon phrase found in a sentence
type RiskIndicatorMatch struct {
	Term     string   `json:"term"`
	Score    float64  `json:"score"`
	Category Category `json:"category"`
}

// FinancialMetricMatch is a numeric distress signal extracted by a pattern rule
type FinancialMetricMatch struct {
	Kind    MetricKind `json:"type"`
	Score   float64    `json:"score"`
	Details string     `json:"details"`
}

// ClassifierScore is the output of the external sentence classifier
type ClassifierScore struct {
	Sentiment  float64 `json:"sentiment_score"`
	Negative   float64 `json:"negative_prob"`
	Neutral    float64 `json:"neutral_prob"`
	Positive   float64 `json:"positive_prob"`
	Confidence float64 `json:"confidence"`
}

// NeutralScore is substituted whenever the classifier cannot produce a score
func NeutralScore() ClassifierScore {
	return ClassifierScore{Neutral: 1.0}
}

// RiskResult is the output of the risk scorer for one sentence
type RiskResult struct {
	Score      float64                `json:"risk_score"`
	Confidence float64                `json:"risk_confidence"`
	Indicators []RiskIndicatorMatch   `json:"indicators"`
	Metrics    []FinancialMetricMatch `json:"financial_metrics"`
}

// HasCategory reports whether any indicator belongs to the category
func (r RiskResult) HasCategory(c Category) bool {
	for _, ind := range r.Indicators {
		if ind.Category == c {
			return true
		}
	}
	return false
}

// SentenceResult is the per-sentence analysis record
type SentenceResult struct {
	Sentence             string                 `json:"sentence"`
	BaseScore            float64                `json:"finbert_base_score"`
	BaseConfidence       float64                `json:"finbert_confidence"`
	Probabilities        ClassifierScore        `json:"classifier"`
	RiskScore            float64                `json:"risk_score"`
	RiskConfidence       float64                `json:"risk_confidence"`
	RiskIndicators       []string               `json:"risk_indicators"`
	IndicatorsByCategory map[Category][]string  `json:"risk_indicators_by_category"`
	FinancialMetrics     []FinancialMetricMatch `json:"financial_metrics"`
	ValenceShifters      []string               `json:"valence_shifters"`
	FinalScore           float64                `json:"final_sentiment_score"`
	WordCount            int                    `json:"word_count"`
	LanguageComplexity   float64                `json:"language_complexity"`
}

// HasCategory reports whether the sentence matched a phrase of the category
func (s *SentenceResult) HasCategory(c Category) bool {
	return len(s.IndicatorsByCategory[c]) > 0
}

// Flagged reports whether the sentence carries any risk signal
func (s *SentenceResult) Flagged() bool {
	return len(s.RiskIndicators) > 0 || len(s.FinancialMetrics) > 0
}

// Readability holds document readability statistics
type Readability struct {
	FogIndex            float64 `json:"fog_index"`
	FleschKincaid       float64 `json:"flesch_kincaid"`
	AvgSentenceLength   float64 `json:"avg_sentence_length"`
	ComplexWordsRatio   float64 `json:"complex_words_ratio"`
	AvgSyllablesPerWord float64 `json:"avg_syllables_per_word"`
	TotalSentences      int     `json:"total_sentences"`
	TotalWords          int     `json:"total_words"`
}

// Classification labels
const (
	ClassificationPositive = "Positive"
	ClassificationNegative = "Negative"
)

// Complexity bands
const (
	ComplexityLow    = "low"
	ComplexityMedium = "medium"
	ComplexityHigh   = "high"
)

// DocumentResult is the aggregated analysis of one document
type DocumentResult struct {
	DocumentSentiment      float64          `json:"document_sentiment_score"`
	Classification         string           `json:"sentiment_classification"`
	SentimentStd           float64          `json:"sentiment_std"`
	SentimentRange         float64          `json:"sentiment_range"`
	BankruptcyRisk         float64          `json:"bankruptcy_risk_score"`
	EconomicHeadwinds      float64          `json:"economic_headwinds_score"`
	RiskIndicatorsCount    int              `json:"risk_indicators_count"`
	IndicatorsByCategory   map[Category]int `json:"risk_indicators_by_category"`
	SentencesWithRiskFlags int              `json:"sentences_with_risk_flags"`
	SentencesWithHeadwinds int              `json:"sentences_with_economic_headwinds"`
	SentencesWithCritical  int              `json:"sentences_with_critical_risk"`
	TotalSentences         int              `json:"total_sentences_analyzed"`
	AvgConfidence          float64          `json:"avg_finbert_confidence"`
	ShifterFrequency       int              `json:"valence_shifter_frequency"`
	Complexity             float64          `json:"sentiment_complexity_score"`
	ComplexityLevel        string           `json:"complexity_level"`
	FogIndex               float64          `json:"fog_index"`
	FleschKincaid          float64          `json:"flesch_kincaid_score"`
	Readability            Readability      `json:"readability_metrics"`
	Sentences              []SentenceResult `json:"sentence_details,omitempty"`
}
