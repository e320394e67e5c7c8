// Package calibrate scores the analyzer against a small labeled set of 10-K
// sentences with known target sentiment.
package calibrate

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ppiankov/distress/internal/model"
)

// Example is a labeled sentence
type Example struct {
	Text     string  `json:"text" yaml:"text"`
	Target   float64 `json:"target_sentiment" yaml:"target_sentiment"`
	Category string  `json:"category" yaml:"category"`
}

// Examples is the built-in calibration set drawn from specialty retail filings
var Examples = []Example{
	{
		Text:     "Retailers, especially those in the specialty apparel sector, continue to face intense competition, particularly as consumer spending habits continue to indicate an increasing preference to purchase digitally as opposed to in traditional brick-and-mortar retail stores.",
		Target:   -0.5,
		Category: "economic_headwinds",
	},
	{
		Text:     "This preference has resulted in increased direct channel sales, but has continued to put pressure on our retail store sales.",
		Target:   -0.3,
		Category: "economic_headwinds",
	},
	{
		Text:     "In addition, the persistent highly promotional retail environment has continued to put pressure on our ability to achieve desired gross margins.",
		Target:   -0.3,
		Category: "economic_headwinds",
	},
	{
		Text:     "As a result of these fundamental changes, we are continuing our previously announced strategic review of our brands and operations with the goal to enhance shareholder value and optimizing our capital structure.",
		Target:   -0.2,
		Category: "strategic_response",
	},
	{
		Text:     "As a result of the assessment, we recognized goodwill impairment charges of $54.9 million and $8.5 million at the Ann Taylor and Justice reporting units, respectively.",
		Target:   -0.6,
		Category: "critical_bankruptcy",
	},
	{
		Text:     "Gross margin rate increased by 30 basis points from the year-ago period to 52.2% for the three months ended February 1, 2020, resulting from higher margins at our Premium Fashion and Plus Fashion segments.",
		Target:   0.4,
		Category: "positive_performance",
	},
	{
		Text:     "Plus Fashion operating results improved by $24.3 million primarily due to an increase in comparable sales and gross margin rate and a decrease in operating expenses.",
		Target:   0.5,
		Category: "positive_performance",
	},
	{
		Text:     "Kids Fashion operating results decreased by $18.4 million primarily due to a decline in comparable sales and a lower gross margin rate.",
		Target:   -0.5,
		Category: "negative_performance",
	},
	{
		Text:     "The Company repurchased $79.5 million of outstanding principal balance of the term loan at an aggregate cost of $49.4 million through open market transactions, resulting in a $28.5 million pre-tax gain.",
		Target:   0.6,
		Category: "positive_performance",
	},
	{
		Text:     "Any adverse effect, resulting from the coronavirus, on our business, operational results, financial position and cash flows is not reasonably estimable at this time.",
		Target:   -0.3,
		Category: "uncertainty",
	},
}

// worstCount is how many outcomes Report.Worst holds
const worstCount = 3

// SentenceAnalyzer is the part of analyzer.Analyzer calibration needs
type SentenceAnalyzer interface {
	AnalyzeSentence(ctx context.Context, sentence string) *model.SentenceResult
}

// Outcome is the analysis of one labeled example
type Outcome struct {
	Index            int                          `json:"sentence_id"`
	Category         string                       `json:"category"`
	Target           float64                      `json:"target_score"`
	Actual           float64                      `json:"actual_score"`
	Error            float64                      `json:"error"`
	RiskIndicators   []string                     `json:"risk_indicators"`
	FinancialMetrics []model.FinancialMetricMatch `json:"financial_metrics"`
	ValenceShifters  []string                     `json:"valence_shifters"`
	Preview          string                       `json:"text_preview"`
}

// Report summarizes a calibration run
type Report struct {
	Outcomes []Outcome `json:"outcomes"`
	AvgError float64   `json:"average_error"`
	Accuracy float64   `json:"accuracy"`
	Worst    []Outcome `json:"worst"`
}

// Evaluate analyzes every example and measures absolute error against its
// target. Examples the analyzer yields nothing for are skipped.
func Evaluate(ctx context.Context, a SentenceAnalyzer, examples []Example) *Report {
	report := &Report{Outcomes: make([]Outcome, 0, len(examples))}

	var total float64
	for i, ex := range examples {
		res := a.AnalyzeSentence(ctx, ex.Text)
		if res == nil {
			continue
		}

		errAbs := res.FinalScore - ex.Target
		if errAbs < 0 {
			errAbs = -errAbs
		}
		total += errAbs

		report.Outcomes = append(report.Outcomes, Outcome{
			Index:            i,
			Category:         ex.Category,
			Target:           ex.Target,
			Actual:           res.FinalScore,
			Error:            errAbs,
			RiskIndicators:   res.RiskIndicators,
			FinancialMetrics: res.FinancialMetrics,
			ValenceShifters:  res.ValenceShifters,
			Preview:          preview(ex.Text, 60),
		})
	}

	if n := len(report.Outcomes); n > 0 {
		report.AvgError = total / float64(n)
	}
	report.Accuracy = max(0, 1-report.AvgError)

	worst := append([]Outcome(nil), report.Outcomes...)
	sort.SliceStable(worst, func(i, j int) bool { return worst[i].Error > worst[j].Error })
	if len(worst) > worstCount {
		worst = worst[:worstCount]
	}
	report.Worst = worst

	return report
}

// Write prints the report for humans
func (r *Report) Write(w io.Writer) {
	fmt.Fprintf(w, "Average error: %.3f\n", r.AvgError)
	fmt.Fprintf(w, "Accuracy:      %.1f%%\n", r.Accuracy*100)

	if len(r.Worst) == 0 {
		return
	}
	fmt.Fprintf(w, "\nSentences needing calibration (top %d by error):\n", len(r.Worst))
	for _, o := range r.Worst {
		fmt.Fprintf(w, "\nCategory: %s\n", o.Category)
		fmt.Fprintf(w, "Text:     %s\n", o.Preview)
		fmt.Fprintf(w, "Target: %.2f, Actual: %.2f, Error: %.2f\n", o.Target, o.Actual, o.Error)
		fmt.Fprintf(w, "Risk indicators:   %s\n", strings.Join(o.RiskIndicators, ", "))
		metrics := make([]string, len(o.FinancialMetrics))
		for i, m := range o.FinancialMetrics {
			metrics[i] = fmt.Sprintf("%s (%.2f)", m.Details, m.Score)
		}
		fmt.Fprintf(w, "Financial metrics: %s\n", strings.Join(metrics, ", "))
		fmt.Fprintf(w, "Valence shifters:  %s\n", strings.Join(o.ValenceShifters, ", "))
	}
}

// preview returns the first n runes of s followed by an ellipsis
func preview(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r) + "..."
}
