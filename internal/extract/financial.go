package extract

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/ppiankov/distress/internal/model"
)

// FinancialRule turns the numeric groups of a regex match into a severity.
// Evaluate returns ok=false when the match should not emit a metric.
type FinancialRule struct {
	Kind     model.MetricKind
	Pattern  *regexp.Regexp
	Evaluate func(values []float64) (score float64, details string, ok bool)
}

// FinancialExtractor finds numeric distress signals in sentences
type FinancialExtractor struct {
	rules []FinancialRule
}

// NewFinancialExtractor creates an extractor with the built-in rules
func NewFinancialExtractor() *FinancialExtractor {
	return &FinancialExtractor{rules: defaultRules()}
}

// Rules returns the extractor's rules in evaluation order
func (e *FinancialExtractor) Rules() []FinancialRule {
	return e.rules
}

// Extract evaluates every rule independently against the lowercased sentence.
// A rule emits one metric per regex match; matches whose numeric groups do not
// parse are skipped.
func (e *FinancialExtractor) Extract(sentence string) []model.FinancialMetricMatch {
	lower := strings.ToLower(sentence)

	var metrics []model.FinancialMetricMatch
	for _, rule := range e.rules {
		for _, groups := range rule.Pattern.FindAllStringSubmatch(lower, -1) {
			values, err := parseGroups(groups[1:])
			if err != nil {
				continue
			}
			score, details, ok := rule.Evaluate(values)
			if !ok {
				continue
			}
			metrics = append(metrics, model.FinancialMetricMatch{
				Kind:    rule.Kind,
				Score:   score,
				Details: details,
			})
		}
	}
	return metrics
}

// parseGroups parses captured numbers, stripping thousands separators
func parseGroups(groups []string) ([]float64, error) {
	values := make([]float64, len(groups))
	for i, g := range groups {
		v, err := strconv.ParseFloat(strings.ReplaceAll(g, ",", ""), 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", g, err)
		}
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return nil, fmt.Errorf("parse %q: not finite", g)
		}
		values[i] = v
	}
	return values, nil
}

func defaultRules() []FinancialRule {
	return []FinancialRule{
		{
			Kind:    model.MetricCovenantRatio,
			Pattern: regexp.MustCompile(`(\d+\.\d+)\s+to\s+1\.00\s+as compared with.*covenant minimum of\s+(\d+\.\d+)`),
			Evaluate: func(v []float64) (float64, string, bool) {
				actual, required := v[0], v[1]
				if actual >= required {
					return 0, "", false
				}
				return math.Min(-0.4, -0.1*(required-actual)/required),
					fmt.Sprintf("Ratio %s vs required %s", num(actual), num(required)), true
			},
		},
		{
			Kind:    model.MetricSalesDecline,
			Pattern: regexp.MustCompile(`decreased.*\$(\d+,?\d*),?\s+or\s+(\d+\.?\d*)%`),
			Evaluate: func(v []float64) (float64, string, bool) {
				pct := v[1]
				return math.Min(-0.6, -0.02*pct), fmt.Sprintf("%s%% sales decline", num(pct)), true
			},
		},
		{
			Kind:    model.MetricNetLoss,
			Pattern: regexp.MustCompile(`net loss.*\$(\d+,?\d*)`),
			Evaluate: func(v []float64) (float64, string, bool) {
				amount := v[0]
				return math.Min(-0.7, -0.01*amount/100), fmt.Sprintf("$%s net loss", num(amount)), true
			},
		},
		{
			Kind:    model.MetricCompSalesDecline,
			Pattern: regexp.MustCompile(`comparable sales decreased by\s+(\d+\.?\d*)%`),
			Evaluate: func(v []float64) (float64, string, bool) {
				pct := v[0]
				if pct <= 0 {
					return 0, "", false
				}
				return math.Min(-0.6, -0.02*pct), fmt.Sprintf("%s%% comparable sales decline", num(pct)), true
			},
		},
		{
			Kind:    model.MetricOperatingLoss,
			Pattern: regexp.MustCompile(`operating loss was\s+\$(\d+\.\d+)\s+million`),
			Evaluate: func(v []float64) (float64, string, bool) {
				amount := v[0]
				return math.Min(-0.7, -0.015*amount/10), fmt.Sprintf("$%sM operating loss", num(amount)), true
			},
		},
		{
			Kind:    model.MetricImpairmentAmount,
			Pattern: regexp.MustCompile(`impairment charges of\s+\$(\d+\.\d+)\s+million`),
			Evaluate: func(v []float64) (float64, string, bool) {
				amount := v[0]
				return math.Min(-0.7, -0.015*amount/10), fmt.Sprintf("$%sM impairment", num(amount)), true
			},
		},
	}
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
