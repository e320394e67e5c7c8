package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/ppiankov/distress/internal/model"
)

// topSentences is how many of the most negative sentences a Markdown report lists
const topSentences = 5

// Renderer writes reports as JSON, Markdown, HTML and terminal summaries
type Renderer struct {
	includeFooter    bool
	includeSentences bool
}

// NewRenderer creates a new renderer
func NewRenderer(includeFooter, includeSentences bool) *Renderer {
	return &Renderer{
		includeFooter:    includeFooter,
		includeSentences: includeSentences,
	}
}

// WriteJSON encodes the report as indented JSON
func (r *Renderer) WriteJSON(w io.Writer, report *model.Report) error {
	out := *report
	if !r.includeSentences && report.Result != nil {
		result := *report.Result
		result.Sentences = nil
		out.Result = &result
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(&out)
}

// RenderJSON writes the JSON report to path
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	var buf bytes.Buffer
	if err := r.WriteJSON(&buf, report); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return writeFile(path, buf.Bytes())
}

// Markdown formats the report as Markdown
func (r *Renderer) Markdown(report *model.Report) string {
	res := report.Result
	var b strings.Builder

	fmt.Fprintf(&b, "# Distress Report: %s\n\n", report.Subject)
	fmt.Fprintf(&b, "- **Source:** %s\n", report.Source)
	fmt.Fprintf(&b, "- **Analyzed:** %s\n", report.AnalyzedAt.Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "- **Classifier:** %s\n", report.Classifier)
	fmt.Fprintf(&b, "- **Adapter:** %s\n", report.Adapter)
	if report.Section != "" {
		fmt.Fprintf(&b, "- **Sections:** %s\n", report.Section)
	}
	b.WriteString("\n")

	b.WriteString("## Summary\n\n")
	b.WriteString("| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Classification | **%s** |\n", res.Classification)
	fmt.Fprintf(&b, "| Document sentiment | %.4f |\n", res.DocumentSentiment)
	fmt.Fprintf(&b, "| Bankruptcy risk | %.4f |\n", res.BankruptcyRisk)
	fmt.Fprintf(&b, "| Economic headwinds | %.4f |\n", res.EconomicHeadwinds)
	fmt.Fprintf(&b, "| Sentiment std / range | %.4f / %.4f |\n", res.SentimentStd, res.SentimentRange)
	fmt.Fprintf(&b, "| Complexity | %.4f (%s) |\n", res.Complexity, res.ComplexityLevel)
	fmt.Fprintf(&b, "| Sentences analyzed | %d |\n", res.TotalSentences)
	fmt.Fprintf(&b, "| Sentences with risk flags | %d |\n", res.SentencesWithRiskFlags)
	fmt.Fprintf(&b, "| Sentences with critical risk | %d |\n", res.SentencesWithCritical)
	fmt.Fprintf(&b, "| Sentences with headwinds | %d |\n", res.SentencesWithHeadwinds)
	fmt.Fprintf(&b, "| Average classifier confidence | %.4f |\n", res.AvgConfidence)
	fmt.Fprintf(&b, "| Valence shifters | %d |\n", res.ShifterFrequency)
	b.WriteString("\n")

	b.WriteString("## Risk Indicators by Category\n\n")
	b.WriteString("| Category | Count |\n|---|---|\n")
	for _, c := range model.Categories {
		fmt.Fprintf(&b, "| %s | %d |\n", c, res.IndicatorsByCategory[c])
	}
	fmt.Fprintf(&b, "| **Total** | **%d** |\n\n", res.RiskIndicatorsCount)

	rd := res.Readability
	b.WriteString("## Readability\n\n")
	b.WriteString("| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Gunning Fog | %.2f |\n", rd.FogIndex)
	fmt.Fprintf(&b, "| Flesch-Kincaid grade | %.2f |\n", rd.FleschKincaid)
	fmt.Fprintf(&b, "| Avg sentence length | %.2f |\n", rd.AvgSentenceLength)
	fmt.Fprintf(&b, "| Complex word ratio | %.4f |\n", rd.ComplexWordsRatio)
	fmt.Fprintf(&b, "| Avg syllables per word | %.2f |\n", rd.AvgSyllablesPerWord)
	b.WriteString("\n")

	if negative := mostNegative(res.Sentences, topSentences); len(negative) > 0 {
		b.WriteString("## Most Negative Sentences\n\n")
		for i, s := range negative {
			fmt.Fprintf(&b, "%d. **%.3f** %s\n", i+1, s.FinalScore, escapeMarkdown(s.Sentence))
			if len(s.RiskIndicators) > 0 {
				fmt.Fprintf(&b, "   - Indicators: %s\n", strings.Join(s.RiskIndicators, ", "))
			}
			for _, m := range s.FinancialMetrics {
				fmt.Fprintf(&b, "   - Metric: %s (%s, %.3f)\n", m.Details, m.Kind, m.Score)
			}
			if len(s.ValenceShifters) > 0 {
				fmt.Fprintf(&b, "   - Shifters: %s\n", strings.Join(s.ValenceShifters, ", "))
			}
		}
		b.WriteString("\n")
	}

	if r.includeFooter {
		p := model.DefaultPrinciples()
		b.WriteString("---\n\n")
		fmt.Fprintf(&b, "_Deterministic: %t. Transparent: %t. Non-advisory: %t. ", p.Deterministic, p.Transparent, p.NonAdvisory)
		b.WriteString("Scores measure distress language, not solvency._\n")
	}

	return b.String()
}

// RenderMarkdown writes the Markdown report to path
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	return writeFile(path, []byte(r.Markdown(report)))
}

// HTML converts the Markdown report to a standalone HTML page
func (r *Renderer) HTML(report *model.Report) ([]byte, error) {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithXHTML()),
	)

	var body bytes.Buffer
	if err := md.Convert([]byte(r.Markdown(report)), &body); err != nil {
		return nil, fmt.Errorf("convert markdown: %w", err)
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&page, "<title>Distress Report: %s</title>\n", htmlEscaper.Replace(report.Subject))
	page.WriteString("<style>body{font-family:sans-serif;max-width:960px;margin:2em auto}table{border-collapse:collapse}td,th{border:1px solid #ccc;padding:4px 8px}</style>\n")
	page.WriteString("</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.Bytes(), nil
}

// RenderHTML writes the HTML report to path
func (r *Renderer) RenderHTML(report *model.Report, path string) error {
	data, err := r.HTML(report)
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

// RenderSummary prints a short human summary
func (r *Renderer) RenderSummary(w io.Writer, report *model.Report) {
	res := report.Result
	fmt.Fprintf(w, "\n%s\n", report.Subject)
	fmt.Fprintf(w, "  Classification:     %s (%.4f)\n", res.Classification, res.DocumentSentiment)
	fmt.Fprintf(w, "  Bankruptcy risk:    %.4f\n", res.BankruptcyRisk)
	fmt.Fprintf(w, "  Economic headwinds: %.4f\n", res.EconomicHeadwinds)
	fmt.Fprintf(w, "  Complexity:         %.4f (%s)\n", res.Complexity, res.ComplexityLevel)
	fmt.Fprintf(w, "  Risk indicators:    %d in %d/%d sentences\n",
		res.RiskIndicatorsCount, res.SentencesWithRiskFlags, res.TotalSentences)
	fmt.Fprintf(w, "  Fog / FK grade:     %.2f / %.2f\n", res.FogIndex, res.FleschKincaid)
}

// mostNegative returns up to n sentences with a negative final score, most negative first
func mostNegative(sentences []model.SentenceResult, n int) []model.SentenceResult {
	var negative []model.SentenceResult
	for _, s := range sentences {
		if s.FinalScore < 0 {
			negative = append(negative, s)
		}
	}
	sort.SliceStable(negative, func(i, j int) bool {
		return negative[i].FinalScore < negative[j].FinalScore
	})
	if len(negative) > n {
		negative = negative[:n]
	}
	return negative
}

var markdownEscaper = strings.NewReplacer("*", `\*`, "_", `\_`, "|", `\|`, "`", "\\`")

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// writeFile writes data to path, or to stdout when path is "-"
func writeFile(path string, data []byte) error {
	if path == Stdin {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
