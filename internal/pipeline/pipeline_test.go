package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/distress/internal/analyzer"
	"github.com/ppiankov/distress/internal/classifier"
	"github.com/ppiankov/distress/internal/model"
)

const tenK = `ITEM 1. BUSINESS
We operate department stores in the Midwest and sell apparel online.

ITEM 1A. RISK FACTORS
There is substantial doubt about our ability to continue as a going concern. Severe inflation reduced consumer demand.

ITEM 7. MANAGEMENT'S DISCUSSION AND ANALYSIS
Net sales increased 10% and margins improved during the year.
`

func newTestPipeline(t *testing.T, opts Options) *Pipeline {
	t.Helper()
	cfg := model.DefaultConfig()
	cfg.HTTP.RespectRobots = false
	cfg.HTTP.Timeout = 5 * time.Second

	p := NewPipeline(cfg, analyzer.New(classifier.NewStatic(0), analyzer.Options{}), opts)
	p.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return p
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestAnalyzeSource_File(t *testing.T) {
	path := writeTemp(t, "acme-10k.txt", tenK)
	p := newTestPipeline(t, Options{})

	report, err := p.AnalyzeSource(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "acme-10k", report.Subject)
	assert.Equal(t, "plain", report.Adapter)
	assert.Equal(t, "static", report.Classifier)
	assert.Empty(t, report.Section)
	assert.Nil(t, report.FetchMeta)
	assert.Greater(t, report.Result.SentencesWithCritical, 0)
	assert.Equal(t, model.ClassificationNegative, report.Result.Classification)
}

func TestAnalyzeSource_Section(t *testing.T) {
	path := writeTemp(t, "acme.txt", tenK)
	p := newTestPipeline(t, Options{Sections: []string{"7"}})

	report, err := p.AnalyzeSource(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "7", report.Section)
	assert.Zero(t, report.Result.SentencesWithCritical)
	for _, s := range report.Result.Sentences {
		assert.NotContains(t, s.Sentence, "going concern")
	}
}

func TestAnalyzeSource_MissingSectionFallsBack(t *testing.T) {
	path := writeTemp(t, "acme.txt", tenK)
	p := newTestPipeline(t, Options{Sections: []string{"9A"}})

	report, err := p.AnalyzeSource(context.Background(), path)
	require.NoError(t, err)
	assert.Greater(t, report.Result.SentencesWithCritical, 0)
}

func TestAnalyzeSource_Stdin(t *testing.T) {
	p := newTestPipeline(t, Options{Stdin: strings.NewReader("Chapter 11 bankruptcy filing imminent, going concern doubt.")})

	report, err := p.AnalyzeSource(context.Background(), Stdin)
	require.NoError(t, err)
	assert.Equal(t, "stdin", report.Subject)
	assert.Equal(t, 1, report.Result.TotalSentences)
}

func TestAnalyzeSource_URL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = fmt.Fprint(w, `<html><head><style>p{}</style></head><body>
<p>Our lenders issued a notice of covenant violation.</p>
<script>var x = "bankruptcy";</script>
</body></html>`)
	}))
	defer server.Close()

	p := newTestPipeline(t, Options{})

	report, err := p.AnalyzeSource(context.Background(), server.URL+"/filings/acme-annual-report.htm")
	require.NoError(t, err)

	assert.Equal(t, "html", report.Adapter)
	assert.Equal(t, "acme annual report", report.Subject)
	require.NotNil(t, report.FetchMeta)
	assert.Equal(t, http.StatusOK, report.FetchMeta.StatusCode)
	require.Len(t, report.Result.Sentences, 1)
	assert.Equal(t, []string{"covenant violation"}, report.Result.Sentences[0].RiskIndicators)
}

func TestAnalyzeSource_Empty(t *testing.T) {
	path := writeTemp(t, "empty.txt", "   \n")
	p := newTestPipeline(t, Options{})

	_, err := p.AnalyzeSource(context.Background(), path)
	assert.True(t, errors.Is(err, analyzer.ErrEmptyDocument))
}

func TestAnalyzeSource_Errors(t *testing.T) {
	p := newTestPipeline(t, Options{})
	_, err := p.AnalyzeSource(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)

	p = newTestPipeline(t, Options{Adapter: "pdf"})
	_, err = p.AnalyzeSource(context.Background(), writeTemp(t, "a.txt", tenK))
	assert.ErrorContains(t, err, `unknown adapter "pdf"`)
}

func sampleReport(t *testing.T) *model.Report {
	t.Helper()
	p := newTestPipeline(t, Options{})
	report, err := p.AnalyzeSource(context.Background(), writeTemp(t, "acme.txt", tenK))
	require.NoError(t, err)
	return report
}

func TestRenderer_JSON(t *testing.T) {
	report := sampleReport(t)

	var full bytes.Buffer
	require.NoError(t, NewRenderer(true, true).WriteJSON(&full, report))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(full.Bytes(), &decoded))
	result := decoded["result"].(map[string]any)
	assert.Contains(t, result, "sentence_details")
	assert.Contains(t, result, "bankruptcy_risk_score")

	var trimmed bytes.Buffer
	require.NoError(t, NewRenderer(true, false).WriteJSON(&trimmed, report))
	assert.NotContains(t, trimmed.String(), "sentence_details")
	assert.NotEmpty(t, report.Result.Sentences, "rendering must not mutate the report")
}

func TestRenderer_Markdown(t *testing.T) {
	report := sampleReport(t)

	md := NewRenderer(true, true).Markdown(report)
	assert.Contains(t, md, "# Distress Report: acme")
	assert.Contains(t, md, "| Classification | **Negative** |")
	assert.Contains(t, md, "| critical_bankruptcy |")
	assert.Contains(t, md, "## Most Negative Sentences")
	assert.Contains(t, md, "Non-advisory: true")

	noFooter := NewRenderer(false, true).Markdown(report)
	assert.NotContains(t, noFooter, "Non-advisory")
}

func TestRenderer_HTML(t *testing.T) {
	report := sampleReport(t)

	page, err := NewRenderer(true, true).HTML(report)
	require.NoError(t, err)
	assert.Contains(t, string(page), "<title>Distress Report: acme</title>")
	assert.Contains(t, string(page), "<table>")
	assert.Contains(t, string(page), "<h2>Summary</h2>")
}

func TestRenderer_Files(t *testing.T) {
	report := sampleReport(t)
	r := NewRenderer(true, true)
	dir := t.TempDir()

	require.NoError(t, r.RenderJSON(report, filepath.Join(dir, "r.json")))
	require.NoError(t, r.RenderMarkdown(report, filepath.Join(dir, "r.md")))
	require.NoError(t, r.RenderHTML(report, filepath.Join(dir, "r.html")))

	for _, name := range []string{"r.json", "r.md", "r.html"} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	NewRenderer(true, true).RenderSummary(&buf, sampleReport(t))
	assert.Contains(t, buf.String(), "Classification:     Negative")
}

func TestMostNegative(t *testing.T) {
	sentences := []model.SentenceResult{
		{Sentence: "a", FinalScore: -0.2},
		{Sentence: "b", FinalScore: 0.5},
		{Sentence: "c", FinalScore: -0.9},
		{Sentence: "d", FinalScore: -0.4},
	}

	got := mostNegative(sentences, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].Sentence)
	assert.Equal(t, "d", got[1].Sentence)
}
