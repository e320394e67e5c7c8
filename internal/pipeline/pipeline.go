package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ppiankov/distress/internal/analyzer"
	"github.com/ppiankov/distress/internal/extract/adapters"
	"github.com/ppiankov/distress/internal/model"
)

// Stdin is the source name that reads the document from standard input
const Stdin = "-"

// Options selects how sources are turned into prose
type Options struct {
	// Adapter forces an input adapter by name; empty picks one per source
	Adapter string
	// Sections lists 10-K items to analyze, e.g. "1A", "7"
	Sections []string
	// Stdin overrides os.Stdin for the "-" source
	Stdin io.Reader
}

// Pipeline loads a source, extracts its prose and analyzes it
type Pipeline struct {
	fetcher  *Fetcher
	registry *adapters.Registry
	analyzer *analyzer.Analyzer
	opts     Options
	now      func() time.Time
}

// NewPipeline creates a new pipeline with the given configuration
func NewPipeline(cfg *model.Config, a *analyzer.Analyzer, opts Options) *Pipeline {
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	return &Pipeline{
		fetcher:  NewFetcherFromConfig(cfg.HTTP),
		registry: adapters.NewRegistry(),
		analyzer: a,
		opts:     opts,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Document is a loaded source before analysis
type Document struct {
	Source      string
	Subject     string
	Content     string
	ContentType string
	FetchMeta   *model.FetchMeta
}

// Load reads a file path, "-" for stdin, or an http(s) URL
func (p *Pipeline) Load(ctx context.Context, source string) (*Document, error) {
	switch {
	case source == Stdin:
		data, err := io.ReadAll(p.opts.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return &Document{Source: source, Subject: "stdin", Content: string(data)}, nil

	case isURL(source):
		result, err := p.fetcher.FetchWithRetry(ctx, source)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", source, err)
		}
		meta := result.Meta
		return &Document{
			Source:      result.FinalURL,
			Subject:     result.Subject,
			Content:     result.Body,
			ContentType: result.Meta.ContentType,
			FetchMeta:   &meta,
		}, nil

	default:
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", source, err)
		}
		subject := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
		return &Document{Source: source, Subject: subject, Content: string(data)}, nil
	}
}

// Prose runs the adapter and section selection over a loaded document. It
// returns the text and the adapter name.
func (p *Pipeline) Prose(ctx context.Context, doc *Document) (string, string, error) {
	adapter := p.registry.FindAdapter(doc.Source, doc.ContentType)
	if p.opts.Adapter != "" {
		a, ok := p.registry.Get(p.opts.Adapter)
		if !ok {
			return "", "", fmt.Errorf("unknown adapter %q", p.opts.Adapter)
		}
		adapter = a
	}

	text, err := adapter.Extract(doc.Content)
	if err != nil {
		return "", "", fmt.Errorf("extract %s: %w", adapter.Name(), err)
	}

	if len(p.opts.Sections) > 0 {
		selected, ok := adapters.SelectSections(text, p.opts.Sections)
		if !ok {
			zerolog.Ctx(ctx).Warn().
				Strs("sections", p.opts.Sections).
				Str("source", doc.Source).
				Msg("sections not found, analyzing whole document")
		}
		text = selected
	}
	return text, adapter.Name(), nil
}

// AnalyzeSource loads, extracts and analyzes one source into a report
func (p *Pipeline) AnalyzeSource(ctx context.Context, source string) (*model.Report, error) {
	doc, err := p.Load(ctx, source)
	if err != nil {
		return nil, err
	}

	text, adapterName, err := p.Prose(ctx, doc)
	if err != nil {
		return nil, err
	}

	result := p.analyzer.AnalyzeText(ctx, text)
	if result == nil {
		return nil, fmt.Errorf("%s: %w", source, analyzer.ErrEmptyDocument)
	}

	zerolog.Ctx(ctx).Info().
		Str("source", doc.Source).
		Int("sentences", result.TotalSentences).
		Float64("document_sentiment", result.DocumentSentiment).
		Msg("analyzed document")

	return &model.Report{
		Subject:    doc.Subject,
		Source:     doc.Source,
		AnalyzedAt: p.now(),
		Adapter:    adapterName,
		Section:    strings.Join(p.opts.Sections, ","),
		Classifier: p.analyzer.ClassifierName(),
		FetchMeta:  doc.FetchMeta,
		Result:     result,
	}, nil
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}
