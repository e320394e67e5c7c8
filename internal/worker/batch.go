package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/distress/internal/model"
)

// DocumentAnalyzer analyzes one document source (file path, "-" or URL)
type DocumentAnalyzer interface {
	AnalyzeSource(ctx context.Context, source string) (*model.Report, error)
}

// DocumentJob represents a document analysis job
type DocumentJob struct {
	Source   string
	Analyzer DocumentAnalyzer
}

// Execute executes the document job
func (j *DocumentJob) Execute(ctx context.Context) Result {
	report, err := j.Analyzer.AnalyzeSource(ctx, j.Source)
	if err != nil {
		return &DocumentResult{
			Source: j.Source,
			Error:  err,
		}
	}
	return &DocumentResult{
		Source: j.Source,
		Report: report,
	}
}

// DocumentResult represents the result of a document job
type DocumentResult struct {
	Source string
	Report *model.Report
	Error  error
}

// GetError returns the error from the document result
func (r *DocumentResult) GetError() error {
	return r.Error
}

// BatchProcessor analyzes multiple documents concurrently
type BatchProcessor struct {
	analyzer    DocumentAnalyzer
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(analyzer DocumentAnalyzer, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		analyzer:    analyzer,
		concurrency: concurrency,
	}
}

// ProcessSources analyzes the sources concurrently; results follow input order
func (b *BatchProcessor) ProcessSources(ctx context.Context, sources []string) []*DocumentResult {
	results := Map(ctx, b.concurrency, len(sources), func(ctx context.Context, i int) *DocumentResult {
		job := &DocumentJob{Source: sources[i], Analyzer: b.analyzer}
		return job.Execute(ctx).(*DocumentResult)
	})

	for i, r := range results {
		if r == nil {
			results[i] = &DocumentResult{Source: sources[i], Error: ctx.Err()}
		}
	}
	return results
}

// ProcessFile reads sources from a file and analyzes them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*DocumentResult, error) {
	sources, err := ReadSourcesFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read sources: %w", err)
	}

	return b.ProcessSources(ctx, sources), nil
}

// ReadSourcesFromFile reads document sources from a file (one per line)
func ReadSourcesFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var sources []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			sources = append(sources, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return sources, nil
}
