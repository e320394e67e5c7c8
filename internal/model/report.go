package model

import "time"

// Report wraps a document analysis with provenance about where the text came from
type Report struct {
	Subject    string     `json:"subject"`              // Human-readable name of the document
	Source     string     `json:"source"`               // File path, URL or "-" for stdin
	AnalyzedAt time.Time  `json:"analyzed_at"`          // When the analysis ran
	Adapter    string     `json:"adapter"`              // Input adapter used to obtain prose
	Section    string     `json:"section,omitempty"`    // Selected filing section, if any
	Classifier string     `json:"classifier"`           // Sentence classifier provider
	FetchMeta  *FetchMeta `json:"fetch_meta,omitempty"` // HTTP metadata for URL sources

	Result *DocumentResult `json:"result"`
}

// FetchMeta contains HTTP metadata from fetching the source
type FetchMeta struct {
	StatusCode   int               `json:"status_code"`
	ContentType  string            `json:"content_type,omitempty"`
	LastModified string            `json:"last_modified,omitempty"`
	ETag         string            `json:"etag,omitempty"`
	Headers      map[string]string `json:"headers,omitempty"`
}

// Principles documents the scoring guarantees printed in report footers
type Principles struct {
	Deterministic bool `json:"deterministic"` // Same input and classifier give the same result
	Transparent   bool `json:"transparent"`   // Every score is traceable to terms, patterns and shifters
	NonAdvisory   bool `json:"non_advisory"`  // A language signal, not a solvency opinion
}

// DefaultPrinciples returns the standard report principles
func DefaultPrinciples() Principles {
	return Principles{
		Deterministic: true,
		Transparent:   true,
		NonAdvisory:   true,
	}
}
