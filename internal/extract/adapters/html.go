package adapters

import (
	"strings"

	"github.com/ppiankov/distress/internal/extract"
)

// HTMLAdapter extracts visible text from HTML filings (EDGAR .htm documents)
type HTMLAdapter struct{}

// NewHTMLAdapter creates a new HTML adapter
func NewHTMLAdapter() *HTMLAdapter {
	return &HTMLAdapter{}
}

// Name returns the adapter name
func (a *HTMLAdapter) Name() string {
	return "html"
}

// CanHandle matches HTML content types and .htm/.html sources
func (a *HTMLAdapter) CanHandle(source string, contentType string) bool {
	ct := strings.ToLower(contentType)
	if strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml") {
		return true
	}
	switch extension(source) {
	case ".htm", ".html", ".xhtml":
		return true
	}
	return false
}

// Extract returns the visible text of the document
func (a *HTMLAdapter) Extract(content string) (string, error) {
	return extract.VisibleText(content)
}
