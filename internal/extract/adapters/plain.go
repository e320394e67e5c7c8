package adapters

// PlainAdapter is the fallback adapter for plain-text filings
type PlainAdapter struct{}

// NewPlainAdapter creates a new plain-text adapter
func NewPlainAdapter() *PlainAdapter {
	return &PlainAdapter{}
}

// Name returns the adapter name
func (a *PlainAdapter) Name() string {
	return "plain"
}

// CanHandle always returns true (fallback adapter)
func (a *PlainAdapter) CanHandle(source string, contentType string) bool {
	return true
}

// Extract returns the content unchanged
func (a *PlainAdapter) Extract(content string) (string, error) {
	return content, nil
}
