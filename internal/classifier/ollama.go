package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ppiankov/distress/internal/model"
)

const defaultOllamaModel = "llama3.1"

// OllamaClassifier asks a local Ollama model for class probabilities
type OllamaClassifier struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// Ollama API structures
type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	System  string        `json:"system,omitempty"`
	Stream  bool          `json:"stream"`
	Format  string        `json:"format,omitempty"`
	Options ollamaOptions `json:"options,omitempty"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"` // Max tokens
}

type ollamaResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

type ollamaError struct {
	Error string `json:"error"`
}

// NewOllamaClassifier creates a new Ollama classifier
func NewOllamaClassifier(cfg model.ClassifierConfig) (*OllamaClassifier, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	modelName := cfg.Model
	if modelName == "" {
		modelName = defaultOllamaModel
	}

	return &OllamaClassifier{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      modelName,
		httpClient: &http.Client{Timeout: timeoutOrDefault(cfg.Timeout)},
	}, nil
}

// Name returns the provider name
func (c *OllamaClassifier) Name() string {
	return "ollama"
}

// Classify scores one sentence using JSON output mode
func (c *OllamaClassifier) Classify(ctx context.Context, sentence string) (model.ClassifierScore, error) {
	body, err := json.Marshal(ollamaRequest{
		Model:   c.model,
		Prompt:  userPrompt(sentence),
		System:  systemPrompt,
		Stream:  false,
		Format:  "json",
		Options: ollamaOptions{Temperature: 0, NumPredict: 60},
	})
	if err != nil {
		return model.ClassifierScore{}, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/api/generate", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return model.ClassifierScore{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.ClassifierScore{}, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.ClassifierScore{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr ollamaError
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error != "" {
			return model.ClassifierScore{}, fmt.Errorf("Ollama API error (%d): %s", resp.StatusCode, apiErr.Error)
		}
		return model.ClassifierScore{}, fmt.Errorf("Ollama API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var ollamaResp ollamaResponse
	if err := json.Unmarshal(respBody, &ollamaResp); err != nil {
		return model.ClassifierScore{}, fmt.Errorf("unmarshal response: %w", err)
	}

	return parseProbabilities(ollamaResp.Response)
}
