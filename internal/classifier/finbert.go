package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ppiankov/distress/internal/model"
)

const (
	defaultFinBERTModel   = "ProsusAI/finbert"
	defaultFinBERTBaseURL = "https://api-inference.huggingface.co/models"
)

// FinBERTClassifier calls a text-classification inference endpoint serving a
// FinBERT-style model (labels positive, negative, neutral)
type FinBERTClassifier struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

type finbertRequest struct {
	Inputs  []string       `json:"inputs"`
	Options map[string]any `json:"options,omitempty"`
}

type finbertLabel struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type finbertError struct {
	Error string `json:"error"`
}

// NewFinBERTClassifier creates a FinBERT classifier. BaseURL is the models root;
// the model name is appended to it.
func NewFinBERTClassifier(cfg model.ClassifierConfig) (*FinBERTClassifier, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultFinBERTBaseURL
	}
	modelName := cfg.Model
	if modelName == "" {
		modelName = defaultFinBERTModel
	}

	return &FinBERTClassifier{
		endpoint:   strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(modelName, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeoutOrDefault(cfg.Timeout)},
	}, nil
}

// Name returns the provider name
func (c *FinBERTClassifier) Name() string {
	return "finbert"
}

// Classify scores one sentence
func (c *FinBERTClassifier) Classify(ctx context.Context, sentence string) (model.ClassifierScore, error) {
	scores, err := c.ClassifyBatch(ctx, []string{sentence})
	if err != nil {
		return model.ClassifierScore{}, err
	}
	return scores[0], nil
}

// ClassifyBatch scores several sentences in one request
func (c *FinBERTClassifier) ClassifyBatch(ctx context.Context, sentences []string) ([]model.ClassifierScore, error) {
	body, err := json.Marshal(finbertRequest{
		Inputs:  sentences,
		Options: map[string]any{"wait_for_model": true},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr finbertError
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, string(respBody))
	}

	labels, err := decodeLabels(respBody)
	if err != nil {
		return nil, err
	}
	if len(labels) != len(sentences) {
		return nil, fmt.Errorf("expected %d results, got %d", len(sentences), len(labels))
	}

	scores := make([]model.ClassifierScore, len(labels))
	for i, ls := range labels {
		scores[i] = scoresFromLabels(ls)
	}
	return scores, nil
}

// decodeLabels accepts both the batched [[...], ...] shape and the flat [...]
// shape some endpoints return for a single input
func decodeLabels(body []byte) ([][]finbertLabel, error) {
	var nested [][]finbertLabel
	if err := json.Unmarshal(body, &nested); err == nil {
		return nested, nil
	}

	var flat []finbertLabel
	if err := json.Unmarshal(body, &flat); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(flat) == 0 {
		return nil, errors.New("empty response")
	}
	return [][]finbertLabel{flat}, nil
}

func scoresFromLabels(labels []finbertLabel) model.ClassifierScore {
	var neg, neu, pos float64
	for _, l := range labels {
		switch strings.ToLower(l.Label) {
		case "negative", "label_1":
			neg = l.Score
		case "neutral", "label_2":
			neu = l.Score
		case "positive", "label_0":
			pos = l.Score
		}
	}
	return NewScores(neg, neu, pos)
}
