package classifier

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/ppiankov/distress/internal/model"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestFinBERTClassifier_ClassifyBatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/ProsusAI/finbert" {
			t.Errorf("Expected path /models/ProsusAI/finbert, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer hf-key" {
			t.Errorf("Expected bearer token, got %s", r.Header.Get("Authorization"))
		}

		var req finbertRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		if len(req.Inputs) != 2 {
			t.Errorf("Expected 2 inputs, got %d", len(req.Inputs))
		}

		_, _ = w.Write([]byte(`[
			[{"label":"negative","score":0.9},{"label":"neutral","score":0.08},{"label":"positive","score":0.02}],
			[{"label":"positive","score":0.7},{"label":"neutral","score":0.2},{"label":"negative","score":0.1}]
		]`))
	}))
	defer server.Close()

	c, err := NewFinBERTClassifier(model.ClassifierConfig{
		APIKey:  "hf-key",
		BaseURL: server.URL + "/models/",
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("Failed to create classifier: %v", err)
	}

	scores, err := c.ClassifyBatch(context.Background(), []string{"Going concern doubt.", "Sales grew."})
	if err != nil {
		t.Fatalf("ClassifyBatch failed: %v", err)
	}
	if len(scores) != 2 {
		t.Fatalf("Expected 2 scores, got %d", len(scores))
	}
	if scores[0].Sentiment >= 0 {
		t.Errorf("Expected negative sentiment, got %f", scores[0].Sentiment)
	}
	if !approx(scores[0].Confidence, 0.9) {
		t.Errorf("Expected confidence 0.9, got %f", scores[0].Confidence)
	}
	if scores[1].Sentiment <= 0 {
		t.Errorf("Expected positive sentiment, got %f", scores[1].Sentiment)
	}
}

func TestFinBERTClassifier_FlatResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"label":"neutral","score":1.0}]`))
	}))
	defer server.Close()

	c, _ := NewFinBERTClassifier(model.ClassifierConfig{BaseURL: server.URL, Model: "finbert"})

	score, err := c.Classify(context.Background(), "The board met in May.")
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if score.Neutral != 1.0 || score.Sentiment != 0 {
		t.Errorf("Expected neutral score, got %+v", score)
	}
}

func TestFinBERTClassifier_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"Model ProsusAI/finbert is currently loading"}`))
	}))
	defer server.Close()

	c, _ := NewFinBERTClassifier(model.ClassifierConfig{BaseURL: server.URL})

	_, err := c.Classify(context.Background(), "Sales fell.")
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !strings.Contains(err.Error(), "currently loading") {
		t.Errorf("Expected API message in error, got %v", err)
	}
}

func TestFinBERTClassifier_CountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[[{"label":"neutral","score":1.0}]]`))
	}))
	defer server.Close()

	c, _ := NewFinBERTClassifier(model.ClassifierConfig{BaseURL: server.URL})

	if _, err := c.ClassifyBatch(context.Background(), []string{"a", "b"}); err == nil {
		t.Fatal("Expected error for result count mismatch")
	}
}

func TestOpenAIClassifier_Classify(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Expected path /chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Expected Authorization header Bearer test-key, got %s", r.Header.Get("Authorization"))
		}

		var req openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		if req.ResponseFormat == nil || req.ResponseFormat.Type != openai.ChatCompletionResponseFormatTypeJSONObject {
			t.Error("Expected JSON response format")
		}

		resp := openai.ChatCompletionResponse{
			ID:    "chatcmpl-123",
			Model: "gpt-4o-mini",
			Choices: []openai.ChatCompletionChoice{
				{
					Message: openai.ChatCompletionMessage{
						Role:    "assistant",
						Content: `{"negative": 0.85, "neutral": 0.1, "positive": 0.05}`,
					},
					FinishReason: "stop",
				},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	c, err := NewOpenAIClassifier(model.ClassifierConfig{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("Failed to create classifier: %v", err)
	}

	score, err := c.Classify(context.Background(), "We breached the leverage covenant.")
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if !approx(score.Negative, 0.85) {
		t.Errorf("Expected negative 0.85, got %f", score.Negative)
	}
	if score.Sentiment >= 0 {
		t.Errorf("Expected negative sentiment, got %f", score.Sentiment)
	}
}

func TestOpenAIClassifier_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{})
	}))
	defer server.Close()

	c, _ := NewOpenAIClassifier(model.ClassifierConfig{APIKey: "test-key", BaseURL: server.URL})

	if _, err := c.Classify(context.Background(), "Sales fell."); err == nil {
		t.Fatal("Expected error, got nil")
	}
}

func TestOpenAIClassifier_MissingKey(t *testing.T) {
	if _, err := NewOpenAIClassifier(model.ClassifierConfig{}); err == nil {
		t.Fatal("Expected error for missing API key")
	}
}

func TestAnthropicClassifier_Classify(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("Expected path /v1/messages, got %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("Expected x-api-key header test-key, got %s", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") != "2023-06-01" {
			t.Errorf("Expected anthropic-version header 2023-06-01, got %s", r.Header.Get("anthropic-version"))
		}

		_, _ = w.Write([]byte(`{"id":"msg_1","type":"message","content":[{"type":"text","text":"{\"negative\":0.1,\"neutral\":0.3,\"positive\":0.6}"}]}`))
	}))
	defer server.Close()

	c, err := NewAnthropicClassifier(model.ClassifierConfig{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("Failed to create classifier: %v", err)
	}

	score, err := c.Classify(context.Background(), "Margins expanded.")
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if !approx(score.Positive, 0.6) || !approx(score.Confidence, 0.6) {
		t.Errorf("Unexpected score: %+v", score)
	}
}

func TestAnthropicClassifier_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type": "error", "error": {"type": "rate_limit_error", "message": "Rate limit exceeded"}}`))
	}))
	defer server.Close()

	c, _ := NewAnthropicClassifier(model.ClassifierConfig{APIKey: "test-key", BaseURL: server.URL})

	_, err := c.Classify(context.Background(), "Sales fell.")
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !strings.Contains(err.Error(), "Rate limit exceeded") {
		t.Errorf("Expected API message in error, got %v", err)
	}
}

func TestAnthropicClassifier_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{malformed json`))
	}))
	defer server.Close()

	c, _ := NewAnthropicClassifier(model.ClassifierConfig{APIKey: "test-key", BaseURL: server.URL})

	if _, err := c.Classify(context.Background(), "Sales fell."); err == nil {
		t.Fatal("Expected error, got nil")
	}
}

func TestOllamaClassifier_Classify(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("Expected path /api/generate, got %s", r.URL.Path)
		}

		var req ollamaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		if req.Format != "json" || req.Stream {
			t.Errorf("Expected non-streaming JSON request, got format=%q stream=%v", req.Format, req.Stream)
		}
		if req.Model != "mistral" {
			t.Errorf("Expected model mistral, got %s", req.Model)
		}

		_ = json.NewEncoder(w).Encode(ollamaResponse{
			Model:    "mistral",
			Response: `{"negative": 0.2, "neutral": 0.7, "positive": 0.1}`,
			Done:     true,
		})
	}))
	defer server.Close()

	c, err := NewOllamaClassifier(model.ClassifierConfig{BaseURL: server.URL + "/", Model: "mistral"})
	if err != nil {
		t.Fatalf("Failed to create classifier: %v", err)
	}

	score, err := c.Classify(context.Background(), "The company leases its headquarters.")
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if !approx(score.Neutral, 0.7) {
		t.Errorf("Expected neutral 0.7, got %f", score.Neutral)
	}
}

func TestOllamaClassifier_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model 'mistral' not found"}`))
	}))
	defer server.Close()

	c, _ := NewOllamaClassifier(model.ClassifierConfig{BaseURL: server.URL, Model: "mistral"})

	_, err := c.Classify(context.Background(), "Sales fell.")
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("Expected API message in error, got %v", err)
	}
}
