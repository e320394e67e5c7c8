package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/ppiankov/distress/internal/analyzer"
	"github.com/ppiankov/distress/internal/lexicon"
	"github.com/ppiankov/distress/internal/model"
	"github.com/ppiankov/distress/internal/score"
)

type handler struct {
	analyzer     *analyzer.Analyzer
	lexicon      *lexicon.Store
	maxBodyBytes int64
}

// AnalyzeRequest is the body of POST /api/v1/analyze
type AnalyzeRequest struct {
	Text             string `json:"text"`
	IncludeSentences bool   `json:"include_sentences"`
}

// SentenceRequest is the body of POST /api/v1/sentences
type SentenceRequest struct {
	Sentence string `json:"sentence"`
}

// CategoryTerms lists one lexicon category
type CategoryTerms struct {
	Category model.Category   `json:"category"`
	Weight   float64          `json:"weight"`
	Count    int              `json:"count"`
	Terms    []model.RiskTerm `json:"terms"`
}

// LexiconSummary is the body of GET /api/v1/lexicon
type LexiconSummary struct {
	Size        int             `json:"size"`
	Categories  map[string]int  `json:"categories"`
	Shifters    int             `json:"valence_shifters"`
	Uncertainty []string        `json:"uncertainty_markers"`
	Terms       []CategoryTerms `json:"terms"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) analyzeText(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if !h.decode(w, r, &req) {
		return
	}

	result := h.analyzer.AnalyzeText(r.Context(), req.Text)
	if result == nil {
		writeError(w, r, http.StatusBadRequest, analyzer.ErrEmptyDocument.Error())
		return
	}
	if !req.IncludeSentences {
		result.Sentences = nil
	}
	writeJSON(w, r, http.StatusOK, result)
}

func (h *handler) analyzeSentence(w http.ResponseWriter, r *http.Request) {
	var req SentenceRequest
	if !h.decode(w, r, &req) {
		return
	}

	result := h.analyzer.AnalyzeSentence(r.Context(), req.Sentence)
	if result == nil {
		writeError(w, r, http.StatusBadRequest, "empty sentence")
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

func (h *handler) lexiconSummary(w http.ResponseWriter, r *http.Request) {
	summary := LexiconSummary{
		Size:        h.lexicon.Size(),
		Categories:  make(map[string]int, len(model.Categories)),
		Shifters:    len(h.lexicon.Shifters()),
		Uncertainty: h.lexicon.UncertaintyMarkers(),
	}
	for _, c := range model.Categories {
		terms := h.categoryTerms(c)
		summary.Categories[string(c)] = terms.Count
		summary.Terms = append(summary.Terms, terms)
	}
	writeJSON(w, r, http.StatusOK, summary)
}

func (h *handler) lexiconCategory(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "category")
	for _, c := range model.Categories {
		if string(c) == name {
			writeJSON(w, r, http.StatusOK, h.categoryTerms(c))
			return
		}
	}
	writeError(w, r, http.StatusNotFound, fmt.Sprintf("unknown category %q", name))
}

func (h *handler) categoryTerms(c model.Category) CategoryTerms {
	terms := h.lexicon.Terms(c)
	return CategoryTerms{
		Category: c,
		Weight:   score.CategoryWeight(c),
		Count:    len(terms),
		Terms:    terms,
	}
}

// decode reads a JSON body under the size cap, writing the error response
// itself when it fails
func (h *handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body := r.Body
	if h.maxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, fmt.Sprintf("body exceeds %d bytes", tooLarge.Limit))
			return false
		}
		writeError(w, r, http.StatusBadRequest, "malformed JSON: "+strings.TrimPrefix(err.Error(), "json: "))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, errorResponse{Error: msg})
}
