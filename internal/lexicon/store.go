package lexicon

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ppiankov/distress/internal/model"
	"github.com/rs/zerolog"
)

// ErrDuplicatePhrase is reported when a phrase is registered in more than one category
var ErrDuplicatePhrase = errors.New("duplicate lexicon phrase")

// Store is an immutable lexicon of risk phrases, valence shifters and uncertainty markers.
// A Store is safe for concurrent use.
type Store struct {
	terms       []model.RiskTerm // longest phrase first
	byPhrase    map[string]model.RiskTerm
	shifters    map[string]model.ValenceShifter
	uncertainty map[string]struct{}
}

// New builds a Store from tables. Cross-category phrase collisions keep the
// higher-priority category, and term scores are clamped into [-1, 0]; both are
// logged as warnings on the context logger.
func New(ctx context.Context, t Tables) *Store {
	log := zerolog.Ctx(ctx)

	s := &Store{
		byPhrase:    make(map[string]model.RiskTerm),
		shifters:    make(map[string]model.ValenceShifter),
		uncertainty: make(map[string]struct{}),
	}

	for _, category := range model.Categories {
		for _, e := range t.Terms[category] {
			phrase := strings.ToLower(strings.TrimSpace(e.Text))
			if phrase == "" {
				continue
			}
			if existing, ok := s.byPhrase[phrase]; ok {
				if existing.Category != category {
					log.Warn().
						Err(fmt.Errorf("%w: %q", ErrDuplicatePhrase, phrase)).
						Str("kept", string(existing.Category)).
						Str("ignored", string(category)).
						Msg("lexicon phrase collision")
				}
				continue
			}

			score := e.Value
			if score > 0 || score < -1 {
				clamped := clamp(score, -1, 0)
				log.Warn().
					Str("phrase", phrase).
					Float64("score", score).
					Float64("clamped", clamped).
					Msg("lexicon score outside [-1, 0]")
				score = clamped
			}

			term := model.RiskTerm{Phrase: phrase, Score: score, Category: category}
			s.byPhrase[phrase] = term
			s.terms = append(s.terms, term)
		}
	}

	// Stable sort keeps category priority and table order among equal lengths
	sort.SliceStable(s.terms, func(i, j int) bool {
		return len(s.terms[i].Phrase) > len(s.terms[j].Phrase)
	})

	// Later registrations win: amplifier < de_amplifier < negator < adversative
	s.registerShifters(t.Amplifiers, model.ShifterAmplifier)
	s.registerShifters(t.DeAmplifiers, model.ShifterDeAmplifier)
	s.registerShifters(t.Negators, model.ShifterNegator)
	s.registerShifters(t.Adversatives, model.ShifterAdversative)

	for _, w := range t.Uncertainty {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			s.uncertainty[w] = struct{}{}
		}
	}

	return s
}

func (s *Store) registerShifters(entries []Entry, kind model.ShifterKind) {
	for _, e := range entries {
		word := strings.ToLower(strings.TrimSpace(e.Text))
		if word == "" {
			continue
		}
		s.shifters[word] = model.ValenceShifter{Word: word, Kind: kind, Weight: e.Value}
	}
}

var defaultStore = sync.OnceValue(func() *Store {
	return New(context.Background(), DefaultTables())
})

// Default returns the shared Store built from the built-in tables
func Default() *Store {
	return defaultStore()
}

// Lookup finds risk phrases in a sentence. Phrases are tried longest first and
// every occurrence of a matched phrase is blanked out of the working copy, so a
// span contributes to at most one match. Matching is substring containment.
func (s *Store) Lookup(sentence string) []model.RiskIndicatorMatch {
	work := strings.ToLower(sentence)

	var matches []model.RiskIndicatorMatch
	for _, term := range s.terms {
		if !strings.Contains(work, term.Phrase) {
			continue
		}
		matches = append(matches, model.RiskIndicatorMatch{
			Term:     term.Phrase,
			Score:    term.Score,
			Category: term.Category,
		})
		work = strings.ReplaceAll(work, term.Phrase, " ")
	}
	return matches
}

// Shifter returns the valence shifter registered for a lowercase token
func (s *Store) Shifter(word string) (model.ValenceShifter, bool) {
	sh, ok := s.shifters[word]
	return sh, ok
}

// IsUncertain reports whether a lowercase token is an uncertainty marker
func (s *Store) IsUncertain(word string) bool {
	_, ok := s.uncertainty[word]
	return ok
}

// Term returns the registered term for a phrase
func (s *Store) Term(phrase string) (model.RiskTerm, bool) {
	t, ok := s.byPhrase[strings.ToLower(phrase)]
	return t, ok
}

// Terms returns the risk terms of a category in matching order, or all terms
// when category is empty
func (s *Store) Terms(category model.Category) []model.RiskTerm {
	var out []model.RiskTerm
	for _, t := range s.terms {
		if category == "" || t.Category == category {
			out = append(out, t)
		}
	}
	return out
}

// Shifters returns all registered shifters sorted by kind then word
func (s *Store) Shifters() []model.ValenceShifter {
	out := make([]model.ValenceShifter, 0, len(s.shifters))
	for _, sh := range s.shifters {
		out = append(out, sh)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Word < out[j].Word
	})
	return out
}

// UncertaintyMarkers returns the uncertainty markers sorted alphabetically
func (s *Store) UncertaintyMarkers() []string {
	out := make([]string, 0, len(s.uncertainty))
	for w := range s.uncertainty {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// Size returns the number of risk terms
func (s *Store) Size() int {
	return len(s.terms)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
