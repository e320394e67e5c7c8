package lexicon

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ppiankov/distress/internal/model"
	"gopkg.in/yaml.v3"
)

// Overrides extends or rescores the built-in tables
type Overrides struct {
	Critical     map[string]float64 `yaml:"critical"`
	High         map[string]float64 `yaml:"high"`
	Moderate     map[string]float64 `yaml:"moderate"`
	Headwinds    map[string]float64 `yaml:"headwinds"`
	Management   map[string]float64 `yaml:"management_change"`
	Amplifiers   map[string]float64 `yaml:"amplifiers"`
	DeAmplifiers map[string]float64 `yaml:"de_amplifiers"`
	Negators     map[string]float64 `yaml:"negators"`
	Adversatives map[string]float64 `yaml:"adversatives"`
	Uncertainty  []string           `yaml:"uncertainty"`
}

// LoadOverrides reads lexicon overrides from a YAML file
func LoadOverrides(path string) (*Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read overrides: %w", err)
	}

	var o Overrides
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("parse overrides: %w", err)
	}
	return &o, nil
}

// Apply merges the overrides into a copy of t. Existing entries are rescored in
// place, new entries are appended in alphabetical order.
func (o *Overrides) Apply(t Tables) Tables {
	out := Tables{
		Terms:        make(map[model.Category][]Entry, len(t.Terms)),
		Amplifiers:   mergeEntries(t.Amplifiers, o.Amplifiers),
		DeAmplifiers: mergeEntries(t.DeAmplifiers, o.DeAmplifiers),
		Negators:     mergeEntries(t.Negators, o.Negators),
		Adversatives: mergeEntries(t.Adversatives, o.Adversatives),
		Uncertainty:  append([]string(nil), t.Uncertainty...),
	}

	byCategory := map[model.Category]map[string]float64{
		model.CategoryCritical:   o.Critical,
		model.CategoryHigh:       o.High,
		model.CategoryModerate:   o.Moderate,
		model.CategoryHeadwinds:  o.Headwinds,
		model.CategoryManagement: o.Management,
	}
	for _, category := range model.Categories {
		out.Terms[category] = mergeEntries(t.Terms[category], byCategory[category])
	}

	seen := make(map[string]bool, len(out.Uncertainty))
	for _, w := range out.Uncertainty {
		seen[w] = true
	}
	for _, w := range o.Uncertainty {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" && !seen[w] {
			seen[w] = true
			out.Uncertainty = append(out.Uncertainty, w)
		}
	}

	return out
}

func mergeEntries(base []Entry, extra map[string]float64) []Entry {
	out := clone(base)
	if len(extra) == 0 {
		return out
	}

	index := make(map[string]int, len(out))
	for i, e := range out {
		index[strings.ToLower(e.Text)] = i
	}

	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		text := strings.ToLower(strings.TrimSpace(k))
		if text == "" {
			continue
		}
		if i, ok := index[text]; ok {
			out[i].Value = extra[k]
			continue
		}
		index[text] = len(out)
		out = append(out, Entry{Text: text, Value: extra[k]})
	}
	return out
}
