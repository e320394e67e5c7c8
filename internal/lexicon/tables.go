package lexicon

import "github.com/ppiankov/distress/internal/model"

// Entry is a phrase or word with its associated value
type Entry struct {
	Text  string
	Value float64
}

// Tables is the raw, ordered lexicon material a Store is built from
type Tables struct {
	Terms        map[model.Category][]Entry
	Amplifiers   []Entry
	DeAmplifiers []Entry
	Negators     []Entry
	Adversatives []Entry
	Uncertainty  []string
}

// DefaultTables returns a fresh copy of the built-in distress lexicon
func DefaultTables() Tables {
	return Tables{
		Terms: map[model.Category][]Entry{
			model.CategoryCritical:   clone(criticalTerms),
			model.CategoryHigh:       clone(highRiskTerms),
			model.CategoryModerate:   clone(moderateRiskTerms),
			model.CategoryHeadwinds:  clone(headwindsTerms),
			model.CategoryManagement: clone(managementTerms),
		},
		Amplifiers:   weighted(amplifierWords, 1.0),
		DeAmplifiers: weighted(deAmplifierWords, 0.5),
		Negators:     weighted(negatorWords, -1.0),
		Adversatives: clone(adversatives),
		Uncertainty:  append([]string(nil), uncertaintyMarkers...),
	}
}

func clone(entries []Entry) []Entry {
	return append([]Entry(nil), entries...)
}

func weighted(words []string, weight float64) []Entry {
	entries := make([]Entry, len(words))
	for i, w := range words {
		entries[i] = Entry{Text: w, Value: weight}
	}
	return entries
}

var criticalTerms = []Entry{
	{"going concern", -1.0},
	{"continue as a going concern", -1.0},
	{"chapter 11", -1.0},
	{"bankruptcy", -1.0},
	{"cease operations", -1.0},
	{"substantial doubt", -1.0},
	{"covenant violation", -1.0},
	{"covenant violations", -1.0},
	{"insufficient liquidity", -1.0},
	{"sustain operations", -1.0},
	{"liquidation", -1.0},
	{"wind down", -1.0},
	{"unable to continue", -1.0},
	{"substantial uncertainty exists", -1.0},
	{"total losses of their investment", -1.0},
	{"wind down of", -1.0},
	{"completed the wind down", -1.0},
}

var highRiskTerms = []Entry{
	{"restructuring", -0.5},
	{"recapitalization", -0.45},
	{"working with our advisers", -0.5},
	{"financial advisers", -0.5},
	{"strategic alternatives", -0.45},
	{"potential strategic", -0.45},
	{"financial alternatives", -0.45},
	{"distressed", -0.5},
	{"covenant default", -0.5},
	{"amendment and closing fees", -0.4},
	{"refinancing", -0.45},
	{"debt restructuring", -0.5},
	{"impairment", -0.5},
	{"writedown", -0.5},
	{"writeoff", -0.5},
	{"goodwill impairment", -0.5},
	{"asset sales", -0.45},
	{"liquidity uncertainty", -0.5},
	{"goodwill impairment charges", -0.5},
	{"intangible asset impairment", -0.5},
	{"impairment charges", -0.5},
	{"strategic review", -0.45},
	{"sourcing reorganization", -0.5},
	{"discontinued operations", -1.0},
}

var moderateRiskTerms = []Entry{
	{"turnaround strategy", -0.3},
	{"turnaround plan", -0.3},
	{"cost-cutting initiatives", -0.25},
	{"cost reduction efforts", -0.25},
	{"store closures", -0.35},
	{"store closure", -0.35},
	{"underperforming", -0.3},
	{"streamline our workforce", -0.35},
	{"workforce reduction", -0.35},
	{"operational improvements", -0.2},
	{"challenging environment", -0.25},
	{"difficult conditions", -0.25},
	{"cash used in operating activities", -0.35},
	{"negative cash flows", -0.35},
	{"losses from operations", -0.35},
	{"declining sales", -0.25},
	{"comparable store sales", -0.2},
	{"inventory reduction", -0.2},
	{"margin pressure", -0.25},
	{"comparable sales decreased", -0.25},
	{"comparable sales decline", -0.25},
	{"net sales decreased", -0.25},
	{"operating loss", -0.35},
	{"net loss", -0.35},
	{"loss from continuing operations", -0.35},
	{"lower than expected sales", -0.25},
	{"lower than expected margins", -0.25},
	{"excess inventory", -0.2},
	{"increased markdowns", -0.25},
	{"markdown requirements", -0.25},
}

var headwindsTerms = []Entry{
	{"intense competition", -0.35},
	{"competitive environment", -0.35},
	{"highly competitive", -0.35},
	{"challenging retail landscape", -0.35},
	{"changing retail landscape", -0.35},
	{"consumer spending habits", -0.25},
	{"preference to purchase digitally", -0.25},
	{"pressure on retail store sales", -0.35},
	{"persistent highly promotional", -0.35},
	{"promotional retail environment", -0.35},
	{"promotional environment", -0.35},
	{"pressure on gross margins", -0.35},
	{"margin compression", -0.35},
	{"pricing pressure", -0.35},
	{"promotional selling", -0.25},
	{"promotional activities", -0.25},
	{"market headwinds", -0.35},
	{"economic headwinds", -0.35},
	{"macroeconomic pressures", -0.35},
	{"industry headwinds", -0.35},
	{"secular trends", -0.25},
	{"structural changes", -0.25},
	{"fundamental changes", -0.25},
	{"digital transformation pressure", -0.25},
	{"brick-and-mortar pressure", -0.35},
	{"e-commerce disruption", -0.25},
	{"omnichannel challenges", -0.25},
	{"consumer behavior shifts", -0.25},
	{"market disruption", -0.35},
	{"supply chain disruption", -0.35},
	{"supply chain pressures", -0.35},
	{"supply chain challenges", -0.35},
	{"inflationary pressures", -0.35},
	{"cost inflation", -0.35},
	{"labor cost increases", -0.35},
	{"material cost increases", -0.35},
	{"transportation cost increases", -0.35},
	{"energy cost increases", -0.35},
	{"commodity price increases", -0.35},
}

// Two entries carry mildly positive scores; New clamps them to 0.
var managementTerms = []Entry{
	{"interim ceo", -0.4},
	{"interim chief executive", -0.4},
	{"management changes", -0.5},
	{"new management team", 0.1},
	{"added new members to the management team", 0.05},
	{"management transition", -0.25},
	{"leadership change", -0.2},
	{"chief financial officer", 0.0},
	{"interim cfo", -0.35},
}

var amplifierWords = []string{
	"highly", "huge", "hugely", "massive", "massively",
	"more", "most", "much", "majorly", "vast",
	"very", "decidedly", "definite", "immense",
	"immensely", "incalculable", "vastly", "uber",
	"particular", "particularly", "certain", "certainly",
	"colossal", "considerably", "deep", "deeply",
	"definitely", "enormous", "enormously", "especially",
	"extreme", "extremely", "greatly", "heavily",
	"heavy", "high", "serious", "seriously",
	"severe", "severely", "significant", "significantly",
	"sure", "surely", "totally", "true", "truly",
	"substantial", "substantially", "persistent",
	"persistently", "intense", "intensely",
	"continued", "continuing",
}

var deAmplifierWords = []string{
	"least", "little", "incredibly", "sparsely",
	"fairly", "almost", "barely", "hardly",
	"only", "partly", "quite", "rarely",
	"seldom", "slightly", "somewhat", "few",
	"relatively", "moderately", "partially",
}

var negatorWords = []string{
	"neither", "never", "none", "cant", "wont",
	"not", "dont", "no", "nothing", "nobody",
	"nowhere", "without",
}

// "partially offset" is registered but can never match a single token.
var adversatives = []Entry{
	{"however", 0.5},
	{"whereas", 0.5},
	{"although", 0.5},
	{"but", 0.5},
	{"nevertheless", 0.5},
	{"nonetheless", 0.8},
	{"despite", 0.5},
	{"though", 0.5},
	{"yet", 0.5},
	{"while", 0.5},
	{"offset", 0.5},
	{"partially offset", 0.5},
}

var uncertaintyMarkers = []string{
	"may", "might", "could", "possibly", "perhaps", "potentially", "uncertain",
	"uncertainty", "appears", "seems", "likely", "unlikely", "probably", "believe",
	"expect", "anticipate", "estimate", "approximate", "roughly", "no assurance",
	"no assurances", "substantial uncertainty", "not reasonably estimable",
	"remains uncertain", "continue to assess", "extent and durations",
}
