package score

import (
	"github.com/ppiankov/distress/internal/extract"
	"github.com/ppiankov/distress/internal/lexicon"
	"github.com/ppiankov/distress/internal/model"
)

// Composition constants
const (
	fusionConfidenceThreshold = 0.15
	baseFusionWeight          = 0.3
	riskFusionWeight          = 0.7
	criticalFloor             = -0.2
	amplifierFactor           = 0.3
	deAmplifierFactor         = 0.2
	adversativeFactor         = 0.4
	uncertaintyFactor         = 0.2
	minDampening              = 0.1
	minUncertaintyDampening   = 0.3
)

// Composer fuses base sentiment with risk and applies valence shifters
type Composer struct {
	lexicon *lexicon.Store
}

// NewComposer creates a new valence composer
func NewComposer(store *lexicon.Store) *Composer {
	return &Composer{lexicon: store}
}

// Detect tokenizes a sentence, drops punctuation tokens and returns the shifters
// found together with the lowercased words
func (c *Composer) Detect(sentence string) ([]model.ValenceShifter, []string) {
	words := extract.Words(sentence)

	var shifters []model.ValenceShifter
	for _, w := range words {
		if sh, ok := c.lexicon.Shifter(w); ok {
			shifters = append(shifters, sh)
		}
	}
	return shifters, words
}

// ComposeSentence detects shifters in the sentence and composes the final score
func (c *Composer) ComposeSentence(base float64, risk model.RiskResult, sentence string) float64 {
	shifters, words := c.Detect(sentence)
	return c.Compose(base, risk, shifters, words)
}

// Compose applies fusion, the critical floor, negation, amplification,
// de-amplification, adversative weakening and uncertainty dampening in that
// order, then clamps to [-1, 1]
func (c *Composer) Compose(base float64, risk model.RiskResult, shifters []model.ValenceShifter, words []string) float64 {
	// 1. Fusion
	v := base
	if risk.Confidence > fusionConfidenceThreshold {
		v = baseFusionWeight*base + riskFusionWeight*risk.Score
	}

	// 2. Critical floor
	if risk.HasCategory(model.CategoryCritical) {
		v = min(v, criticalFloor)
	}

	var negators int
	var amp, deAmp, adv float64
	for _, sh := range shifters {
		switch sh.Kind {
		case model.ShifterNegator:
			negators++
		case model.ShifterAmplifier:
			amp += sh.Weight
		case model.ShifterDeAmplifier:
			deAmp += sh.Weight
		case model.ShifterAdversative:
			adv += sh.Weight
		}
	}

	// 3. Negation parity
	if negators%2 == 1 {
		v = -v
	}

	// 4. Amplification
	if amp > 0 {
		v *= 1 + amplifierFactor*amp
	}

	// 5. De-amplification
	if deAmp > 0 {
		v *= max(minDampening, 1-deAmplifierFactor*deAmp)
	}

	// 6. Adversative weakening
	if adv > 0 {
		v *= max(minDampening, 1-adversativeFactor*adv)
	}

	// 7. Uncertainty dampening
	var uncertain int
	for _, w := range words {
		if c.lexicon.IsUncertain(w) {
			uncertain++
		}
	}
	if uncertain > 0 {
		v *= max(minUncertaintyDampening, 1-uncertaintyFactor*float64(uncertain))
	}

	// 8. Clamp
	return Clamp(v, -1, 1)
}
