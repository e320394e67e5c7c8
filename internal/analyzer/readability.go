package analyzer

import (
	"strings"

	"github.com/ppiankov/distress/internal/extract"
	"github.com/ppiankov/distress/internal/model"
)

const vowels = "aeiouy"

// Syllables approximates a word's syllable count: vowel letters, minus one for
// a trailing "e", at least 1
func Syllables(word string) int {
	word = strings.ToLower(word)
	count := 0
	for _, r := range word {
		if strings.ContainsRune(vowels, r) {
			count++
		}
	}
	if strings.HasSuffix(word, "e") {
		count--
	}
	return max(1, count)
}

// Readability computes Gunning Fog and Flesch-Kincaid over alphabetic words.
// All fields are zero when the text has no sentences or no words.
func Readability(text string) model.Readability {
	sentences := extract.SegmentSentences(text)
	words := extract.AlphaWords(text)
	if len(sentences) == 0 || len(words) == 0 {
		return model.Readability{}
	}

	var syllables, complexWords int
	for _, w := range words {
		s := Syllables(w)
		syllables += s
		if s >= 3 {
			complexWords++
		}
	}

	avgSentenceLength := float64(len(words)) / float64(len(sentences))
	avgSyllables := float64(syllables) / float64(len(words))
	complexRatio := float64(complexWords) / float64(len(words))

	return model.Readability{
		FogIndex:            0.4 * (avgSentenceLength + 100*complexRatio),
		FleschKincaid:       0.39*avgSentenceLength + 11.8*avgSyllables - 15.59,
		AvgSentenceLength:   avgSentenceLength,
		ComplexWordsRatio:   complexRatio,
		AvgSyllablesPerWord: avgSyllables,
		TotalSentences:      len(sentences),
		TotalWords:          len(words),
	}
}
