package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	disallowedRe = regexp.MustCompile(`[^\p{L}\p{N}_\s.!?,;:\-$%]`)
	tokenRe      = regexp.MustCompile(`\p{N}+(?:[.,]\p{N}+)+|[\p{L}\p{N}_]+(?:['\-][\p{L}\p{N}_]+)*|\S`)
)

// punctuation mirrors the ASCII punctuation set
const punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// Preprocess collapses whitespace runs and replaces characters outside the
// allowed set (letters, digits, underscore, whitespace, sentence punctuation,
// currency and percent signs) with a space
func Preprocess(text string) string {
	text = strings.ToValidUTF8(text, " ")
	text = whitespaceRe.ReplaceAllString(strings.TrimSpace(text), " ")
	return disallowedRe.ReplaceAllString(text, " ")
}

// abbreviations that end with a period without ending a sentence
var abbreviations = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "dr": true, "prof": true, "sr": true, "jr": true,
	"inc": true, "corp": true, "co": true, "ltd": true, "bros": true,
	"no": true, "nos": true, "vs": true, "etc": true, "approx": true, "est": true,
	"fig": true, "dept": true, "st": true, "ave": true,
	"jan": true, "feb": true, "mar": true, "apr": true, "jun": true, "jul": true,
	"aug": true, "sep": true, "sept": true, "oct": true, "nov": true, "dec": true,
	"e.g": true, "i.e": true, "u.s": true, "u.k": true,
}

// SegmentSentences splits text into sentences on terminal punctuation followed
// by whitespace. Known abbreviations, single-letter initials and a following
// lowercase word suppress the break.
func SegmentSentences(text string) []string {
	var sentences []string
	start := 0

	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if r != '.' && r != '!' && r != '?' {
			i += size
			continue
		}

		// Absorb runs of terminators and closing quotes/brackets
		end := i + size
		for end < len(text) && strings.IndexByte(".!?\"')]", text[end]) >= 0 {
			end++
		}

		if end < len(text) && !isSpace(text[end]) {
			i = end
			continue
		}

		if r == '.' && !breaksAfterPeriod(text[start:i], text[end:]) {
			i = end
			continue
		}

		if s := strings.TrimSpace(text[start:end]); s != "" {
			sentences = append(sentences, s)
		}
		start = end
		i = end
	}

	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func breaksAfterPeriod(before, after string) bool {
	word := lastWord(before)
	if abbreviations[strings.ToLower(word)] {
		return false
	}
	// Single-letter initials such as "J." in "J. Smith"
	if utf8.RuneCountInString(word) == 1 && unicode.IsLetter([]rune(word)[0]) {
		return false
	}

	next := strings.TrimLeft(after, " \t\r\n")
	if next == "" {
		return true
	}
	first, _ := utf8.DecodeRuneInString(next)
	return !unicode.IsLower(first)
}

func lastWord(s string) string {
	s = strings.TrimRight(s, " ")
	idx := strings.LastIndexFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '(' || r == '"'
	})
	if idx < 0 {
		return s
	}
	_, size := utf8.DecodeRuneInString(s[idx:])
	return s[idx+size:]
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == '\v'
}

// TokenizeWords splits a sentence into word and punctuation tokens, preserving
// case. Hyphenated words and numbers with separators stay whole.
func TokenizeWords(sentence string) []string {
	return tokenRe.FindAllString(sentence, -1)
}

// IsPunctuation reports whether a token is a single punctuation character
func IsPunctuation(token string) bool {
	return len(token) == 1 && strings.Contains(punctuation, token)
}

// Words returns the lowercased tokens of a sentence with punctuation removed
func Words(sentence string) []string {
	tokens := TokenizeWords(strings.ToLower(sentence))
	words := tokens[:0]
	for _, tok := range tokens {
		if !IsPunctuation(tok) {
			words = append(words, tok)
		}
	}
	return words
}

// AlphaWords returns the lowercased tokens made only of letters
func AlphaWords(text string) []string {
	var words []string
	for _, tok := range TokenizeWords(strings.ToLower(text)) {
		if isAlpha(tok) {
			words = append(words, tok)
		}
	}
	return words
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
