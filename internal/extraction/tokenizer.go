package extraction

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type token struct {
	start, end int
	norm       string
}

// tokenize splits text into runs of letters and digits, recording byte
// offsets into the original string.
func tokenize(text string) []token {
	var tokens []token
	start := -1
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		word := unicode.IsLetter(r) || unicode.IsDigit(r)
		switch {
		case word && start < 0:
			start = i
		case !word && start >= 0:
			tokens = append(tokens, token{start: start, end: i, norm: strings.ToLower(text[start:i])})
			start = -1
		}
		i += size
	}
	if start >= 0 {
		tokens = append(tokens, token{start: start, end: len(text), norm: strings.ToLower(text[start:])})
	}
	return tokens
}
