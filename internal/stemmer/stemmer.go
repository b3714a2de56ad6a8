// Package stemmer reduces tokens to their Porter2 (English Snowball) stem.
package stemmer

import snowballeng "github.com/kljensen/snowball/english"

// Stemmer is stateless and safe for concurrent use.
type Stemmer struct{}

func New() Stemmer {
	return Stemmer{}
}

// Stem returns the stem of a lowercase token. Stopwords are stemmed like any
// other word so the output stays aligned with the tagged tokens.
func (Stemmer) Stem(token string) string {
	if token == "" {
		return token
	}
	return snowballeng.Stem(token, true)
}

// StemAll stems every token, preserving order.
func (s Stemmer) StemAll(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = s.Stem(tok)
	}
	return out
}
