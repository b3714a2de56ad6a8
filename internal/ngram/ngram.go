// Package ngram builds hyphen-joined n-grams from token sequences. The same
// functions serve word tokens and part-of-speech tags.
package ngram

import "strings"

// Separator joins the tokens of one n-gram.
const Separator = "-"

// Build returns every window of n contiguous tokens joined by Separator,
// advancing one token at a time. Input shorter than n, or n < 1, yields an
// empty slice.
func Build(tokens []string, n int) []string {
	if n < 1 || len(tokens) < n {
		return []string{}
	}
	grams := make([]string, 0, len(tokens)-n+1)
	for i := 0; i+n <= len(tokens); i++ {
		grams = append(grams, strings.Join(tokens[i:i+n], Separator))
	}
	return grams
}

func Bigrams(tokens []string) []string {
	return Build(tokens, 2)
}

func Trigrams(tokens []string) []string {
	return Build(tokens, 3)
}
