package textnorm

import "strings"

// stopWords is the English stopword list applied to the final token stream.
var stopWords = map[string]struct{}{
	"i": {}, "me": {}, "my": {}, "myself": {}, "we": {}, "our": {}, "ours": {},
	"ourselves": {}, "you": {}, "your": {}, "yours": {}, "yourself": {},
	"yourselves": {}, "he": {}, "him": {}, "his": {}, "himself": {}, "she": {},
	"her": {}, "hers": {}, "herself": {}, "it": {}, "its": {}, "itself": {},
	"they": {}, "them": {}, "their": {}, "theirs": {}, "themselves": {},
	"what": {}, "which": {}, "who": {}, "whom": {}, "this": {}, "that": {},
	"these": {}, "those": {}, "am": {}, "is": {}, "are": {}, "was": {},
	"were": {}, "be": {}, "been": {}, "being": {}, "have": {}, "has": {},
	"had": {}, "having": {}, "do": {}, "does": {}, "did": {}, "doing": {},
	"a": {}, "an": {}, "the": {}, "and": {}, "but": {}, "if": {}, "or": {},
	"because": {}, "as": {}, "until": {}, "while": {}, "of": {}, "at": {},
	"by": {}, "for": {}, "with": {}, "about": {}, "against": {}, "between": {},
	"into": {}, "through": {}, "during": {}, "before": {}, "after": {},
	"above": {}, "below": {}, "to": {}, "from": {}, "up": {}, "down": {},
	"in": {}, "out": {}, "on": {}, "off": {}, "over": {}, "under": {},
	"again": {}, "further": {}, "then": {}, "once": {}, "here": {}, "there": {},
	"when": {}, "where": {}, "why": {}, "how": {}, "all": {}, "any": {},
	"both": {}, "each": {}, "few": {}, "more": {}, "most": {}, "other": {},
	"some": {}, "such": {}, "no": {}, "nor": {}, "not": {}, "only": {},
	"own": {}, "same": {}, "so": {}, "than": {}, "too": {}, "very": {},
	"s": {}, "t": {}, "can": {}, "will": {}, "just": {}, "don": {},
	"should": {}, "now": {}, "d": {}, "ll": {}, "m": {}, "o": {}, "re": {},
	"ve": {}, "y": {}, "ain": {}, "aren": {}, "couldn": {}, "didn": {},
	"doesn": {}, "hadn": {}, "hasn": {}, "haven": {}, "isn": {}, "ma": {},
	"mightn": {}, "mustn": {}, "needn": {}, "shan": {}, "shouldn": {},
	"wasn": {}, "weren": {}, "won": {}, "wouldn": {},
}

// Tokenize splits text on runs of whitespace. Empty or all-blank input
// yields an empty, non-nil slice.
func Tokenize(text string) []string {
	tokens := strings.Fields(text)
	if tokens == nil {
		return []string{}
	}
	return tokens
}

// Rejoin joins tokens with single spaces.
func Rejoin(tokens []string) string {
	return strings.Join(tokens, " ")
}

// IsStopword reports whether token is on the English stopword list.
func IsStopword(token string) bool {
	_, ok := stopWords[token]
	return ok
}

// RemoveStopwords returns the tokens that are not stopwords, in order.
func RemoveStopwords(tokens []string) []string {
	kept := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if IsStopword(tok) {
			continue
		}
		kept = append(kept, tok)
	}
	return kept
}
