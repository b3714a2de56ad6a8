// Package tagger assigns Penn Treebank part-of-speech tags to lowercase
// tokens. It is a small rule-based tagger: a closed-class lexicon, suffix
// heuristics for open-class words, then one pass of context rules.
package tagger

import (
	"strings"
	"unicode"
)

// Penn Treebank tags produced by the tagger.
const (
	CC   = "CC"
	CD   = "CD"
	DT   = "DT"
	IN   = "IN"
	JJ   = "JJ"
	MD   = "MD"
	NN   = "NN"
	NNS  = "NNS"
	PRP  = "PRP"
	PRPS = "PRP$"
	RB   = "RB"
	TO   = "TO"
	UH   = "UH"
	VB   = "VB"
	VBD  = "VBD"
	VBG  = "VBG"
	VBN  = "VBN"
	VBP  = "VBP"
	VBZ  = "VBZ"
	WDT  = "WDT"
	WP   = "WP"
	WRB  = "WRB"
)

// Tagger is safe for concurrent use once constructed.
type Tagger struct {
	lexicon map[string]string
}

func New() *Tagger {
	t := &Tagger{lexicon: make(map[string]string, 256)}
	t.loadLexicon()
	return t
}

// Tag returns one tag per token, aligned by index.
func (t *Tagger) Tag(tokens []string) []string {
	tags := make([]string, len(tokens))
	for i, tok := range tokens {
		tags[i] = t.baseline(tok)
	}

	for i := 1; i < len(tags); i++ {
		prev, cur := tags[i-1], tags[i]
		switch {
		// "the run", "a fast attack"
		case (prev == DT || prev == PRPS || prev == JJ) && (cur == VB || cur == VBP):
			tags[i] = NN
		// "can run", "to play"
		case (prev == MD || prev == TO) && isNominal(cur):
			tags[i] = VB
		// "they play", "we win"
		case prev == PRP && cur == NN && !hasNounSuffix(tokens[i]):
			tags[i] = VBP
		}
	}
	return tags
}

func (t *Tagger) baseline(tok string) string {
	if tag, ok := t.lexicon[tok]; ok {
		return tag
	}
	if isNumber(tok) {
		return CD
	}
	return inferTag(tok)
}

func inferTag(tok string) string {
	switch {
	case len(tok) > 3 && strings.HasSuffix(tok, "ly"):
		return RB
	case len(tok) > 4 && strings.HasSuffix(tok, "ing"):
		return VBG
	case len(tok) > 3 && strings.HasSuffix(tok, "ed"):
		return VBD
	case hasNounSuffix(tok):
		return NN
	case strings.HasSuffix(tok, "ful") || strings.HasSuffix(tok, "less") ||
		strings.HasSuffix(tok, "ous") || strings.HasSuffix(tok, "ive") ||
		strings.HasSuffix(tok, "able") || strings.HasSuffix(tok, "ible") ||
		strings.HasSuffix(tok, "al") || strings.HasSuffix(tok, "ic"):
		return JJ
	case len(tok) > 3 && strings.HasSuffix(tok, "s") && !strings.HasSuffix(tok, "ss") &&
		!strings.HasSuffix(tok, "us"):
		return NNS
	}
	return NN
}

func hasNounSuffix(tok string) bool {
	for _, suf := range []string{"ness", "tion", "sion", "ment", "ity", "ship", "ism"} {
		if strings.HasSuffix(tok, suf) {
			return true
		}
	}
	return len(tok) > 4 && (strings.HasSuffix(tok, "er") || strings.HasSuffix(tok, "or"))
}

func isNominal(tag string) bool {
	return tag == NN || tag == NNS || tag == JJ
}

func isNumber(tok string) bool {
	if tok == "" {
		return false
	}
	digits := 0
	for _, r := range tok {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == '.' || r == ',':
		default:
			return false
		}
	}
	return digits > 0
}

func (t *Tagger) add(tag string, words ...string) {
	for _, w := range words {
		t.lexicon[w] = tag
	}
}

func (t *Tagger) loadLexicon() {
	t.add(DT, "the", "a", "an", "this", "these", "those", "some", "any", "no",
		"every", "each", "all", "both", "another", "either", "neither")
	t.add(PRPS, "my", "your", "his", "her", "its", "our", "their")
	t.add(PRP, "i", "you", "he", "she", "it", "we", "they", "me", "him", "us",
		"them", "myself", "yourself", "himself", "herself", "itself",
		"ourselves", "themselves", "mine", "yours", "hers", "ours", "theirs",
		"u", "ya")
	t.add(IN, "in", "on", "at", "for", "with", "by", "from", "of", "about",
		"into", "through", "during", "before", "after", "above", "below",
		"between", "under", "over", "against", "among", "around", "behind",
		"beside", "beyond", "near", "toward", "towards", "upon", "within",
		"without", "across", "along", "inside", "outside", "throughout",
		"because", "although", "while", "if", "unless", "until", "since",
		"whether", "than", "like", "that")
	t.add(TO, "to")
	t.add(CC, "and", "or", "but", "nor", "yet", "so", "plus")
	t.add(MD, "can", "could", "will", "would", "shall", "should", "may",
		"might", "must", "gonna", "wanna", "gotta")
	t.add(VBZ, "is", "has", "does", "says", "gets", "goes")
	t.add(VBP, "are", "am", "have", "do", "dont")
	t.add(VBD, "was", "were", "had", "did", "said", "got", "went", "made",
		"came", "took", "saw", "knew", "thought", "told", "felt", "left")
	t.add(VBN, "been", "done", "gone", "seen", "known", "taken", "given")
	t.add(VBG, "being", "having", "doing", "going")
	t.add(VB, "be", "get", "go", "make", "know", "take", "see", "come",
		"think", "look", "want", "give", "use", "find", "tell", "ask",
		"work", "feel", "try", "leave", "call", "need", "love", "hate",
		"let", "keep", "help", "watch", "wait", "play", "run", "win")
	t.add(WP, "who", "whom", "what", "whose")
	t.add(WDT, "which", "whatever")
	t.add(WRB, "when", "where", "why", "how")
	t.add(RB, "not", "very", "too", "also", "just", "now", "then", "here",
		"there", "still", "even", "never", "always", "already", "again",
		"soon", "really", "only", "well", "back", "ever", "once", "maybe",
		"today", "tonight", "tomorrow", "yesterday")
	t.add(JJ, "good", "great", "new", "old", "big", "small", "bad", "best",
		"better", "happy", "sad", "nice", "last", "first", "long", "little",
		"other", "same", "high", "right", "sure", "free", "real", "hot",
		"cool", "awesome", "amazing", "cute", "funny", "many", "much", "few",
		"more", "most")
	t.add(UH, "lol", "omg", "haha", "hahaha", "lmao", "oh", "wow", "yeah",
		"yes", "hey", "hi", "hello", "ok", "okay", "ugh", "yay", "oops",
		"please", "thanks")
}
