// Package spelling repairs the two kinds of noise typical of short social
// posts: letters stretched for emphasis ("sooooo") and ordinary typos. Both
// are resolved against a word-frequency dictionary.
package spelling

import "unicode"

// CollapseRepeats shortens runs of a repeated letter one character at a
// time until the token is a known word or has no adjacent duplicate left.
// Each step removes one letter of the last duplicated pair, so trailing
// runs are exhausted first: with "finally" known, "finallllyyyy" becomes
// "finally" rather than "finaly".
//
// A token that is already known comes back unchanged. The result is never
// longer than the input and applying CollapseRepeats twice gives the same
// result as applying it once.
func CollapseRepeats(token string, known func(string) bool) string {
	if known(token) {
		return token
	}
	runes := []rune(token)
	for limit := len(runes); limit > 0; limit-- {
		i := lastRepeat(runes)
		if i < 0 {
			break
		}
		runes = append(runes[:i], runes[i+1:]...)
		if candidate := string(runes); known(candidate) {
			return candidate
		}
	}
	return string(runes)
}

// lastRepeat returns the index of the first rune of the rightmost pair of
// equal adjacent letters, or -1.
func lastRepeat(runes []rune) int {
	for i := len(runes) - 2; i >= 0; i-- {
		if runes[i] == runes[i+1] && unicode.IsLetter(runes[i]) {
			return i
		}
	}
	return -1
}
