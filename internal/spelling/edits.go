package spelling

import "unicode/utf8"

const alphabet = "abcdefghijklmnopqrstuvwxyz"

// edits1 calls visit with every string one edit away from word: a deleted
// rune, two adjacent runes swapped, a rune replaced by a letter, or a letter
// inserted. Duplicates are not filtered. Generation stops as soon as visit
// returns false, and edits1 then reports false too.
func edits1(word string, visit func(string) bool) bool {
	for i := 0; i <= len(word); {
		left, right := word[:i], word[i:]
		_, size := utf8.DecodeRuneInString(right)

		if size > 0 {
			if !visit(left + right[size:]) {
				return false
			}
			if _, size2 := utf8.DecodeRuneInString(right[size:]); size2 > 0 {
				swapped := left + right[size:size+size2] + right[:size] + right[size+size2:]
				if !visit(swapped) {
					return false
				}
			}
			for j := 0; j < len(alphabet); j++ {
				if !visit(left + alphabet[j:j+1] + right[size:]) {
					return false
				}
			}
		}
		for j := 0; j < len(alphabet); j++ {
			if !visit(left + alphabet[j:j+1] + right) {
				return false
			}
		}

		if size == 0 {
			break
		}
		i += size
	}
	return true
}

// edits2 calls visit with every string two edits away from word, by
// running edits1 over each result of edits1.
func edits2(word string, visit func(string) bool) bool {
	return edits1(word, func(e1 string) bool {
		return edits1(e1, visit)
	})
}
