// Package dictionary holds the word-frequency table the spelling corrector
// searches. A Dictionary is built once from a plain-text corpus, persisted
// to a cache Store, and shared read-only by every worker afterwards.
package dictionary

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// Dictionary maps lowercase ASCII words to their corpus frequency. It is
// never modified after construction and is safe for concurrent readers.
type Dictionary struct {
	counts map[string]int
	total  int64
}

// New returns a Dictionary holding a copy of counts. Entries whose key is
// not a lowercase ASCII word or whose count is not positive are dropped.
func New(counts map[string]int) *Dictionary {
	d := &Dictionary{counts: make(map[string]int, len(counts))}
	for word, n := range counts {
		if n <= 0 || !IsWord(word) {
			continue
		}
		d.counts[word] = n
		d.total += int64(n)
	}
	return d
}

// Build scans r, lowercases ASCII letters and counts every maximal run of
// a-z. All other bytes separate words.
func Build(r io.Reader) (*Dictionary, error) {
	br := bufio.NewReaderSize(r, 64*1024)
	d := &Dictionary{counts: make(map[string]int)}
	word := make([]byte, 0, 32)
	flush := func() {
		if len(word) == 0 {
			return
		}
		d.counts[string(word)]++
		d.total++
		word = word[:0]
	}
	for {
		b, err := br.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading corpus: %w", err)
		}
		if b >= 'A' && b <= 'Z' {
			b += 'a' - 'A'
		}
		if b >= 'a' && b <= 'z' {
			word = append(word, b)
			continue
		}
		flush()
	}
	flush()
	return d, nil
}

// Read parses the cache format written by WriteTo: one "word<TAB>count"
// pair per line. Any whitespace between the two fields is accepted.
func Read(r io.Reader) (*Dictionary, error) {
	d := &Dictionary{counts: make(map[string]int)}
	s := bufio.NewScanner(r)
	line := 0
	for s.Scan() {
		line++
		text := strings.TrimSpace(s.Text())
		if text == "" {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 2 {
			return nil, fmt.Errorf("line %d: expected word and count, got %q", line, text)
		}
		word := fields[0]
		if !IsWord(word) {
			return nil, fmt.Errorf("line %d: invalid word %q", line, word)
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("line %d: invalid count %q", line, fields[1])
		}
		if _, dup := d.counts[word]; dup {
			return nil, fmt.Errorf("line %d: duplicate word %q", line, word)
		}
		d.counts[word] = n
		d.total += int64(n)
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("reading dictionary: %w", err)
	}
	return d, nil
}

// WriteTo writes the dictionary sorted by word, so equal dictionaries
// always serialize to identical bytes.
func (d *Dictionary) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var written int64
	for _, word := range d.Words() {
		n, err := fmt.Fprintf(bw, "%s\t%d\n", word, d.counts[word])
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	return written, bw.Flush()
}

// Frequency returns the count for word, or 0 when it is unknown.
func (d *Dictionary) Frequency(word string) int {
	return d.counts[word]
}

// Contains reports whether word is a known word.
func (d *Dictionary) Contains(word string) bool {
	_, ok := d.counts[word]
	return ok
}

// Len returns the number of distinct words.
func (d *Dictionary) Len() int {
	return len(d.counts)
}

// Total returns the sum of all counts.
func (d *Dictionary) Total() int64 {
	return d.total
}

// Words returns every known word in ascending order.
func (d *Dictionary) Words() []string {
	words := make([]string, 0, len(d.counts))
	for w := range d.counts {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

// Counts returns a copy of the underlying table.
func (d *Dictionary) Counts() map[string]int {
	out := make(map[string]int, len(d.counts))
	for w, n := range d.counts {
		out[w] = n
	}
	return out
}

// IsWord reports whether s is non-empty and made only of a-z.
func IsWord(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'a' || s[i] > 'z' {
			return false
		}
	}
	return true
}
