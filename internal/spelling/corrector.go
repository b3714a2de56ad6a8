package spelling

import (
	"context"

	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/internal/spelling/dictionary"
)

// Tier records how a correction was resolved.
type Tier int

const (
	// TierNone means no candidate was found and the input came back as is.
	TierNone Tier = iota
	TierKnown
	TierEdit1
	TierEdit2
)

func (t Tier) String() string {
	switch t {
	case TierKnown:
		return "known"
	case TierEdit1:
		return "edit1"
	case TierEdit2:
		return "edit2"
	default:
		return "none"
	}
}

// MarshalText encodes the tier by name.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Options tunes a Corrector.
type Options struct {
	// RivalKnownWords lets a known token compete with the dictionary words
	// one edit away from it. With it off, known tokens are never changed.
	RivalKnownWords bool
	// MaxTier2Candidates bounds how many two-edit strings are examined for
	// one token. Zero means no bound.
	MaxTier2Candidates int
}

// Correction is the detailed outcome of a single lookup.
type Correction struct {
	Input     string `json:"input"`
	Output    string `json:"output"`
	Tier      Tier   `json:"tier"`
	Frequency int    `json:"frequency"`
}

// Corrector picks the most frequent dictionary word within two edits of a
// token. It holds no mutable state and is safe for concurrent use.
type Corrector struct {
	dict *dictionary.Dictionary
	opts Options
}

func NewCorrector(dict *dictionary.Dictionary, opts Options) *Corrector {
	return &Corrector{dict: dict, opts: opts}
}

// Known reports whether token is a dictionary word.
func (c *Corrector) Known(token string) bool {
	return c.dict.Contains(token)
}

// Correct returns the best correction for token, or token itself when
// nothing within two edits is known.
func (c *Corrector) Correct(token string) string {
	return c.CorrectDetailed(token).Output
}

// CorrectDetailed is Correct with the tier that produced the answer. Words
// one edit away always beat words two edits away; within a tier the
// highest frequency wins and ties go to the alphabetically first word.
// Two-edit candidates are only generated when no one-edit candidate exists.
// With RivalKnownWords a known token is only replaced by a one-edit
// neighbour of strictly higher frequency.
func (c *Corrector) CorrectDetailed(token string) Correction {
	return c.CorrectContext(context.Background(), token)
}

// ctxCheckEvery is how many two-edit strings are examined between checks
// of the context.
const ctxCheckEvery = 256

// CorrectContext is CorrectDetailed that abandons the two-edit search once
// ctx is done, answering with the best hit found so far.
func (c *Corrector) CorrectContext(ctx context.Context, token string) Correction {
	if token == "" {
		return c.result(token, token, TierNone)
	}
	known := c.dict.Contains(token)
	if known && !c.opts.RivalKnownWords {
		return c.result(token, token, TierKnown)
	}

	var best candidate
	edits1(token, func(e string) bool {
		if e == token {
			return true
		}
		if f := c.dict.Frequency(e); f > 0 {
			best.consider(e, f)
		}
		return true
	})
	if known {
		if best.word != "" && best.freq > c.dict.Frequency(token) {
			return c.result(token, best.word, TierEdit1)
		}
		return c.result(token, token, TierKnown)
	}
	if best.word != "" {
		return c.result(token, best.word, TierEdit1)
	}

	examined := 0
	edits2(token, func(e string) bool {
		if f := c.dict.Frequency(e); f > 0 {
			best.consider(e, f)
		}
		examined++
		if examined%ctxCheckEvery == 0 && ctx.Err() != nil {
			return false
		}
		return c.opts.MaxTier2Candidates <= 0 || examined < c.opts.MaxTier2Candidates
	})
	if best.word != "" {
		return c.result(token, best.word, TierEdit2)
	}
	return c.result(token, token, TierNone)
}

func (c *Corrector) result(in, out string, tier Tier) Correction {
	return Correction{
		Input:     in,
		Output:    out,
		Tier:      tier,
		Frequency: c.dict.Frequency(out),
	}
}

type candidate struct {
	word string
	freq int
}

func (b *candidate) consider(word string, freq int) {
	if b.word == "" || freq > b.freq || (freq == b.freq && word < b.word) {
		b.word = word
		b.freq = freq
	}
}
