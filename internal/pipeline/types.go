package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Record is one raw post.
type Record struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Result holds every feature derived from a Record. N-grams, the rejoined
// strings and the stopword-filtered list are built from the stemmed tokens.
type Result struct {
	ID              string    `json:"id"`
	Text            string    `json:"text"`
	ContentHash     string    `json:"content_hash"`
	Cleaned         string    `json:"cleaned"`
	Tokens          []string  `json:"tokens"`
	Emojis          []string  `json:"emojis"`
	Hashtags        []string  `json:"hashtags"`
	POS             []string  `json:"pos"`
	Stemmed         []string  `json:"stemmed"`
	Bigrams         []string  `json:"bigrams"`
	Trigrams        []string  `json:"trigrams"`
	BigramsPOS      []string  `json:"bigrams_pos"`
	TrigramsPOS     []string  `json:"trigrams_pos"`
	Rejoined        string    `json:"rejoined"`
	Stopped         []string  `json:"stopped"`
	RejoinedStopped string    `json:"rejoined_stopped"`
	ProcessedAt     time.Time `json:"processed_at"`
	Cached          bool      `json:"cached,omitempty"`
}

// ContentHash is the hex SHA-256 of a record's raw text. A checkpointed
// result is reused only while the hash still matches.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
