// Package textnorm strips social-media noise from raw post text and splits
// the result into whitespace tokens. Cleaning runs as a fixed sequence of
// stages; emoji entities and hashtags are pulled out as side features
// before they are removed from the text.
package textnorm

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	mentionRe = regexp.MustCompile(`@[a-zA-Z_0-9]{1,15}`)
	// The retweet marker is matched as a whole word so words such as
	// "start" or "heart" keep their "rt".
	retweetRe = regexp.MustCompile(`(?i)\brt\b ?:?`)
	emojiRe   = regexp.MustCompile(`&#\d+;?`)
	hashtagRe = regexp.MustCompile(`#[\p{L}\p{M}\p{N}_]+`)
	linkRe    = regexp.MustCompile(`http[a-zA-Z0-9:/.-]+`)
)

const punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// Cleaned is the output of Clean. Emojis and Hashtags list the extracted
// substrings in the order they appeared in the text.
type Cleaned struct {
	Text     string   `json:"text"`
	Emojis   []string `json:"emojis"`
	Hashtags []string `json:"hashtags"`
}

// Clean applies every cleaning stage in order. Mentions and retweet markers
// must go before hashtag extraction, and entities before punctuation
// stripping; reordering the stages changes the extracted features.
//
// Overlapping patterns (for example a hashtag glued to an entity such as
// "#tag&#128512;") are not reconciled: each stage sees the text left by the
// previous one.
func Clean(text string) Cleaned {
	text = Lowercase(text)
	text = RemoveMentions(text)
	text = RemoveRetweets(text)
	emojis := ExtractEmojis(text)
	text = RemoveEmojis(text)
	hashtags := ExtractHashtags(text)
	text = RemoveHashtags(text)
	text = CleanSpecialCharacters(text)
	return Cleaned{
		Text:     text,
		Emojis:   emojis,
		Hashtags: hashtags,
	}
}

// Lowercase folds text to lower case.
func Lowercase(text string) string {
	return cases.Lower(language.Und).String(text)
}

// RemoveMentions strips "@name" handles of up to 15 word characters.
func RemoveMentions(text string) string {
	return mentionRe.ReplaceAllString(text, "")
}

// RemoveRetweets strips "RT", "RT:" and "RT :" markers in any case.
func RemoveRetweets(text string) string {
	return retweetRe.ReplaceAllString(text, "")
}

// ExtractEmojis returns numeric HTML character references such as
// "&#128514;". Encoded entities stand in for emoji; no image analysis is
// attempted.
func ExtractEmojis(text string) []string {
	return findAll(emojiRe, text)
}

func RemoveEmojis(text string) string {
	return emojiRe.ReplaceAllString(text, "")
}

// ExtractHashtags returns every "#tag" including its leading '#'.
func ExtractHashtags(text string) []string {
	return findAll(hashtagRe, text)
}

func RemoveHashtags(text string) string {
	return hashtagRe.ReplaceAllString(text, "")
}

// CleanSpecialCharacters replaces "&amp" with "and", drops http links and
// removes ASCII punctuation. The replacement happens first so the '&' is
// not lost to punctuation stripping.
func CleanSpecialCharacters(text string) string {
	text = strings.ReplaceAll(text, "&amp", "and")
	text = linkRe.ReplaceAllString(text, "")
	return strings.Map(func(r rune) rune {
		if r < 0x80 && strings.ContainsRune(punctuation, r) {
			return -1
		}
		return r
	}, text)
}

func findAll(re *regexp.Regexp, text string) []string {
	matches := re.FindAllString(text, -1)
	if matches == nil {
		return []string{}
	}
	return matches
}
