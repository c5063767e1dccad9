// Package sentiment turns news text into a normalized per-asset score in
// [-1, 1]. Two scoring strategies exist behind one interface; the feed treats
// them as swappable.
package sentiment

import (
	"math"
	"strings"
)

// Scorer rates a piece of text in [-1, 1].
type Scorer interface {
	Score(text string) float64
	Name() string
}

// LexiconScorer scores text with a valence-weighted word lexicon and a
// compound normalization, so strongly loaded words move the score further.
type LexiconScorer struct {
	valence map[string]float64
}

// NewLexiconScorer builds the scorer with the built-in financial lexicon.
func NewLexiconScorer() *LexiconScorer {
	return &LexiconScorer{valence: map[string]float64{
		"bullish":  2.1, "surge": 1.9, "soar": 2.0, "rally": 1.7,
		"rise":     1.2, "gain": 1.4, "growth": 1.3, "record": 1.1,
		"positive": 1.5, "strong": 1.2, "up": 0.8, "boom": 1.8,
		"adoption": 1.0, "breakout": 1.5, "recover": 1.1,
		"bearish":  -2.1, "plunge": -2.0, "crash": -2.4, "collapse": -2.3,
		"fall":     -1.2, "loss": -1.4, "drop": -1.2, "decline": -1.3,
		"negative": -1.5, "weak": -1.2, "down": -0.8, "fear": -1.6,
		"fraud":    -2.2, "hack": -2.0, "selloff": -1.8, "ban": -1.7,
	}}
}

func (s *LexiconScorer) Name() string { return "lexicon" }

// Score sums the valence of every lexicon hit and squashes the total into
// [-1, 1] with x/sqrt(x^2+15).
func (s *LexiconScorer) Score(text string) float64 {
	var total float64
	for _, word := range tokenize(text) {
		total += s.valence[word]
	}
	if total == 0 {
		return 0
	}
	return total / math.Sqrt(total*total+15)
}

// KeywordScorer counts bullish vs bearish keyword hits and normalizes the
// difference by the total hit count.
type KeywordScorer struct {
	positive []string
	negative []string
}

// NewKeywordScorer builds the scorer with the built-in keyword lists.
func NewKeywordScorer() *KeywordScorer {
	return &KeywordScorer{
		positive: []string{"bullish", "surge", "rise", "gain", "positive", "up"},
		negative: []string{"bearish", "plunge", "fall", "loss", "negative", "down"},
	}
}

func (s *KeywordScorer) Name() string { return "keyword" }

func (s *KeywordScorer) Score(text string) float64 {
	words := tokenize(text)
	counts := make(map[string]int, len(words))
	for _, w := range words {
		counts[w]++
	}
	var pos, neg int
	for _, w := range s.positive {
		pos += counts[w]
	}
	for _, w := range s.negative {
		neg += counts[w]
	}
	if pos+neg == 0 {
		return 0
	}
	return float64(pos-neg) / float64(pos+neg)
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
}
