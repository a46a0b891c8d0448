package sentiment

import (
	"strings"
)

const (
	baselineScore   = 50.0
	bullishWeight   = 10.0
	bearishWeight   = -10.0
	influencerBonus = 25.0
	mediaBonus      = 10.0
)

// Scorer computes a 0..100 lexical sentiment score for one snippet.
type Scorer struct {
	lex Lexicon
}

func NewScorer(lex Lexicon) *Scorer {
	return &Scorer{lex: lex}
}

// Score is pure: the same text always yields the same score.
// Each distinct term counts once no matter how often it occurs.
func (s *Scorer) Score(text string) float64 {
	clean := normalize(text)

	score := baselineScore
	score += bullishWeight * float64(countTerms(clean, s.lex.Bullish))
	score += bearishWeight * float64(countTerms(clean, s.lex.Bearish))
	score += influencerBonus * float64(countTerms(clean, s.lex.Influencers))
	score += mediaBonus * float64(countTerms(clean, s.lex.Media))

	return clamp(score, 0, 100)
}

// normalize lowercases and drops everything but [a-z0-9] and whitespace.
func normalize(text string) string {
	lower := strings.ToLower(text)
	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '\t', r == '\n', r == '\r', r == '\v', r == '\f':
			b.WriteRune(r)
		}
	}
	return b.String()
}

func countTerms(text string, terms []string) int {
	n := 0
	for _, t := range terms {
		if t != "" && strings.Contains(text, t) {
			n++
		}
	}
	return n
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
