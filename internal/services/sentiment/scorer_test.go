package sentiment

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScorerInfluencerAndBullishTerms(t *testing.T) {
	s := NewScorer(DefaultLexicon())
	assert.Equal(t, 95.0, s.Score("SAYLOR just bought more bitcoin, bullish breakout!"))
}

func TestScorerCountsDistinctTermsOnce(t *testing.T) {
	s := NewScorer(DefaultLexicon())
	assert.Equal(t, 60.0, s.Score("pump pump PUMP"))
}

func TestScorerClampsToRange(t *testing.T) {
	s := NewScorer(DefaultLexicon())
	assert.Equal(t, 100.0, s.Score("pump moon bullish breakout rally surge rocket listing"))
	assert.Equal(t, 0.0, s.Score("dump scam bearish rekt crash hacked exploit"))
}

func TestScorerStaysInRangeForAnyInput(t *testing.T) {
	s := NewScorer(DefaultLexicon())
	lex := DefaultLexicon()
	all := strings.Join(append(append(append(lex.Bullish, lex.Bearish...), lex.Influencers...), lex.Media...), " ")
	for _, text := range []string{"", "   ", "!!!", all, strings.Repeat(all, 5), "ÄÖÜ ∑ 🚀"} {
		got := s.Score(text)
		assert.GreaterOrEqual(t, got, 0.0)
		assert.LessOrEqual(t, got, 100.0)
	}
}

func TestScorerUnderscoreTermsNeverMatch(t *testing.T) {
	s := NewScorer(DefaultLexicon())
	// normalization removes "_" so "cz_binance" cannot be found in cleaned text
	assert.Equal(t, 60.0, s.Score("cz_binance to the moon"))
	assert.Equal(t, 50.0, s.Score("Watcher_guru posted"))
}

func TestScorerMediaBonus(t *testing.T) {
	s := NewScorer(DefaultLexicon())
	assert.Equal(t, 60.0, s.Score("Cointelegraph reports"))
}

func TestScorerCustomLexicon(t *testing.T) {
	s := NewScorer(Lexicon{Bullish: []string{"lambo"}, Bearish: []string{"fud"}})
	assert.Equal(t, 60.0, s.Score("wen lambo"))
	assert.Equal(t, 40.0, s.Score("pure FUD"))
	assert.Equal(t, 50.0, s.Score("pump"))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "big breakout for bitcoin", normalize("Big breakout for #bitcoin!"))
	assert.Equal(t, "czbinance", normalize("cz_binance"))
}
