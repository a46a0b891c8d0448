package sentiment

// Lexicon holds the term sets the scorer looks for in normalized text.
type Lexicon struct {
	Bullish     []string
	Bearish     []string
	Influencers []string
	Media       []string
}

func DefaultLexicon() Lexicon {
	return Lexicon{
		Bullish:     []string{"pump", "moon", "bullish", "breakout", "ath", "listing", "rocket", "surge", "rally", "partnership", "upgrade"},
		Bearish:     []string{"dump", "scam", "bearish", "rekt", "crash", "hacked", "sec", "lawsuit", "selloff", "exploit", "rug"},
		Influencers: []string{"elonmusk", "cz_binance", "saylor"},
		Media:       []string{"cointelegraph", "watcher_guru", "whalechart"},
	}
}

// Merge returns l with every non-empty set of o replacing its counterpart.
func (l Lexicon) Merge(o Lexicon) Lexicon {
	if len(o.Bullish) > 0 {
		l.Bullish = o.Bullish
	}
	if len(o.Bearish) > 0 {
		l.Bearish = o.Bearish
	}
	if len(o.Influencers) > 0 {
		l.Influencers = o.Influencers
	}
	if len(o.Media) > 0 {
		l.Media = o.Media
	}
	return l
}
