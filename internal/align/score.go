package align

import "github.com/antzucaro/matchr"

// shortWordLen is the length at or below which only exact matches count.
// "a" vs "an" must never pass — short words produce too many false positives
// for anything fuzzier.
const shortWordLen = 2

// prefixScore is the fixed score for stem containment ("run"/"running",
// "hand"/"hands"). High enough to clear any sane match threshold, below 1.0
// so an exact match always wins a tie.
const prefixScore = 0.85

// ScorerOption is a functional option for configuring a [Scorer].
type ScorerOption func(*Scorer)

// WithPhoneticAssist enables the Double Metaphone assist tier. When two words
// fail the prefix test but share a phonetic code, the scorer returns the
// prefix score instead of the positional ratio. This helps with recognition
// output that spells a word differently than the script ("colour"/"color",
// misheard proper nouns). Disabled by default.
func WithPhoneticAssist() ScorerOption {
	return func(s *Scorer) {
		s.phonetic = true
	}
}

// Scorer rates the similarity of two already-normalised words in [0, 1].
// A Scorer is read-only after construction and safe for concurrent use.
type Scorer struct {
	phonetic bool
}

// NewScorer returns a [Scorer] configured with the supplied options.
func NewScorer(opts ...ScorerOption) *Scorer {
	s := &Scorer{}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Similarity returns a tiered similarity score for two normalised words:
//
//  1. Equal words score 1.0.
//  2. Words of length ≤ 2 must be equal; otherwise they score 0.0.
//  3. When one word is a prefix of the other, the pair scores 0.85. This
//     captures stems, plurals, and tense variants ("run"/"running"); the
//     short-word tier above keeps degenerate prefixes like "a"/"an" out.
//  4. Otherwise the score is the number of equal character positions (up to
//     the shorter length) divided by the longer length — a coarse positional
//     ratio strictly below 1.
//
// Lengths and positions are counted in runes, not bytes, so the short-word
// rule and the positional ratio behave the same for "τα" as for "an".
//
// With phonetic assist enabled, a tier-4 pair whose Double Metaphone codes
// overlap is lifted to the prefix score.
func (s *Scorer) Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}

	ra, rb := []rune(a), []rune(b)
	if len(ra) <= shortWordLen || len(rb) <= shortWordLen {
		return 0.0
	}

	shorter, longer := ra, rb
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}

	prefix := true
	for i := range shorter {
		if shorter[i] != longer[i] {
			prefix = false
			break
		}
	}
	if prefix {
		return prefixScore
	}

	if s.phonetic && phoneticOverlap(a, b) {
		return prefixScore
	}

	same := 0
	for i := range shorter {
		if ra[i] == rb[i] {
			same++
		}
	}
	return float64(same) / float64(len(longer))
}

// phoneticOverlap reports whether a and b share at least one Double Metaphone
// code. Empty codes (words without consonant structure) never overlap.
func phoneticOverlap(a, b string) bool {
	ap, as := matchr.DoubleMetaphone(a)
	bp, bs := matchr.DoubleMetaphone(b)
	for _, x := range []string{ap, as} {
		if x == "" {
			continue
		}
		if x == bp || (bs != "" && x == bs) {
			return true
		}
	}
	return false
}
