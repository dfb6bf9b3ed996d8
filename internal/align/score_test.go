package align_test

import (
	"testing"

	"github.com/Ebbbabebba/sermable/internal/align"
)

func TestSimilarity_Tiers(t *testing.T) {
	t.Parallel()

	s := align.NewScorer()

	cases := []struct {
		name string
		a, b string
		want float64
	}{
		{"equal", "beginning", "beginning", 1.0},
		{"equal short", "a", "a", 1.0},
		{"short requires exact", "a", "an", 0.0},
		{"short requires exact reversed", "an", "a", 0.0},
		{"short vs long", "of", "offering", 0.0},
		{"stem containment", "running", "run", 0.85},
		{"plural containment", "hand", "hands", 0.85},
		{"no positional overlap", "xyz", "abc", 0.0},
	}
	for _, tc := range cases {
		if got := s.Similarity(tc.a, tc.b); got != tc.want {
			t.Errorf("%s: Similarity(%q, %q) = %v, want %v", tc.name, tc.a, tc.b, got, tc.want)
		}
	}
}

func TestSimilarity_PositionalRatio(t *testing.T) {
	t.Parallel()

	s := align.NewScorer()

	// "cat" vs "cab": two of three positions match.
	got := s.Similarity("cat", "cab")
	want := 2.0 / 3.0
	if got != want {
		t.Errorf("Similarity(cat, cab) = %v, want %v", got, want)
	}

	// Different lengths divide by the longer one.
	got = s.Similarity("house", "hose")
	// h,o match at positions 0,1; u≠s, s≠e → 2/5.
	if want = 2.0 / 5.0; got != want {
		t.Errorf("Similarity(house, hose) = %v, want %v", got, want)
	}

	// Positional scores stay strictly below the prefix score.
	if got >= 0.85 {
		t.Errorf("positional score %v must stay below prefix score", got)
	}
}

func TestSimilarity_NonASCIIRuneLengths(t *testing.T) {
	t.Parallel()

	s := align.NewScorer()

	cases := []struct {
		name string
		a, b string
		want float64
	}{
		// Two-letter words in multi-byte scripts must stay in the
		// exact-only tier; counting bytes would let them fall through
		// to the positional ratio and falsely match.
		{"greek short requires exact", "το", "τα", 0.0},
		{"cyrillic short requires exact", "он", "от", 0.0},
		{"hebrew short requires exact", "של", "שם", 0.0},
		{"greek short equal", "το", "το", 1.0},
		// One rune off in a five-rune word: 4/5 regardless of how many
		// bytes each rune takes.
		{"greek positional ratio", "γραφω", "γραψω", 4.0 / 5.0},
		{"swedish prefix containment", "sjöng", "sjöngen", 0.85},
	}
	for _, tc := range cases {
		if got := s.Similarity(tc.a, tc.b); got != tc.want {
			t.Errorf("%s: Similarity(%q, %q) = %v, want %v", tc.name, tc.a, tc.b, got, tc.want)
		}
	}
}

func TestSimilarity_PhoneticAssist(t *testing.T) {
	t.Parallel()

	plain := align.NewScorer()
	assisted := align.NewScorer(align.WithPhoneticAssist())

	// "night"/"knight" share no leading characters but sound identical.
	if got := plain.Similarity("night", "knight"); got >= 0.5 {
		t.Errorf("plain Similarity(night, knight) = %v, want below match threshold", got)
	}
	if got := assisted.Similarity("night", "knight"); got != 0.85 {
		t.Errorf("assisted Similarity(night, knight) = %v, want 0.85", got)
	}

	// Assist never touches the short-word tier.
	if got := assisted.Similarity("an", "en"); got != 0.0 {
		t.Errorf("assisted Similarity(an, en) = %v, want 0.0", got)
	}
}
