// Package script turns a reference script — the fixed text the speaker is
// meant to recite — into the ordered, normalised token list the alignment
// engine works against.
//
// Tokenisation splits on whitespace only; punctuation stays attached to the
// raw token and is removed during normalisation. Both operations are pure and
// deterministic so a script tokenised twice yields identical tokens.
package script

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrEmptyScript is returned by [Tokenize] when the script contains no
// word-like content. A session cannot start against an empty script.
var ErrEmptyScript = errors.New("script: no tokens in reference script")

// Token is one word of the reference script. Immutable once created.
type Token struct {
	// Index is the zero-based position of the token in the script.
	Index int

	// Raw is the token exactly as written, including punctuation and case.
	Raw string

	// Normalized is the canonical comparison form produced by [Normalize].
	// May be empty when the raw token carries no letters or digits
	// (e.g. a lone em-dash).
	Normalized string
}

// normalizer decomposes to NFD, drops combining marks, and recomposes.
// Shared across calls; transform chains are stateless between Strings calls.
var normalizer = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Normalize returns the canonical comparison form of text: lowercased,
// diacritics stripped, and all runes that are not letters or digits removed.
// "Förlåt," becomes "forlat", "don't" becomes "dont".
func Normalize(text string) string {
	stripped, _, err := transform.String(normalizer, text)
	if err != nil {
		// The chain cannot fail on valid UTF-8; fall back to the input so a
		// malformed token still normalises to something comparable.
		stripped = text
	}

	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range stripped {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// Tokenize splits script on runs of whitespace and returns the indexed token
// list. Empty fragments are discarded. Returns [ErrEmptyScript] when the
// script yields zero tokens.
func Tokenize(script string) ([]Token, error) {
	fields := strings.Fields(script)
	if len(fields) == 0 {
		return nil, ErrEmptyScript
	}

	tokens := make([]Token, len(fields))
	for i, f := range fields {
		tokens[i] = Token{
			Index:      i,
			Raw:        f,
			Normalized: Normalize(f),
		}
	}
	return tokens, nil
}

// Words returns the normalised forms of tokens, preserving order. Convenience
// for callers that seed recognition keyword boosts from the script vocabulary.
func Words(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Normalized
	}
	return out
}
