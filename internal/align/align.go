// Package align implements the real-time spoken-word alignment engine: given
// a tokenised reference script and an incremental stream of recognised words,
// it decides which script words have been delivered and in what condition.
//
// The package has three cooperating parts:
//
//   - [Scorer] rates the similarity of two normalised words on a tiered rule.
//   - [Tracker] owns the expected-word cursor and the ordered performance log,
//     consuming one recognised word at a time with bounded skip recovery.
//   - [Scheduler] watches time-since-last-activity and escalates a memory
//     hint from silence through "try to recall" to "reveal the word".
//
// None of the types here are safe for concurrent use on their own. The
// session layer serialises all mutations — word arrivals and scheduler ticks —
// onto a single goroutine, which is what keeps the log linear and the
// invariants below checkable:
//
//   - the cursor never decreases within a session;
//   - every index 0..N-1 appears in the log exactly once after Finalize;
//   - the wrong-attempt buffer is empty whenever the cursor has just advanced.
package align

import "time"

// Status describes the condition a reference word was resolved in.
type Status string

const (
	// StatusCorrect means the word was spoken promptly and unaided.
	StatusCorrect Status = "correct"

	// StatusHesitated means the word was spoken but only after a prompt or
	// after more than the configured hesitation timeout.
	StatusHesitated Status = "hesitated"

	// StatusSkipped means a later word matched first and this one was
	// jumped over.
	StatusSkipped Status = "skipped"

	// StatusMissed means the session ended before the word was reached.
	StatusMissed Status = "missed"
)

// WordPerformance is one entry of the performance log: the final verdict for
// a single reference index. Entries are appended in strictly increasing index
// order and never mutated afterwards.
type WordPerformance struct {
	// Word is the raw reference token this entry describes.
	Word string

	// Index is the reference position, matching script.Token.Index.
	Index int

	// Status is the delivery verdict.
	Status Status

	// TimeToSpeak is how long the word took measured from the previous
	// activity mark. Zero for skipped and missed entries, where no spoken
	// evidence exists.
	TimeToSpeak time.Duration

	// Prompted reports whether the word had been revealed as a hint before
	// it was finally spoken.
	Prompted bool

	// WrongAttempts holds the normalised non-matching words spoken while this
	// word was expected. Nil when the word was hit directly.
	WrongAttempts []string
}

// Config carries every tunable of the alignment engine. The numeric defaults
// are the "practice" preset; the other presets in internal/config only vary
// these same knobs.
type Config struct {
	// MatchThreshold is the minimum similarity for a recognised word to count
	// as the expected (or a looked-ahead) reference word.
	MatchThreshold float64

	// Lookahead is how many reference words past the cursor are scanned for
	// skip recovery. Keeping this small avoids false matches against
	// unrelated distant words.
	Lookahead int

	// HesitationTimeout is the time-to-speak above which a matched word is
	// classified hesitated instead of correct.
	HesitationTimeout time.Duration

	// TryAfter is the silence duration after which the scheduler enters the
	// "try to recall" phase.
	TryAfter time.Duration

	// RevealAfterThinking is the silence required to reveal the word when the
	// speaker has not attempted anything — they are likely still thinking.
	RevealAfterThinking time.Duration

	// RevealAfterFailing is the shorter silence required to reveal the word
	// once wrong attempts have been buffered — the speaker is actively
	// failing and waiting longer only frustrates.
	RevealAfterFailing time.Duration

	// TickInterval is how often the session layer should drive
	// [Scheduler.Tick].
	TickInterval time.Duration
}

// DefaultConfig returns the "practice" preset.
func DefaultConfig() Config {
	return Config{
		MatchThreshold:      0.5,
		Lookahead:           3,
		HesitationTimeout:   2500 * time.Millisecond,
		TryAfter:            1500 * time.Millisecond,
		RevealAfterThinking: 3000 * time.Millisecond,
		RevealAfterFailing:  1000 * time.Millisecond,
		TickInterval:        200 * time.Millisecond,
	}
}

// withDefaults fills zero-valued fields from [DefaultConfig].
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MatchThreshold <= 0 {
		c.MatchThreshold = d.MatchThreshold
	}
	if c.Lookahead <= 0 {
		c.Lookahead = d.Lookahead
	}
	if c.HesitationTimeout <= 0 {
		c.HesitationTimeout = d.HesitationTimeout
	}
	if c.TryAfter <= 0 {
		c.TryAfter = d.TryAfter
	}
	if c.RevealAfterThinking <= 0 {
		c.RevealAfterThinking = d.RevealAfterThinking
	}
	if c.RevealAfterFailing <= 0 {
		c.RevealAfterFailing = d.RevealAfterFailing
	}
	if c.TickInterval <= 0 {
		c.TickInterval = d.TickInterval
	}
	return c
}
