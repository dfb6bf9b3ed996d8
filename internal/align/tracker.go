package align

import (
	"log/slog"
	"time"

	"github.com/Ebbbabebba/sermable/internal/script"
)

// Tracker is the alignment state machine. It owns the expected-word cursor,
// the ordered performance log, and the wrong-attempt buffer for the word
// currently expected.
//
// Tracker is not safe for concurrent use; the session layer serialises all
// calls onto one goroutine. Every method that observes time takes an explicit
// now so the session layer — and tests — control the clock.
type Tracker struct {
	cfg    Config
	scorer *Scorer
	tokens []script.Token

	cursor   int
	log      []WordPerformance
	wrongBuf []string

	// lastMark is the most recent activity: session start, a resolved word,
	// or a wrong attempt. Both time-to-speak and the hint scheduler's silence
	// measure from it.
	lastMark time.Time

	// promptedIndex is the reference index the hint scheduler has revealed,
	// or -1. Consumed and cleared exactly once when that index resolves.
	promptedIndex int
}

// NewTracker creates a Tracker over the given reference tokens. startedAt
// seeds the activity mark so the first word's time-to-speak is measured from
// session start.
func NewTracker(tokens []script.Token, cfg Config, scorer *Scorer, startedAt time.Time) *Tracker {
	if scorer == nil {
		scorer = NewScorer()
	}
	return &Tracker{
		cfg:           cfg.withDefaults(),
		scorer:        scorer,
		tokens:        tokens,
		lastMark:      startedAt,
		promptedIndex: -1,
	}
}

// Cursor returns the index of the next reference word expected to be spoken.
func (t *Tracker) Cursor() int { return t.cursor }

// Done reports whether every reference word has been resolved by matching
// (not counting the missed tail a Finalize would add).
func (t *Tracker) Done() bool { return t.cursor >= len(t.tokens) }

// LastMark returns the most recent activity timestamp.
func (t *Tracker) LastMark() time.Time { return t.lastMark }

// HasWrongAttempts reports whether the current expected word has buffered
// failed attempts. The hint scheduler uses this to pick its reveal window.
func (t *Tracker) HasWrongAttempts() bool { return len(t.wrongBuf) > 0 }

// Log returns the performance entries resolved so far, in index order.
// The returned slice is the Tracker's own backing store; callers must not
// mutate it.
func (t *Tracker) Log() []WordPerformance { return t.log }

// MarkPrompted records that the word at index has been revealed to the
// speaker. When that index later resolves by matching, its entry is flagged
// prompted and classified hesitated. Called by the hint scheduler only for
// the current cursor position.
func (t *Tracker) MarkPrompted(index int) {
	t.promptedIndex = index
}

// Consume feeds one recognised word (already normalised) into the state
// machine and returns the performance entries it resolved, in index order.
// The slice is empty when the word neither matched the expected word nor any
// word within the lookahead window — in that case the word is buffered as a
// wrong attempt and the activity mark still advances, because active-but-
// wrong speech is not silence.
//
// Words arriving after the script is fully traversed are ignored.
func (t *Tracker) Consume(word string, now time.Time) []WordPerformance {
	if word == "" {
		return nil
	}

	entries := t.resolveUnspeakable()
	if t.cursor >= len(t.tokens) {
		return entries
	}

	// Expected word first.
	if t.scorer.Similarity(word, t.tokens[t.cursor].Normalized) >= t.cfg.MatchThreshold {
		entries = append(entries, t.resolveMatch(t.cursor, now))
		return append(entries, t.resolveUnspeakable()...)
	}

	// Skip recovery: scan a bounded window past the cursor.
	end := t.cursor + t.cfg.Lookahead
	if end >= len(t.tokens) {
		end = len(t.tokens) - 1
	}
	for i := t.cursor + 1; i <= end; i++ {
		if t.scorer.Similarity(word, t.tokens[i].Normalized) < t.cfg.MatchThreshold {
			continue
		}

		skipped := 0
		for j := t.cursor; j < i; j++ {
			status := StatusSkipped
			if t.tokens[j].Normalized == "" {
				// Punctuation-only token inside the jumped range: not
				// speakable, so not a skip either.
				status = StatusCorrect
			} else {
				skipped++
			}
			entry := WordPerformance{
				Word:   t.tokens[j].Raw,
				Index:  j,
				Status: status,
			}
			t.log = append(t.log, entry)
			entries = append(entries, entry)
		}
		t.cursor = i
		entries = append(entries, t.resolveMatch(i, now))
		slog.Debug("skip recovery",
			"matched_index", i,
			"skipped", skipped,
			"word", word,
		)
		return append(entries, t.resolveUnspeakable()...)
	}

	// No match anywhere in the window: buffer and keep the cursor.
	t.wrongBuf = append(t.wrongBuf, word)
	t.lastMark = now
	return entries
}

// resolveUnspeakable advances the cursor past reference tokens with no
// speakable content (punctuation-only, normalised to empty — a lone em-dash,
// say). They resolve as correct with zero timing: the speaker cannot say
// them, so they must neither cost a skip nor strand the cursor waiting for a
// word that can never match.
func (t *Tracker) resolveUnspeakable() []WordPerformance {
	var entries []WordPerformance
	for t.cursor < len(t.tokens) && t.tokens[t.cursor].Normalized == "" {
		entry := WordPerformance{
			Word:   t.tokens[t.cursor].Raw,
			Index:  t.cursor,
			Status: StatusCorrect,
		}
		t.log = append(t.log, entry)
		entries = append(entries, entry)
		t.cursor++
		if t.promptedIndex >= 0 && t.cursor > t.promptedIndex {
			t.promptedIndex = -1
		}
	}
	return entries
}

// resolveMatch records the entry for index (which must equal the cursor),
// advances the cursor, and clears the per-word state. The prompted flag is
// consumed here; a skip past the prompted index drops the flag without
// marking, since the revealed word was never actually spoken.
//
// A word reached through skip recovery is deliberately put through the same
// hesitation rule as a direct cursor match: jumping ahead after a long
// silence is still a hesitation, not a clean delivery.
func (t *Tracker) resolveMatch(index int, now time.Time) WordPerformance {
	elapsed := now.Sub(t.lastMark)
	prompted := t.promptedIndex == index

	status := StatusCorrect
	if prompted || elapsed > t.cfg.HesitationTimeout {
		status = StatusHesitated
	}

	entry := WordPerformance{
		Word:        t.tokens[index].Raw,
		Index:       index,
		Status:      status,
		TimeToSpeak: elapsed,
		Prompted:    prompted,
	}
	if len(t.wrongBuf) > 0 {
		entry.WrongAttempts = t.wrongBuf
	}

	t.log = append(t.log, entry)
	t.cursor = index + 1
	t.wrongBuf = nil
	t.lastMark = now
	if t.promptedIndex >= 0 && t.cursor > t.promptedIndex {
		t.promptedIndex = -1
	}
	return entry
}

// Finalize closes out the session: every reference index at or past the
// cursor is appended as missed, and the complete, gap-free log is returned.
// It must be called exactly once per session, on every termination path.
// The returned tail holds only the newly added missed entries; Log holds
// everything.
func (t *Tracker) Finalize() (full, tail []WordPerformance) {
	for i := t.cursor; i < len(t.tokens); i++ {
		entry := WordPerformance{
			Word:   t.tokens[i].Raw,
			Index:  i,
			Status: StatusMissed,
		}
		t.log = append(t.log, entry)
		tail = append(tail, entry)
	}
	t.cursor = len(t.tokens)
	t.wrongBuf = nil
	t.promptedIndex = -1
	return t.log, tail
}
