package align_test

import (
	"testing"
	"time"

	"github.com/Ebbbabebba/sermable/internal/align"
)

func newPair(t *testing.T, s string) (*align.Tracker, *align.Scheduler) {
	t.Helper()
	tr := align.NewTracker(mustTokenize(t, s), align.DefaultConfig(), align.NewScorer(), t0)
	return tr, align.NewScheduler(tr, align.DefaultConfig())
}

func TestScheduler_EscalationWhileThinking(t *testing.T) {
	t.Parallel()

	_, sched := newPair(t, "alpha beta")

	if _, changed := sched.Tick(t0.Add(1499 * time.Millisecond)); changed {
		t.Fatal("escalated before the try threshold")
	}

	state, changed := sched.Tick(t0.Add(1500 * time.Millisecond))
	if !changed || state.Phase != align.HintTrying || state.TargetIndex != 0 {
		t.Fatalf("state after 1500ms = %+v (changed=%v), want trying at index 0", state, changed)
	}

	// No wrong attempts: reveal only after 3000ms of total silence.
	if _, changed := sched.Tick(t0.Add(2999 * time.Millisecond)); changed {
		t.Fatal("revealed before the thinking threshold")
	}
	state, changed = sched.Tick(t0.Add(3000 * time.Millisecond))
	if !changed || state.Phase != align.HintShowing {
		t.Fatalf("state after 3000ms = %+v (changed=%v), want showing", state, changed)
	}
}

func TestScheduler_RevealsFasterAfterWrongAttempts(t *testing.T) {
	t.Parallel()

	tr, sched := newPair(t, "alpha beta")

	state, _ := sched.Tick(t0.Add(1500 * time.Millisecond))
	if state.Phase != align.HintTrying {
		t.Fatalf("phase = %q, want trying", state.Phase)
	}

	// A failed attempt restarts the silence clock but keeps the hint phase.
	attemptAt := t0.Add(1600 * time.Millisecond)
	tr.Consume("zzz", attemptAt)

	if _, changed := sched.Tick(attemptAt.Add(999 * time.Millisecond)); changed {
		t.Fatal("revealed before the failing threshold")
	}
	state, changed := sched.Tick(attemptAt.Add(1000 * time.Millisecond))
	if !changed || state.Phase != align.HintShowing {
		t.Fatalf("state = %+v (changed=%v), want showing 1000ms after the failed attempt", state, changed)
	}
}

func TestScheduler_RevealMarksWordPrompted(t *testing.T) {
	t.Parallel()

	tr, sched := newPair(t, "alpha beta")

	sched.Tick(t0.Add(1500 * time.Millisecond))
	sched.Tick(t0.Add(3000 * time.Millisecond))

	entries := tr.Consume("alpha", t0.Add(3200*time.Millisecond))
	if len(entries) != 1 || !entries[0].Prompted || entries[0].Status != align.StatusHesitated {
		t.Fatalf("entry = %+v, want prompted hesitated", entries)
	}
}

func TestScheduler_ProgressResetsHint(t *testing.T) {
	t.Parallel()

	tr, sched := newPair(t, "alpha beta gamma")

	sched.Tick(t0.Add(1500 * time.Millisecond))

	progressAt := t0.Add(1700 * time.Millisecond)
	tr.Consume("alpha", progressAt)
	state, changed := sched.NoteProgress()
	if !changed || state.Phase != align.HintNone {
		t.Fatalf("state after progress = %+v (changed=%v), want none", state, changed)
	}

	// Escalation starts over for the next word, measured from the progress.
	if _, changed := sched.Tick(progressAt.Add(1499 * time.Millisecond)); changed {
		t.Fatal("escalated early after reset")
	}
	state, _ = sched.Tick(progressAt.Add(1500 * time.Millisecond))
	if state.Phase != align.HintTrying || state.TargetIndex != 1 {
		t.Fatalf("state = %+v, want trying at index 1", state)
	}
}

func TestScheduler_NoTicksAfterCompletion(t *testing.T) {
	t.Parallel()

	tr, sched := newPair(t, "alpha")

	tr.Consume("alpha", t0.Add(200*time.Millisecond))
	sched.NoteProgress()

	if state, changed := sched.Tick(t0.Add(time.Hour)); changed || state.Phase != align.HintNone {
		t.Fatalf("state = %+v (changed=%v), want inert scheduler after completion", state, changed)
	}
}

func TestScheduler_LateTickAfterProgressIsHarmless(t *testing.T) {
	t.Parallel()

	tr, sched := newPair(t, "alpha beta")

	sched.Tick(t0.Add(1500 * time.Millisecond))
	tr.Consume("alpha", t0.Add(1600*time.Millisecond))
	sched.NoteProgress()

	// A tick computed for a time before the progress event must not resurrect
	// the old target; it can only start a fresh cycle for the new cursor.
	state, changed := sched.Tick(t0.Add(1550 * time.Millisecond))
	if changed || state.Phase != align.HintNone {
		t.Fatalf("state = %+v (changed=%v), want none", state, changed)
	}
}
