package align

import "time"

// HintPhase is the escalation stage of the memory prompt.
type HintPhase string

const (
	// HintNone means no prompt is active.
	HintNone HintPhase = "none"

	// HintTrying asks the speaker to try recalling the next word unaided.
	HintTrying HintPhase = "trying"

	// HintShowing reveals the next word.
	HintShowing HintPhase = "showing"
)

// HintState is the externally visible prompt state. TargetIndex is only
// meaningful outside [HintNone], and always equals the tracker cursor at the
// time the phase was entered.
type HintState struct {
	Phase       HintPhase
	TargetIndex int
}

// Scheduler escalates the hint phase as silence accumulates. It shares the
// tracker's activity mark, so active-but-wrong speech holds escalation back
// just like progress does.
//
// Scheduler is not safe for concurrent use; ticks and word arrivals are
// serialised by the session layer. A tick that fires after the tracker has
// moved past the target is harmless: [Scheduler.NoteProgress] has already
// reset the state, and re-entering a phase for the new cursor position is the
// intended behaviour, not a misfire.
type Scheduler struct {
	cfg     Config
	tracker *Tracker
	state   HintState
}

// NewScheduler creates a Scheduler bound to tracker.
func NewScheduler(tracker *Tracker, cfg Config) *Scheduler {
	return &Scheduler{
		cfg:     cfg.withDefaults(),
		tracker: tracker,
		state:   HintState{Phase: HintNone},
	}
}

// State returns the current hint state.
func (s *Scheduler) State() HintState { return s.state }

// Tick advances the escalation based on silence at now and reports whether
// the state changed. On the transition to [HintShowing] the target word is
// marked prompted on the tracker, so its eventual log entry carries the flag.
func (s *Scheduler) Tick(now time.Time) (HintState, bool) {
	if s.tracker.Done() {
		return s.state, false
	}

	silence := now.Sub(s.tracker.LastMark())

	switch s.state.Phase {
	case HintNone:
		if silence >= s.cfg.TryAfter {
			s.state = HintState{Phase: HintTrying, TargetIndex: s.tracker.Cursor()}
			return s.state, true
		}

	case HintTrying:
		reveal := s.cfg.RevealAfterThinking
		if s.tracker.HasWrongAttempts() {
			reveal = s.cfg.RevealAfterFailing
		}
		if silence >= reveal {
			s.state.Phase = HintShowing
			s.tracker.MarkPrompted(s.state.TargetIndex)
			return s.state, true
		}
	}

	return s.state, false
}

// NoteProgress resets the escalation after the tracker resolved one or more
// words. Any progress at or past the target cancels the pending hint; since
// the cursor only moves forward and the target is pinned to it, every
// progress event qualifies. Reports whether the state changed.
func (s *Scheduler) NoteProgress() (HintState, bool) {
	if s.state.Phase == HintNone {
		return s.state, false
	}
	s.state = HintState{Phase: HintNone}
	return s.state, true
}
