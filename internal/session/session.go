// Package session runs one recital attempt end to end: it owns the single
// goroutine that serialises recognised-word arrivals and hint-scheduler ticks
// onto the alignment engine, and it guarantees the performance log is
// finalised exactly once on every termination path.
//
// Concurrency model: there is exactly one logical writer of alignment state.
// Token batches arrive on a channel, ticks come from a ticker owned by the
// same loop, and both are consumed by one goroutine — callers never touch the
// tracker directly. Stopping the session cancels the ticker deterministically;
// no tick is delivered after the final log has been produced.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Ebbbabebba/sermable/internal/align"
	"github.com/Ebbbabebba/sermable/internal/observe"
	"github.com/Ebbbabebba/sermable/internal/script"
)

// Listener receives session events. Callbacks are invoked synchronously from
// the session goroutine, in order; implementations must return quickly and
// must not call back into the Session.
type Listener interface {
	// OnWord is called once per reference index as it resolves, including
	// the missed tail appended at finalisation.
	OnWord(align.WordPerformance)

	// OnHint is called on every hint phase transition.
	OnHint(align.HintState)

	// OnComplete is called exactly once with the index-complete log.
	OnComplete([]align.WordPerformance)
}

// NopListener is a Listener that ignores every event.
type NopListener struct{}

func (NopListener) OnWord(align.WordPerformance)       {}
func (NopListener) OnHint(align.HintState)             {}
func (NopListener) OnComplete([]align.WordPerformance) {}

// Option is a functional option for configuring a [Session].
type Option func(*Session)

// WithListener sets the event listener. Default: [NopListener].
func WithListener(l Listener) Option {
	return func(s *Session) {
		s.listener = l
	}
}

// WithEngineConfig sets the alignment thresholds. Default:
// [align.DefaultConfig].
func WithEngineConfig(cfg align.Config) Option {
	return func(s *Session) {
		s.cfg = cfg
	}
}

// WithScorer sets the similarity scorer, e.g. one with phonetic assist.
func WithScorer(sc *align.Scorer) Option {
	return func(s *Session) {
		s.scorer = sc
	}
}

// WithMetrics sets the metrics sink. Default: [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Session) {
		s.metrics = m
	}
}

// WithClock overrides the time source. Tests use a fake clock to make
// hesitation classification deterministic.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// Session is one recital attempt over a fixed token list. Create with [New],
// drive with [Session.Start], [Session.Push], and [Session.Stop].
type Session struct {
	cfg      align.Config
	scorer   *align.Scorer
	listener Listener
	metrics  *observe.Metrics
	now      func() time.Time

	tracker *align.Tracker
	sched   *align.Scheduler

	batches chan []string

	stopReq  chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	mu        sync.Mutex
	started   bool
	active    bool
	startedAt time.Time
	result    []align.WordPerformance
}

// New creates a Session over tokens. The session does not run until
// [Session.Start] is called.
func New(tokens []script.Token, opts ...Option) *Session {
	s := &Session{
		cfg:      align.DefaultConfig(),
		listener: NopListener{},
		now:      time.Now,
		batches:  make(chan []string, 16),
		stopReq:  make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	if s.metrics == nil {
		s.metrics = observe.DefaultMetrics()
	}

	start := s.now()
	s.startedAt = start
	s.tracker = align.NewTracker(tokens, s.cfg, s.scorer, start)
	s.sched = align.NewScheduler(s.tracker, s.cfg)
	return s
}

// Start launches the session goroutine. The session ends when ctx is
// cancelled, [Session.Stop] is called, or the script is fully traversed —
// whichever comes first. Start must be called at most once.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.active = true
	s.mu.Unlock()

	s.metrics.ActiveSessions.Add(ctx, 1)
	go s.run(ctx)
}

// Push delivers a batch of recognised words, in spoken order. Words must
// already be deduplicated against interim restatements (see [Source]); they
// need not be normalised. Push never blocks past session shutdown; batches
// arriving after the end are dropped.
func (s *Session) Push(words []string) {
	if len(words) == 0 {
		return
	}
	select {
	case s.batches <- words:
	case <-s.done:
	}
}

// Stop ends the session, waits for the loop to finalise the log, and returns
// the complete result. Safe to call multiple times, after natural completion,
// and on a session that was never started; later calls return the same log.
func (s *Session) Stop() []align.WordPerformance {
	s.mu.Lock()
	if !s.started {
		s.started = true
		s.mu.Unlock()
		s.finish(context.Background())
	} else {
		s.mu.Unlock()
	}

	s.stopOnce.Do(func() {
		close(s.stopReq)
	})
	<-s.done

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Done is closed once the final log has been produced.
func (s *Session) Done() <-chan struct{} { return s.done }

// run is the single-writer event loop.
func (s *Session) run(ctx context.Context) {
	ctx, span := observe.StartSpan(ctx, "session.run")
	defer span.End()

	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.finish(ctx)
			return

		case <-s.stopReq:
			s.finish(ctx)
			return

		case batch := <-s.batches:
			for _, w := range batch {
				s.consume(ctx, w)
			}
			if s.tracker.Done() {
				s.finish(ctx)
				return
			}

		case <-ticker.C:
			if state, changed := s.sched.Tick(s.now()); changed {
				s.announceHint(ctx, state)
			}
		}
	}
}

// consume feeds one recognised word through the tracker and emits events for
// whatever it resolved.
func (s *Session) consume(ctx context.Context, raw string) {
	word := script.Normalize(raw)
	entries := s.tracker.Consume(word, s.now())
	for _, e := range entries {
		s.metrics.RecordWordResolved(ctx, string(e.Status), e.Prompted)
		if e.TimeToSpeak > 0 {
			s.metrics.TimeToSpeak.Record(ctx, e.TimeToSpeak.Seconds())
		}
		s.listener.OnWord(e)
	}
	if len(entries) > 0 {
		if state, changed := s.sched.NoteProgress(); changed {
			s.announceHint(ctx, state)
		}
	}
}

// announceHint records and emits a hint phase transition.
func (s *Session) announceHint(ctx context.Context, state align.HintState) {
	s.metrics.RecordHintPhase(ctx, string(state.Phase))
	s.listener.OnHint(state)
}

// finish runs the finaliser exactly once per session and emits the closing
// events. Called from the loop goroutine only, as its last act.
func (s *Session) finish(ctx context.Context) {
	full, tail := s.tracker.Finalize()
	for _, e := range tail {
		s.metrics.RecordWordResolved(ctx, string(e.Status), e.Prompted)
		s.listener.OnWord(e)
	}

	s.mu.Lock()
	s.result = full
	startedAt := s.startedAt
	wasActive := s.active
	s.active = false
	s.mu.Unlock()

	s.metrics.SessionDuration.Record(ctx, s.now().Sub(startedAt).Seconds())
	if wasActive {
		s.metrics.ActiveSessions.Add(ctx, -1)
	}

	s.listener.OnComplete(full)
	slog.Info("session complete",
		"words", len(full),
		"missed_tail", len(tail),
	)
	close(s.done)
}
