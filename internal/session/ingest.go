package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Ebbbabebba/sermable/internal/observe"
	"github.com/Ebbbabebba/sermable/pkg/recog"
)

const (
	// defaultMaxRestarts bounds how often a failed recogniser stream is
	// reopened before the error is surfaced to the host.
	defaultMaxRestarts = 10

	// defaultRestartBackoff is the fixed pause between restart attempts.
	defaultRestartBackoff = 300 * time.Millisecond
)

// deltaFilter turns a recogniser's cumulative interim results into the
// strictly new words of the current utterance. Providers restate the whole
// utterance on every interim ("the", "the quick", "the quick brown"); feeding
// those to the session verbatim would resolve every word several times. The
// filter hands out only the suffix beyond what it already delivered, and
// starts a fresh utterance after each final.
//
// A final redelivered with text identical to the previous final is treated as
// a transport duplicate and suppressed entirely.
type deltaFilter struct {
	delivered []string
	lastFinal string
}

// delta returns the not-yet-delivered words of r, updating filter state.
func (f *deltaFilter) delta(r recog.Result) []string {
	words := strings.Fields(r.Text)

	if r.IsFinal {
		if r.Text != "" && r.Text == f.lastFinal && len(f.delivered) == 0 {
			return nil
		}
		fresh := f.tail(words)
		f.delivered = nil
		f.lastFinal = r.Text
		return fresh
	}

	f.lastFinal = ""
	fresh := f.tail(words)
	if len(words) > len(f.delivered) {
		f.delivered = words
	}
	return fresh
}

// tail returns the words beyond the already-delivered prefix. An interim that
// shrinks (the provider revised earlier words) yields nothing new; revisions
// of already-delivered words are accepted as spoken.
func (f *deltaFilter) tail(words []string) []string {
	if len(words) <= len(f.delivered) {
		return nil
	}
	return words[len(f.delivered):]
}

// Source pumps recogniser results into a session, reopening the stream on
// failure with a fixed backoff until the restart budget is exhausted.
type Source struct {
	provider recog.Provider
	stream   recog.StreamConfig

	maxRestarts int
	backoff     time.Duration
	metrics     *observe.Metrics
	audio       io.Reader
}

// SourceOption is a functional option for configuring a [Source].
type SourceOption func(*Source)

// WithMaxRestarts overrides the restart budget.
func WithMaxRestarts(n int) SourceOption {
	return func(s *Source) {
		s.maxRestarts = n
	}
}

// WithRestartBackoff overrides the pause between restart attempts.
func WithRestartBackoff(d time.Duration) SourceOption {
	return func(s *Source) {
		s.backoff = d
	}
}

// WithAudioInput streams raw audio from r into every opened recogniser
// stream. Reads continue across restarts; a restarted stream picks up from
// wherever the reader left off.
func WithAudioInput(r io.Reader) SourceOption {
	return func(s *Source) {
		s.audio = r
	}
}

// WithSourceMetrics sets the metrics sink. Default: [observe.DefaultMetrics].
func WithSourceMetrics(m *observe.Metrics) SourceOption {
	return func(s *Source) {
		s.metrics = m
	}
}

// NewSource creates a Source reading from provider with the given stream
// configuration.
func NewSource(provider recog.Provider, stream recog.StreamConfig, opts ...SourceOption) *Source {
	s := &Source{
		provider:    provider,
		stream:      stream,
		maxRestarts: defaultMaxRestarts,
		backoff:     defaultRestartBackoff,
	}
	for _, o := range opts {
		o(s)
	}
	if s.metrics == nil {
		s.metrics = observe.DefaultMetrics()
	}
	return s
}

// Run feeds recognised words into sess until ctx is cancelled, the session
// completes, or the stream fails past the restart budget. Transient
// recogniser hiccups (no speech detected, clean aborts) never consume the
// budget. Run returns nil on orderly shutdown.
func (s *Source) Run(ctx context.Context, sess *Session) error {
	restarts := 0

	for {
		err := s.pump(ctx, sess)
		switch {
		case err == nil:
			// Stream ended cleanly mid-session; reopen without
			// touching the budget.
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil
		case recog.IsTransient(err):
			slog.Debug("recogniser stream interrupted", "error", err)
		default:
			restarts++
			s.metrics.RecordSourceError(ctx)
			if restarts > s.maxRestarts {
				return fmt.Errorf("recogniser stream failed after %d restarts: %w", s.maxRestarts, err)
			}
			slog.Warn("recogniser stream failed, restarting",
				"attempt", restarts,
				"max", s.maxRestarts,
				"error", err,
			)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-sess.Done():
			return nil
		case <-time.After(s.backoff):
		}
	}
}

// pump opens one stream and drains it into sess. It returns the stream's
// terminal error, or nil if the stream ended without one.
func (s *Source) pump(ctx context.Context, sess *Session) error {
	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	handle, err := s.provider.StartStream(streamCtx, s.stream)
	if err != nil {
		return fmt.Errorf("starting recogniser stream: %w", err)
	}

	// Close the stream as soon as the session has its final log or the
	// context ends; closing unblocks the results range below.
	go func() {
		select {
		case <-sess.Done():
			cancel()
		case <-streamCtx.Done():
		}
		handle.Close()
	}()

	if s.audio != nil {
		go feedAudio(s.audio, handle)
	}

	filter := &deltaFilter{}
	for result := range handle.Results() {
		sess.Push(filter.delta(result))
	}
	return handle.Err()
}

// feedAudio copies raw audio chunks into the stream until the reader or the
// stream gives out.
func feedAudio(r io.Reader, handle recog.SessionHandle) {
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if serr := handle.SendAudio(buf[:n]); serr != nil {
				return
			}
		}
		if err != nil {
			return
		}
	}
}

