// Package recog defines the Provider interface for streaming speech
// recognition backends.
//
// A recognition provider wraps a real-time transcription service and exposes
// a uniform streaming session: raw PCM audio goes in, interim and final
// [Result] values come out on a single ordered channel. The engine treats the
// provider as a black box — it never sees audio, only recognised text — so
// anything that can produce incremental transcripts can sit behind this
// interface.
//
// Interim results for one utterance may restate and extend earlier interims.
// Deduplicating that overlap is the consumer's job (see the session ingest
// layer); providers deliver results exactly as the backend produced them.
//
// Implementations must be safe for concurrent use.
package recog

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors shared by provider implementations.
var (
	// ErrSessionClosed is returned by SendAudio after Close.
	ErrSessionClosed = errors.New("recog: session is closed")

	// ErrNoSpeech signals the backend gave up because no speech was heard.
	// Transient: the stream may simply be restarted.
	ErrNoSpeech = errors.New("recog: no speech detected")

	// ErrAborted signals the stream was cancelled deliberately.
	// Transient: not a failure of the backend.
	ErrAborted = errors.New("recog: stream aborted")
)

// IsTransient reports whether err is a recognition error the integration
// layer should swallow rather than surface: the no-speech and deliberate-
// abort signals, which carry no information about backend health.
func IsTransient(err error) bool {
	return errors.Is(err, ErrNoSpeech) || errors.Is(err, ErrAborted)
}

// Result is one incremental recognition output. Interim results (IsFinal
// false) are provisional and may be restated; final results are the
// backend's committed reading of the utterance.
type Result struct {
	// Text is the recognised speech, whitespace-separated words.
	Text string

	// IsFinal marks a committed result.
	IsFinal bool

	// Confidence is the overall score in [0, 1]; zero when the backend does
	// not report one.
	Confidence float64

	// Words carries per-word detail when the backend provides it. May be nil.
	Words []WordDetail
}

// WordDetail holds per-word metadata from backends that support it.
type WordDetail struct {
	Word       string
	Start      time.Duration
	End        time.Duration
	Confidence float64
}

// KeywordBoost is a vocabulary hint passed to the backend to raise the
// recognition probability of uncommon words — in this system, the rare words
// of the reference script.
type KeywordBoost struct {
	// Keyword is the text to boost.
	Keyword string

	// Boost is the intensity on the backend's own scale.
	Boost float64
}

// StreamConfig describes the audio format and recognition hints for a new
// streaming session.
type StreamConfig struct {
	// SampleRate is the audio sample rate in Hz.
	SampleRate int

	// Channels is the number of audio channels; most backends want mono.
	Channels int

	// Locale is the full recognition locale (e.g. "en-US", "sv-SE"),
	// already resolved from the short language tag by the locale table.
	Locale string

	// Keywords lists vocabulary hints. May be empty.
	Keywords []KeywordBoost
}

// SessionHandle is an open recognition stream. Callers must Close it when the
// session ends; all methods are safe for concurrent use.
type SessionHandle interface {
	// SendAudio delivers a chunk of raw PCM bytes for transcription.
	// Returns [ErrSessionClosed] after Close.
	SendAudio(chunk []byte) error

	// Results returns the ordered stream of interim and final results.
	// The channel is closed when the stream ends, whether by Close, backend
	// shutdown, or error; consult Err afterwards.
	Results() <-chan Result

	// Err returns the terminal error of the stream, or nil after a clean
	// close. Only meaningful once Results is closed.
	Err() error

	// Close terminates the stream and releases its resources. Calling Close
	// more than once is safe and returns nil.
	Close() error
}

// Provider is the abstraction over any streaming recognition backend.
type Provider interface {
	// StartStream opens a new streaming session. The returned handle is
	// ready to accept audio immediately. The caller owns the handle and must
	// call Close when done.
	StartStream(ctx context.Context, cfg StreamConfig) (SessionHandle, error)
}
