// Package mock provides test doubles for the recog package interfaces.
//
// Use Provider to verify that the caller starts streams with the expected
// StreamConfig and to script how many StartStream attempts fail before one
// succeeds. Use Session to feed controlled Result values and inspect which
// audio chunks were delivered.
package mock

import (
	"context"
	"sync"

	"github.com/Ebbbabebba/sermable/pkg/recog"
)

// StartStreamCall records a single invocation of Provider.StartStream.
type StartStreamCall struct {
	// Ctx is the context passed to StartStream.
	Ctx context.Context
	// Cfg is the StreamConfig passed to StartStream.
	Cfg recog.StreamConfig
}

// Provider is a mock implementation of recog.Provider.
type Provider struct {
	mu sync.Mutex

	// Sessions are returned by successive StartStream calls, in order. When
	// exhausted (or empty), StartStream returns a fresh default Session.
	Sessions []recog.SessionHandle

	// FailFirst makes the first N StartStream calls return StartStreamErr
	// before any Session is handed out. Used to exercise restart logic.
	FailFirst int

	// StartStreamErr is the error returned while failing. When nil, a
	// generic error is used.
	StartStreamErr error

	// StartStreamCalls records every call to StartStream.
	StartStreamCalls []StartStreamCall

	handed int
	failed int
}

// StartStream records the call and returns the next scripted session.
func (p *Provider) StartStream(ctx context.Context, cfg recog.StreamConfig) (recog.SessionHandle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.StartStreamCalls = append(p.StartStreamCalls, StartStreamCall{Ctx: ctx, Cfg: cfg})

	if p.failed < p.FailFirst {
		p.failed++
		if p.StartStreamErr != nil {
			return nil, p.StartStreamErr
		}
		return nil, recog.ErrAborted
	}

	if p.handed < len(p.Sessions) {
		s := p.Sessions[p.handed]
		p.handed++
		return s, nil
	}
	return NewSession(), nil
}

// CallCount returns the number of StartStream calls. Thread-safe.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.StartStreamCalls)
}

var _ recog.Provider = (*Provider)(nil)

// Session is a mock implementation of recog.SessionHandle. Tests push Result
// values with [Session.Emit] and end the stream with [Session.End].
type Session struct {
	mu sync.Mutex

	// SendAudioErr, if non-nil, is returned by every SendAudio call.
	SendAudioErr error

	// SendAudioCalls records a copy of every chunk passed to SendAudio.
	SendAudioCalls [][]byte

	// CloseCallCount is the number of times Close was called.
	CloseCallCount int

	results chan recog.Result
	endOnce sync.Once
	err     error
}

// NewSession returns a Session with a buffered results channel.
func NewSession() *Session {
	return &Session{results: make(chan recog.Result, 32)}
}

// Emit pushes a result to the consumer. Must not be called after End.
func (s *Session) Emit(r recog.Result) {
	s.results <- r
}

// End closes the results channel with the given terminal error (nil for a
// clean end). Safe to call multiple times; only the first has effect.
func (s *Session) End(err error) {
	s.endOnce.Do(func() {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		close(s.results)
	})
}

// SendAudio records the call and returns SendAudioErr.
func (s *Session) SendAudio(chunk []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(chunk))
	copy(cp, chunk)
	s.SendAudioCalls = append(s.SendAudioCalls, cp)
	return s.SendAudioErr
}

// Results returns the scripted result channel.
func (s *Session) Results() <-chan recog.Result { return s.results }

// Err returns the terminal error set by End.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close records the call and ends the stream cleanly.
func (s *Session) Close() error {
	s.mu.Lock()
	s.CloseCallCount++
	s.mu.Unlock()
	s.End(nil)
	return nil
}

var _ recog.SessionHandle = (*Session)(nil)
