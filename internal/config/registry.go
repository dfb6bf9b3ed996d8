package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Ebbbabebba/sermable/pkg/recog"
)

// ErrRecognizerNotRegistered is returned by [Registry.Create] when no factory
// has been registered under the requested backend name.
var ErrRecognizerNotRegistered = errors.New("config: recognizer not registered")

// RecognizerFactory builds a recogniser provider from its configuration.
type RecognizerFactory func(RecognizerConfig) (recog.Provider, error)

// Registry maps recogniser backend names to their constructor functions.
// It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]RecognizerFactory
}

// NewRegistry returns an empty, ready-to-use [Registry].
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]RecognizerFactory)}
}

// Register registers a recogniser factory under name.
// Subsequent calls with the same name overwrite the previous registration.
func (r *Registry) Register(name string, factory RecognizerFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Create instantiates a recogniser using the factory registered under
// entry.Name. Returns [ErrRecognizerNotRegistered] if no factory has been
// registered for that name.
func (r *Registry) Create(entry RecognizerConfig) (recog.Provider, error) {
	r.mu.RLock()
	factory, ok := r.factories[entry.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrRecognizerNotRegistered, entry.Name)
	}
	return factory(entry)
}
