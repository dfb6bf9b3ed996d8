package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// ValidRecognizerNames lists known recogniser backend names. Used by
// [Validate] to warn about unrecognised names.
var ValidRecognizerNames = []string{"deepgram", "mock"}

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	// Recogniser name validation — warn for unknown names.
	validateRecognizerName(cfg.Recognizer.Name)
	if cfg.Recognizer.SampleRate < 0 {
		errs = append(errs, fmt.Errorf("recognizer.sample_rate %d is negative", cfg.Recognizer.SampleRate))
	}

	// Engine
	e := cfg.Engine
	if e.Preset != "" && !e.Preset.IsValid() {
		errs = append(errs, fmt.Errorf("engine.preset %q is invalid; valid values: practice, presentation, quickrun", e.Preset))
	}
	if e.MatchThreshold < 0 || e.MatchThreshold > 1 {
		errs = append(errs, fmt.Errorf("engine.match_threshold %.2f is out of range (0, 1]", e.MatchThreshold))
	}
	if e.Lookahead < 0 {
		errs = append(errs, fmt.Errorf("engine.lookahead %d is negative", e.Lookahead))
	}
	for _, d := range []struct {
		name  string
		value Duration
	}{
		{"engine.hesitation_timeout", e.HesitationTimeout},
		{"engine.try_after", e.TryAfter},
		{"engine.reveal_after_thinking", e.RevealAfterThinking},
		{"engine.reveal_after_failing", e.RevealAfterFailing},
		{"engine.tick_interval", e.TickInterval},
	} {
		if d.value < 0 {
			errs = append(errs, fmt.Errorf("%s %s is negative", d.name, d.value.Std()))
		}
	}

	// Locale overrides must map bare tags to regioned tags.
	for from, to := range cfg.Locale.Overrides {
		if from == "" || to == "" {
			errs = append(errs, fmt.Errorf("locale.overrides: empty mapping %q -> %q", from, to))
		}
	}

	// Persistence availability
	if cfg.Store.PostgresDSN == "" {
		slog.Debug("store.postgres_dsn is empty; session reports will not be persisted")
	}

	return errors.Join(errs...)
}

// validateRecognizerName logs a warning if name is non-empty and not found in
// [ValidRecognizerNames].
func validateRecognizerName(name string) {
	if name == "" {
		return
	}
	if slices.Contains(ValidRecognizerNames, name) {
		return
	}
	slog.Warn("unknown recogniser name — may be a typo or third-party backend",
		"name", name,
		"known", ValidRecognizerNames,
	)
}
