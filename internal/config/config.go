// Package config provides the configuration schema, loader, and recogniser
// registry for the Sermable recital coach.
package config

import (
	"fmt"
	"time"

	"github.com/Ebbbabebba/sermable/internal/align"
)

// LogLevel controls log verbosity for the Sermable server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Preset selects a named bundle of alignment and hint timings.
type Preset string

const (
	// PresetPractice is the default: balanced timings for memorisation
	// practice.
	PresetPractice Preset = "practice"

	// PresetPresentation reveals prompts quickly and matches leniently;
	// meant for live delivery where stalling is worse than peeking.
	PresetPresentation Preset = "presentation"

	// PresetQuickrun tightens every timeout for rapid drill runs.
	PresetQuickrun Preset = "quickrun"
)

// IsValid reports whether p is a recognised preset.
func (p Preset) IsValid() bool {
	switch p {
	case PresetPractice, PresetPresentation, PresetQuickrun:
		return true
	}
	return false
}

// Duration wraps [time.Duration] with YAML unmarshalling from strings like
// "1500ms" or "2s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns d as a [time.Duration].
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the root configuration structure for Sermable.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Recognizer RecognizerConfig `yaml:"recognizer"`
	Engine     EngineConfig     `yaml:"engine"`
	Locale     LocaleConfig     `yaml:"locale"`
	Store      StoreConfig      `yaml:"store"`
}

// ServerConfig holds network and logging settings for the Sermable server.
type ServerConfig struct {
	// ListenAddr is the TCP address the health and metrics endpoints
	// listen on (e.g., ":8080"). Empty disables the HTTP server.
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// RecognizerConfig selects and configures the speech recogniser backend.
type RecognizerConfig struct {
	// Name is the recogniser backend, registered in the [Registry]
	// (e.g., "deepgram", "mock").
	Name string `yaml:"name"`

	// APIKey authenticates against the backend.
	APIKey string `yaml:"api_key"`

	// Model is the backend-specific model identifier.
	Model string `yaml:"model"`

	// SampleRate is the audio sample rate in Hz. Zero uses the backend
	// default.
	SampleRate int `yaml:"sample_rate"`
}

// EngineConfig tunes the alignment engine. A preset supplies the baseline;
// any non-zero field overrides it.
type EngineConfig struct {
	Preset Preset `yaml:"preset"`

	// MatchThreshold is the minimum similarity for a token to count as
	// the expected word, in (0, 1].
	MatchThreshold float64 `yaml:"match_threshold"`

	// Lookahead is how many upcoming words are searched when the expected
	// word does not match.
	Lookahead int `yaml:"lookahead"`

	// HesitationTimeout is how long a word may take before a match is
	// classified as hesitated.
	HesitationTimeout Duration `yaml:"hesitation_timeout"`

	// TryAfter is the silence before the "try to recall" prompt.
	TryAfter Duration `yaml:"try_after"`

	// RevealAfterThinking is the further silence before the word is
	// revealed when the speaker has made no attempt.
	RevealAfterThinking Duration `yaml:"reveal_after_thinking"`

	// RevealAfterFailing is the further silence before the word is
	// revealed when the speaker has tried and missed.
	RevealAfterFailing Duration `yaml:"reveal_after_failing"`

	// TickInterval is the hint scheduler resolution.
	TickInterval Duration `yaml:"tick_interval"`
}

// LocaleConfig selects the recogniser language.
type LocaleConfig struct {
	// Tag is a language tag, either bare ("sv") or regioned ("sv-SE").
	Tag string `yaml:"tag"`

	// Overrides maps bare language tags to full locale tags, replacing
	// the built-in table entries.
	Overrides map[string]string `yaml:"overrides"`
}

// StoreConfig configures optional persistence of session reports.
type StoreConfig struct {
	// PostgresDSN is the connection string for the report store. Empty
	// disables persistence.
	PostgresDSN string `yaml:"postgres_dsn"`

	// FilePath, when set, appends each session summary as a JSON line to
	// the given file. Works with or without PostgresDSN.
	FilePath string `yaml:"file_path"`
}

// presetBase returns the alignment baseline for p. Unknown presets fall back
// to practice; [Validate] rejects them before this is reached.
func presetBase(p Preset) align.Config {
	cfg := align.DefaultConfig()
	switch p {
	case PresetPresentation:
		cfg.MatchThreshold = 0.45
		cfg.TryAfter = 1 * time.Second
		cfg.RevealAfterThinking = 2 * time.Second
		cfg.RevealAfterFailing = 800 * time.Millisecond
	case PresetQuickrun:
		cfg.HesitationTimeout = 1500 * time.Millisecond
		cfg.TryAfter = 1 * time.Second
		cfg.RevealAfterThinking = 1500 * time.Millisecond
		cfg.RevealAfterFailing = 700 * time.Millisecond
		cfg.TickInterval = 100 * time.Millisecond
	}
	return cfg
}

// Resolve materialises the engine settings: preset baseline with non-zero
// overrides applied on top.
func (e EngineConfig) Resolve() align.Config {
	cfg := presetBase(e.Preset)
	if e.MatchThreshold != 0 {
		cfg.MatchThreshold = e.MatchThreshold
	}
	if e.Lookahead != 0 {
		cfg.Lookahead = e.Lookahead
	}
	if e.HesitationTimeout != 0 {
		cfg.HesitationTimeout = e.HesitationTimeout.Std()
	}
	if e.TryAfter != 0 {
		cfg.TryAfter = e.TryAfter.Std()
	}
	if e.RevealAfterThinking != 0 {
		cfg.RevealAfterThinking = e.RevealAfterThinking.Std()
	}
	if e.RevealAfterFailing != 0 {
		cfg.RevealAfterFailing = e.RevealAfterFailing.Std()
	}
	if e.TickInterval != 0 {
		cfg.TickInterval = e.TickInterval.Std()
	}
	return cfg
}
