package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/Ebbbabebba/sermable/internal/config"
)

func TestLoadFromReader_FullConfig(t *testing.T) {
	t.Parallel()
	yaml := `
server:
  listen_addr: ":8080"
  log_level: debug
recognizer:
  name: deepgram
  api_key: dg-secret
  model: nova-2
  sample_rate: 16000
engine:
  preset: practice
  match_threshold: 0.6
  hesitation_timeout: 2s
locale:
  tag: sv
  overrides:
    "no": nn-NO
store:
  postgres_dsn: "postgres://localhost/sermable"
  file_path: "sessions.jsonl"
`
	cfg, err := config.LoadFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.ListenAddr != ":8080" {
		t.Errorf("listen_addr: got %q", cfg.Server.ListenAddr)
	}
	if cfg.Recognizer.Name != "deepgram" || cfg.Recognizer.Model != "nova-2" {
		t.Errorf("recognizer: got %+v", cfg.Recognizer)
	}
	if cfg.Engine.MatchThreshold != 0.6 {
		t.Errorf("match_threshold: got %v", cfg.Engine.MatchThreshold)
	}
	if cfg.Engine.HesitationTimeout.Std() != 2*time.Second {
		t.Errorf("hesitation_timeout: got %v", cfg.Engine.HesitationTimeout.Std())
	}
	if cfg.Locale.Overrides["no"] != "nn-NO" {
		t.Errorf("locale overrides: got %v", cfg.Locale.Overrides)
	}
	if cfg.Store.FilePath != "sessions.jsonl" {
		t.Errorf("store file_path: got %q", cfg.Store.FilePath)
	}
}

func TestLoadFromReader_UnknownFieldRejected(t *testing.T) {
	t.Parallel()
	yaml := `
server:
  listen_addr: ":8080"
sirver: oops
`
	if _, err := config.LoadFromReader(strings.NewReader(yaml)); err == nil {
		t.Fatal("expected error for unknown field, got nil")
	}
}

func TestLoadFromReader_InvalidDuration(t *testing.T) {
	t.Parallel()
	yaml := `
engine:
  try_after: soonish
`
	if _, err := config.LoadFromReader(strings.NewReader(yaml)); err == nil {
		t.Fatal("expected error for invalid duration, got nil")
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	t.Parallel()
	yaml := `
server:
  log_level: bananas
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for invalid log level, got nil")
	}
	if !strings.Contains(err.Error(), "log_level") {
		t.Errorf("error does not mention log_level: %v", err)
	}
}

func TestValidate_InvalidPreset(t *testing.T) {
	t.Parallel()
	yaml := `
engine:
  preset: marathon
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for invalid preset, got nil")
	}
	if !strings.Contains(err.Error(), "preset") {
		t.Errorf("error does not mention preset: %v", err)
	}
}

func TestValidate_ThresholdOutOfRange(t *testing.T) {
	t.Parallel()
	yaml := `
engine:
  match_threshold: 1.5
`
	if _, err := config.LoadFromReader(strings.NewReader(yaml)); err == nil {
		t.Fatal("expected error for out-of-range threshold, got nil")
	}
}

func TestValidate_MultipleErrorsJoined(t *testing.T) {
	t.Parallel()
	yaml := `
server:
  log_level: shouty
engine:
  preset: marathon
  lookahead: -1
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected errors, got nil")
	}
	for _, want := range []string{"log_level", "preset", "lookahead"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("joined error missing %q: %v", want, err)
		}
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()
	if _, err := config.Load("/does/not/exist.yaml"); err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

func TestValidate_EmptyConfigIsValid(t *testing.T) {
	t.Parallel()
	cfg, err := config.LoadFromReader(strings.NewReader("{}"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Engine.Preset != "" {
		t.Errorf("preset: got %q, want empty", cfg.Engine.Preset)
	}
}
