package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/Ebbbabebba/sermable/internal/align"
	"github.com/Ebbbabebba/sermable/internal/config"
	"github.com/Ebbbabebba/sermable/pkg/recog"
	recogmock "github.com/Ebbbabebba/sermable/pkg/recog/mock"
)

func TestEngineConfig_ResolveDefaultsToPractice(t *testing.T) {
	t.Parallel()
	got := config.EngineConfig{}.Resolve()
	if got != align.DefaultConfig() {
		t.Errorf("empty engine config resolved to %+v, want defaults", got)
	}
}

func TestEngineConfig_ResolvePresets(t *testing.T) {
	t.Parallel()
	tests := []struct {
		preset        config.Preset
		wantThreshold float64
		wantTryAfter  time.Duration
	}{
		{config.PresetPractice, 0.5, 1500 * time.Millisecond},
		{config.PresetPresentation, 0.45, 1 * time.Second},
		{config.PresetQuickrun, 0.5, 1 * time.Second},
	}
	for _, tc := range tests {
		t.Run(string(tc.preset), func(t *testing.T) {
			got := config.EngineConfig{Preset: tc.preset}.Resolve()
			if got.MatchThreshold != tc.wantThreshold {
				t.Errorf("threshold = %v, want %v", got.MatchThreshold, tc.wantThreshold)
			}
			if got.TryAfter != tc.wantTryAfter {
				t.Errorf("try_after = %v, want %v", got.TryAfter, tc.wantTryAfter)
			}
		})
	}
}

func TestEngineConfig_OverridesBeatPreset(t *testing.T) {
	t.Parallel()
	e := config.EngineConfig{
		Preset:         config.PresetQuickrun,
		MatchThreshold: 0.7,
		TryAfter:       config.Duration(2 * time.Second),
	}
	got := e.Resolve()
	if got.MatchThreshold != 0.7 {
		t.Errorf("threshold = %v, want override 0.7", got.MatchThreshold)
	}
	if got.TryAfter != 2*time.Second {
		t.Errorf("try_after = %v, want override 2s", got.TryAfter)
	}
	// Untouched preset values survive.
	if got.TickInterval != 100*time.Millisecond {
		t.Errorf("tick_interval = %v, want quickrun 100ms", got.TickInterval)
	}
}

func TestRegistry_CreateRegistered(t *testing.T) {
	t.Parallel()
	reg := config.NewRegistry()
	reg.Register("mock", func(entry config.RecognizerConfig) (recog.Provider, error) {
		return &recogmock.Provider{}, nil
	})

	p, err := reg.Create(config.RecognizerConfig{Name: "mock"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p == nil {
		t.Fatal("Create returned nil provider")
	}
}

func TestRegistry_CreateUnregistered(t *testing.T) {
	t.Parallel()
	reg := config.NewRegistry()
	_, err := reg.Create(config.RecognizerConfig{Name: "ghost"})
	if !errors.Is(err, config.ErrRecognizerNotRegistered) {
		t.Errorf("error = %v, want ErrRecognizerNotRegistered", err)
	}
}
