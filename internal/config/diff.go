package config

// ConfigDiff describes what changed between two configs.
// Only fields that can be safely hot-reloaded are tracked: log verbosity
// applies immediately, engine and locale settings apply to the next session.
type ConfigDiff struct {
	LogLevelChanged bool
	NewLogLevel     LogLevel

	// EngineChanged is true when the resolved alignment settings differ.
	EngineChanged bool

	// LocaleChanged is true when the language tag or its overrides differ.
	LocaleChanged bool
}

// Diff compares old and new configs and returns what changed.
// Only tracks changes that are safe to apply without restart; recogniser
// backend and server address changes require one.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}

	if old.Engine.Resolve() != new.Engine.Resolve() {
		d.EngineChanged = true
	}

	if old.Locale.Tag != new.Locale.Tag || !equalOverrides(old.Locale.Overrides, new.Locale.Overrides) {
		d.LocaleChanged = true
	}

	return d
}

func equalOverrides(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}
