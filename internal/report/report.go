// Package report turns a finished session's performance log into aggregate
// results and optionally persists them to PostgreSQL.
package report

import (
	"time"

	"github.com/Ebbbabebba/sermable/internal/align"
)

// Report is the full record of one recital session.
type Report struct {
	// StartedAt is when the session began.
	StartedAt time.Time

	// Duration is the total session length.
	Duration time.Duration

	// Locale is the recogniser language the session ran with.
	Locale string

	// Words is the index-complete performance log.
	Words []align.WordPerformance

	// Summary is the aggregate view of Words.
	Summary Summary
}

// New builds a Report from a finished session's log.
func New(words []align.WordPerformance, startedAt time.Time, duration time.Duration, locale string) Report {
	return Report{
		StartedAt: startedAt,
		Duration:  duration,
		Locale:    locale,
		Words:     words,
		Summary:   Summarize(words),
	}
}
