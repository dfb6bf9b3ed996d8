package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/Ebbbabebba/sermable/internal/align"
)

// Summary aggregates a performance log into the numbers shown to the speaker
// after a session.
type Summary struct {
	Total     int
	Correct   int
	Hesitated int
	Skipped   int
	Missed    int

	// Prompted is how many words were spoken only after being revealed.
	Prompted int

	// WrongAttempts is the total count of non-matching words spoken while
	// working towards resolved words.
	WrongAttempts int

	// Accuracy is the share of words that were actually spoken (correct or
	// hesitated), in [0, 1].
	Accuracy float64

	// MeanTimeToSpeak averages the time-to-speak over spoken words with a
	// recorded timing.
	MeanTimeToSpeak time.Duration

	// DeliveryScore is a single [0, 1] figure for the run: full credit for
	// fluent words, partial credit for hesitated ones, none for skipped or
	// missed, with a deduction for how much prompting was needed.
	DeliveryScore float64
}

// hesitatedCredit is the partial credit a hesitated word earns towards the
// delivery score.
const hesitatedCredit = 0.6

// promptPenalty scales the delivery score deduction by the share of words
// that needed a reveal.
const promptPenalty = 0.2

// Summarize computes a [Summary] over an index-complete performance log.
func Summarize(words []align.WordPerformance) Summary {
	s := Summary{Total: len(words)}
	if s.Total == 0 {
		return s
	}

	var timed int
	var timedSum time.Duration
	for _, w := range words {
		switch w.Status {
		case align.StatusCorrect:
			s.Correct++
		case align.StatusHesitated:
			s.Hesitated++
		case align.StatusSkipped:
			s.Skipped++
		case align.StatusMissed:
			s.Missed++
		}
		if w.Prompted {
			s.Prompted++
		}
		s.WrongAttempts += len(w.WrongAttempts)
		if spoken(w.Status) && w.TimeToSpeak > 0 {
			timed++
			timedSum += w.TimeToSpeak
		}
	}

	total := float64(s.Total)
	s.Accuracy = float64(s.Correct+s.Hesitated) / total
	if timed > 0 {
		s.MeanTimeToSpeak = timedSum / time.Duration(timed)
	}

	score := (float64(s.Correct) + hesitatedCredit*float64(s.Hesitated)) / total
	score -= promptPenalty * float64(s.Prompted) / total
	s.DeliveryScore = max(0, min(1, score))
	return s
}

func spoken(st align.Status) bool {
	return st == align.StatusCorrect || st == align.StatusHesitated
}

// String renders the summary as a compact human-readable block.
func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "words: %d  correct: %d  hesitated: %d  skipped: %d  missed: %d\n",
		s.Total, s.Correct, s.Hesitated, s.Skipped, s.Missed)
	fmt.Fprintf(&b, "accuracy: %.0f%%  delivery score: %.0f%%", s.Accuracy*100, s.DeliveryScore*100)
	if s.Prompted > 0 {
		fmt.Fprintf(&b, "  prompts needed: %d", s.Prompted)
	}
	if s.MeanTimeToSpeak > 0 {
		fmt.Fprintf(&b, "  avg word time: %s", s.MeanTimeToSpeak.Round(10*time.Millisecond))
	}
	return b.String()
}
