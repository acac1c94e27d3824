package speech

import (
	"context"
	"strings"
	"time"
)

// DefaultSilentWPM is the reading speed of the silent engine.
const DefaultSilentWPM = 300

// Silent pretends to speak by waiting as long as reading the text would
// take. It stands in when no platform engine is installed. It always reads
// at its own rate; Utterance.Rate is ignored.
type Silent struct {
	wpm int
}

// NewSilent returns a silent engine reading at wpm words per minute.
func NewSilent(wpm int) *Silent {
	if wpm <= 0 {
		wpm = DefaultSilentWPM
	}
	return &Silent{wpm: wpm}
}

// Name returns "silent".
func (s *Silent) Name() string { return "silent" }

// Speak waits for the reading time of u.Text or until ctx is done.
func (s *Silent) Speak(ctx context.Context, u Utterance) error {
	if strings.TrimSpace(u.Text) == "" {
		return ErrEmptyText
	}

	timer := time.NewTimer(Duration(u.Text, s.wpm))
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Voices returns the single silent voice.
func (s *Silent) Voices(context.Context) ([]Voice, error) {
	return []Voice{{ID: "silent", Name: "Silent", Quality: "default"}}, nil
}

// Duration returns how long reading text takes at wpm words per minute.
func Duration(text string, wpm int) time.Duration {
	if wpm <= 0 {
		wpm = DefaultSilentWPM
	}
	words := len(strings.Fields(text))
	return time.Duration(words) * time.Minute / time.Duration(wpm)
}
