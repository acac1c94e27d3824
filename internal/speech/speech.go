// Package speech drives the text-to-speech engines that read paragraphs
// aloud.
package speech

import (
	"context"
	"errors"
)

var (
	// ErrEngineNotFound is returned when an engine is not registered.
	ErrEngineNotFound = errors.New("speech engine not found")
	// ErrEngineExists is returned when trying to register a duplicate engine.
	ErrEngineExists = errors.New("speech engine already registered")
	// ErrBinaryNotFound is returned when an engine's executable is missing.
	ErrBinaryNotFound = errors.New("speech binary not found")
	// ErrEmptyText is returned when asked to speak nothing.
	ErrEmptyText = errors.New("empty text")
	// ErrSpeechFailed is returned when the engine exits with an error.
	ErrSpeechFailed = errors.New("speech failed")
)

// Utterance is one request to speak text.
type Utterance struct {
	Text string
	// Voice is an engine voice id. Empty picks a voice for Language.
	Voice string
	// Language is an ISO 639-1 code used when Voice is empty.
	Language string
	// Rate is in words per minute, zero for the engine default.
	Rate int
	// Pitch ranges 0-99, zero for the engine default.
	Pitch int
}

// Voice describes a voice an engine can speak with.
type Voice struct {
	ID       string
	Name     string
	Language string
	Gender   string
	// Quality is engine specific, such as "default" or "enhanced".
	Quality         string
	RequiresNetwork bool
}

// Engine speaks utterances.
type Engine interface {
	// Name returns the engine identifier.
	Name() string
	// Speak blocks until the text has been spoken. Cancelling ctx stops
	// speech and returns the context error.
	Speak(ctx context.Context, u Utterance) error
	// Voices lists the voices the engine offers.
	Voices(ctx context.Context) ([]Voice, error)
}
