package speech

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
)

// ESpeak speaks through the espeak-ng command line tool.
type ESpeak struct {
	binary string
	logger *slog.Logger
}

// NewESpeak returns an engine running binary, "espeak-ng" when empty.
func NewESpeak(binary string, logger *slog.Logger) (*ESpeak, error) {
	if binary == "" {
		binary = "espeak-ng"
	}

	path, err := exec.LookPath(binary)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBinaryNotFound, binary)
	}

	return &ESpeak{binary: path, logger: logger}, nil
}

// Name returns "espeak".
func (e *ESpeak) Name() string { return "espeak" }

// Speak runs espeak-ng on u and blocks until it exits or ctx is cancelled.
func (e *ESpeak) Speak(ctx context.Context, u Utterance) error {
	if strings.TrimSpace(u.Text) == "" {
		return ErrEmptyText
	}

	args := espeakArgs(u)
	e.logger.Debug("running espeak", "args", args, "text_length", len(u.Text))

	cmd := exec.CommandContext(ctx, e.binary, args...)
	cmd.Stdin = strings.NewReader(u.Text)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		e.logger.Error("espeak failed", "error", err, "stderr", stderr.String())
		return fmt.Errorf("%w: %v", ErrSpeechFailed, err)
	}
	return nil
}

func espeakArgs(u Utterance) []string {
	var args []string

	voice := u.Voice
	if voice == "" {
		voice = u.Language
	}
	if voice != "" {
		args = append(args, "-v", voice)
	}
	if u.Rate > 0 {
		args = append(args, "-s", strconv.Itoa(u.Rate))
	}
	if u.Pitch > 0 {
		args = append(args, "-p", strconv.Itoa(u.Pitch))
	}
	return append(args, "--stdin")
}

// Voices lists the voices reported by espeak-ng --voices.
func (e *ESpeak) Voices(ctx context.Context) ([]Voice, error) {
	out, err := exec.CommandContext(ctx, e.binary, "--voices").Output()
	if err != nil {
		return nil, fmt.Errorf("failed to list espeak voices: %w", err)
	}
	return parseESpeakVoices(out), nil
}

// parseESpeakVoices reads the table printed by espeak-ng --voices:
//
//	Pty Language       Age/Gender VoiceName          File                 Other Languages
//	 5  en-gb           --/M      English_(Great_Britain) gmw/en
func parseESpeakVoices(out []byte) []Voice {
	var voices []Voice

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 || fields[0] == "Pty" {
			continue
		}

		gender := ""
		if _, g, ok := strings.Cut(fields[2], "/"); ok {
			switch g {
			case "M":
				gender = "male"
			case "F":
				gender = "female"
			}
		}

		voices = append(voices, Voice{
			ID:       fields[1],
			Name:     strings.ReplaceAll(fields[3], "_", " "),
			Language: fields[1],
			Gender:   gender,
			Quality:  "default",
		})
	}
	return voices
}
