package speech

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// Say speaks through the macOS say command.
type Say struct {
	binary string
	logger *slog.Logger

	mu     sync.Mutex
	voices []Voice
}

// NewSay returns an engine running binary, "say" when empty.
func NewSay(binary string, logger *slog.Logger) (*Say, error) {
	if binary == "" {
		binary = "say"
	}

	path, err := exec.LookPath(binary)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBinaryNotFound, binary)
	}

	return &Say{binary: path, logger: logger}, nil
}

// Name returns "say".
func (s *Say) Name() string { return "say" }

// Speak runs say on u and blocks until it exits or ctx is cancelled.
func (s *Say) Speak(ctx context.Context, u Utterance) error {
	if strings.TrimSpace(u.Text) == "" {
		return ErrEmptyText
	}

	if u.Voice == "" && u.Language != "" {
		if voices, err := s.Voices(ctx); err == nil {
			if v, ok := MatchVoice(voices, u.Language); ok {
				u.Voice = v.ID
			}
		}
	}

	args := sayArgs(u)
	s.logger.Debug("running say", "args", args, "text_length", len(u.Text))

	cmd := exec.CommandContext(ctx, s.binary, args...)
	cmd.Stdin = strings.NewReader(u.Text)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logger.Error("say failed", "error", err, "stderr", stderr.String())
		return fmt.Errorf("%w: %v", ErrSpeechFailed, err)
	}
	return nil
}

// sayArgs builds the arguments for say. say has no pitch flag, so Pitch is
// ignored.
func sayArgs(u Utterance) []string {
	var args []string
	if u.Voice != "" {
		args = append(args, "-v", u.Voice)
	}
	if u.Rate > 0 {
		args = append(args, "-r", strconv.Itoa(u.Rate))
	}
	return append(args, "-f", "-")
}

// Voices lists the installed voices. The list is read once and cached.
func (s *Say) Voices(ctx context.Context) ([]Voice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.voices != nil {
		return s.voices, nil
	}

	out, err := exec.CommandContext(ctx, s.binary, "-v", "?").Output()
	if err != nil {
		return nil, fmt.Errorf("failed to list say voices: %w", err)
	}
	s.voices = parseSayVoices(out)
	return s.voices, nil
}

// sayVoiceLine matches "Eddy (English (US))  en_US    # Hello! My name is Eddy."
var sayVoiceLine = regexp.MustCompile(`^(.+?)\s+([a-z]{2,3}[_-][A-Za-z0-9_]+)\s+#`)

func parseSayVoices(out []byte) []Voice {
	var voices []Voice

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		m := sayVoiceLine.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}

		name := strings.TrimSpace(m[1])
		quality := "default"
		if strings.Contains(name, "(Enhanced)") || strings.Contains(name, "(Premium)") {
			quality = "enhanced"
		}

		voices = append(voices, Voice{
			ID:       name,
			Name:     name,
			Language: strings.ReplaceAll(m[2], "_", "-"),
			Quality:  quality,
		})
	}
	return voices
}
