package speech

import (
	"fmt"
	"log/slog"
	"runtime"
)

// Engine names accepted by Discover.
const (
	EngineAuto   = "auto"
	EngineESpeak = "espeak"
	EngineSay    = "say"
	EngineSilent = "silent"
)

// DiscoverOptions selects and configures the engines.
type DiscoverOptions struct {
	// Engine is the preferred engine name, EngineAuto to pick the best
	// installed one.
	Engine     string
	ESpeakPath string
	SayPath    string
	SilentWPM  int
}

// Discover registers every engine installed on this machine plus the
// silent engine, and makes the preferred one the default.
func Discover(opts DiscoverOptions, logger *slog.Logger) (*Registry, error) {
	reg := NewRegistry()

	if runtime.GOOS == "darwin" {
		if say, err := NewSay(opts.SayPath, logger); err == nil {
			reg.Register(say)
		} else {
			logger.Debug("say not available", "error", err)
		}
	}

	if es, err := NewESpeak(opts.ESpeakPath, logger); err == nil {
		reg.Register(es)
	} else {
		logger.Debug("espeak not available", "error", err)
	}

	reg.Register(NewSilent(opts.SilentWPM))

	if opts.Engine != "" && opts.Engine != EngineAuto {
		if err := reg.SetDefault(opts.Engine); err != nil {
			return nil, fmt.Errorf("%w: %s (available: %v)", err, opts.Engine, reg.List())
		}
	}

	def, _ := reg.Default()
	logger.Info("speech engines discovered", "engines", reg.List(), "default", def.Name())
	return reg, nil
}
