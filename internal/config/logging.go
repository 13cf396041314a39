package config

import (
	"io"
	"os"
	"path/filepath"

	ioutils "github.com/handiism/trackid-scraper/internal/io"
	"github.com/luci/go-render/render"
	"github.com/sirupsen/logrus"
)

// SetupLogger configures a logrus logger writing to the log file and,
// when console is true, to stderr.
//
// The returned closer releases the log file and is never nil.
func SetupLogger(cfg LogSettings, console bool) (*logrus.Logger, io.Closer, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	level := cfg.Level
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, nopCloser{}, err
	}
	logger.SetLevel(lvl)

	var writers []io.Writer
	if console {
		writers = append(writers, os.Stderr)
	}

	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		absDest, err := filepath.Abs(cfg.File)
		if err != nil {
			return nil, closer, err
		}
		if err := ioutils.EnsureParentDir(absDest); err != nil {
			return nil, closer, err
		}
		out, err := os.OpenFile(absDest, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, closer, err
		}
		writers = append(writers, out)
		closer = out
	}

	switch len(writers) {
	case 0:
		logger.SetOutput(io.Discard)
	case 1:
		logger.SetOutput(writers[0])
	default:
		logger.SetOutput(io.MultiWriter(writers...))
	}

	return logger, closer, nil
}

// LogTo writes the effective settings to the logger at info level.
func (s *Settings) LogTo(logger logrus.FieldLogger) {
	redacted := s.Redacted()
	logger.Info("Config loaded: ", render.Render(redacted))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
