package pipeline

import "github.com/sirupsen/logrus"

// LogEvent writes a progress event to logger at the matching level.
func LogEvent(logger logrus.FieldLogger, event ProgressEvent) {
	entry := logger.WithField("stage", event.Stage.String())
	if event.RunID != "" {
		entry = entry.WithField("run", event.RunID)
	}
	switch event.Level {
	case LevelVerbose:
		entry.Debug(event.Message)
	case LevelWarning:
		entry.Warn(event.Message)
	case LevelError:
		entry.Error(event.Message)
	default:
		entry.Info(event.Message)
	}
}
