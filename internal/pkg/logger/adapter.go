package logger

// Adapter exposes one LoggerManager as the small Debugf/Infof/Warnf
// interfaces that internal/replay and internal/sampler depend on, so those
// packages never need to import logrus or this package's global state
// directly.
type Adapter struct {
	lm *LoggerManager
}

func NewAdapter(lm *LoggerManager) Adapter {
	return Adapter{lm: lm}
}

func (a Adapter) Debugf(format string, args ...interface{}) {
	if a.lm != nil {
		a.lm.GetLogger().Debugf(format, args...)
	}
}

func (a Adapter) Infof(format string, args ...interface{}) {
	if a.lm != nil {
		a.lm.GetLogger().Infof(format, args...)
	}
}

func (a Adapter) Warnf(format string, args ...interface{}) {
	if a.lm != nil {
		a.lm.GetLogger().Warnf(format, args...)
	}
}
