package logger

import "go.temporal.io/sdk/log"

// temporalLogger routes the temporal sdk's key/value logging into zap. The sdk
// tags workflow and activity lines with With, so those fields ride along on
// every entry of a workflow run.
type temporalLogger struct {
	logger *Logger
}

var (
	_ log.Logger     = (*temporalLogger)(nil)
	_ log.WithLogger = (*temporalLogger)(nil)
)

// GetTemporalLogger returns the logger handed to the temporal client and worker
func (l *Logger) GetTemporalLogger() log.Logger {
	return &temporalLogger{logger: &Logger{SugaredLogger: l.With("component", "temporal")}}
}

func (t *temporalLogger) Debug(msg string, keyvals ...interface{}) {
	t.logger.Debugw(msg, keyvals...)
}

func (t *temporalLogger) Info(msg string, keyvals ...interface{}) {
	t.logger.Infow(msg, keyvals...)
}

func (t *temporalLogger) Warn(msg string, keyvals ...interface{}) {
	t.logger.Warnw(msg, keyvals...)
}

func (t *temporalLogger) Error(msg string, keyvals ...interface{}) {
	t.logger.Errorw(msg, keyvals...)
}

func (t *temporalLogger) With(keyvals ...interface{}) log.Logger {
	return &temporalLogger{logger: &Logger{SugaredLogger: t.logger.With(keyvals...)}}
}
