package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel defines the logging level
type LogLevel zapcore.Level

const (
	DEBUG LogLevel = LogLevel(zapcore.DebugLevel)
	INFO  LogLevel = LogLevel(zapcore.InfoLevel)
	WARN  LogLevel = LogLevel(zapcore.WarnLevel)
	ERROR LogLevel = LogLevel(zapcore.ErrorLevel)
	FATAL LogLevel = LogLevel(zapcore.FatalLevel)
)

// NewLogger creates a production zap logger at the given level.
func NewLogger(level LogLevel, serviceName string) *zap.Logger {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapcore.Level(level))
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	if serviceName != "" {
		logger = logger.With(zap.String("service", serviceName))
	}
	return logger
}

// Init installs the logger as the zap global, so packages can reach it via
// zap.S()/zap.L(). Returns the undo function for tests.
func Init(level LogLevel, serviceName string) func() {
	return zap.ReplaceGlobals(NewLogger(level, serviceName))
}
