package testutil

import (
	"docsync-be/internal/pkg/logger"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// NewObservedLogger records every entry at Debug and above.
func NewObservedLogger() (logger.ILogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return logger.NewFromZap(zap.New(core)), logs
}

func NopLogger() logger.ILogger {
	return logger.NewNop()
}
