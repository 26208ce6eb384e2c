package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"agentic/config"
)

// New returns a file-backed logger. The TUI owns stdout, so diagnostics go
// to ~/.config/agentic/logs/agentic.log. Falls back to a nop logger when the
// log file cannot be opened; logging must never take the app down.
func New() *zap.Logger {
	logFile, err := config.GetLogFile()
	if err != nil {
		return zap.NewNop()
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return zap.NewNop()
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.AddSync(f),
		zapcore.InfoLevel,
	)

	return zap.New(core)
}
