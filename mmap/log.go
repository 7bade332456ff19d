package mmap

import (
	"os"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the structured logger a Manager expects: info for
// map/tile load events, warn for partial-result/out-of-nodes/shortcut
// fallbacks surfaced by callers, error for malformed tile files. When
// logPath is empty, logs go to stderr; otherwise they are rotated through
// lumberjack.
func NewLogger(logPath string) (*zap.Logger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var sink zapcore.WriteSyncer
	if logPath == "" {
		sink = zapcore.Lock(os.Stderr)
	} else {
		sink = zapcore.AddSync(&lumberjack.Logger{
			Filename:   logPath,
			MaxSize:    64, // MB
			MaxBackups: 5,
			MaxAge:     14, // days
			Compress:   true,
		})
	}

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), sink, zapcore.DebugLevel)
	return zap.New(core), nil
}
