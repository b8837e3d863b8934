// Package logging builds the zap logger used by the CLI and its libraries.
package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects the level and encoding. Debug forces the debug level.
type Config struct {
	Level    string
	Encoding string
	Debug    bool
}

// New builds a logger writing to w, or stderr when w is nil.
// Unknown levels fall back to warn so normal output stays clean.
func New(cfg Config, w io.Writer) *zap.Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	level := zapcore.WarnLevel
	if cfg.Level != "" {
		if err := level.Set(cfg.Level); err != nil {
			level = zapcore.WarnLevel
		}
	}
	if cfg.Debug {
		level = zapcore.DebugLevel
	}

	var encoder zapcore.Encoder
	switch cfg.Encoding {
	case "json":
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	default:
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	}

	var sink zapcore.WriteSyncer
	if w == nil {
		sink = zapcore.Lock(os.Stderr)
	} else {
		sink = zapcore.AddSync(w)
	}

	return zap.New(zapcore.NewCore(encoder, sink, level))
}
