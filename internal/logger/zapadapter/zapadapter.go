// Package zapadapter binds the zap + lumberjack logging stack to the
// internal/logger.Logger interface, grounded on the teacher's
// internal/logger/zap package (referenced from cmd/node/main.go as
// zapfactory.New / zapfactory.NewZapAdapter, not itself retrieved —
// rebuilt here in the same shape: a factory that builds a *zap.Logger
// from config, and an adapter satisfying logger.Logger).
package zapadapter

import (
	"os"

	"chordring/internal/config"
	"chordring/internal/logger"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// New builds a *zap.Logger from a LoggerConfig: console encoding to
// stdout when no file path is set, JSON lines rotated by lumberjack
// when one is.
func New(cfg config.LoggerConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	var core zapcore.Core
	if cfg.FilePath == "" {
		encoderCfg := zap.NewDevelopmentEncoderConfig()
		core = zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.Lock(zapcore.AddSync(os.Stdout)), level)
	} else {
		encoderCfg := zap.NewProductionEncoderConfig()
		writer := &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		core = zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(writer), level)
	}

	return zap.New(core, zap.AddCaller()), nil
}

// NewZapAdapter wraps an existing *zap.Logger as a logger.Logger.
func NewZapAdapter(z *zap.Logger) logger.Logger {
	return &adapter{z: z}
}

type adapter struct {
	z *zap.Logger
}

func (a *adapter) Debug(msg string, fields ...logger.Field) { a.z.Debug(msg, toZap(fields)...) }
func (a *adapter) Info(msg string, fields ...logger.Field)  { a.z.Info(msg, toZap(fields)...) }
func (a *adapter) Warn(msg string, fields ...logger.Field)  { a.z.Warn(msg, toZap(fields)...) }
func (a *adapter) Error(msg string, fields ...logger.Field) { a.z.Error(msg, toZap(fields)...) }

func (a *adapter) Named(name string) logger.Logger {
	return &adapter{z: a.z.Named(name)}
}

func (a *adapter) With(fields ...logger.Field) logger.Logger {
	return &adapter{z: a.z.With(toZap(fields)...)}
}

func toZap(fields []logger.Field) []zap.Field {
	out := make([]zap.Field, len(fields))
	for i, f := range fields {
		out[i] = zap.Any(f.Key, f.Value)
	}
	return out
}
