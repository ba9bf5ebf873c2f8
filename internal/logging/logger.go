package logging

import (
	"sync/atomic"

	"github.com/EzhovAndrew/zulu/internal/configuration"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// globalLogger is swapped by Init while connection goroutines may be logging.
var globalLogger atomic.Pointer[zap.Logger]

func init() {
	globalLogger.Store(zap.NewNop())
}

func Init(cfg *configuration.LoggingConfig) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	cfgEncoder := zap.NewProductionEncoderConfig()
	cfgEncoder.TimeKey = "timestamp"
	cfgEncoder.EncodeTime = zapcore.ISO8601TimeEncoder
	cfgEncoder.EncodeLevel = zapcore.CapitalColorLevelEncoder

	if cfg.Output == "" {
		cfg.Output = "stdout"
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    cfgEncoder,
		OutputPaths:      []string{cfg.Output},
		ErrorOutputPaths: []string{cfg.Output},
		DisableCaller:    true,
	}

	logger, err := config.Build()
	if err != nil {
		panic(err)
	}
	globalLogger.Store(logger)
}

// LevelForVerbosity maps a repeated -v count onto a zap level name.
func LevelForVerbosity(verbosity int) string {
	switch {
	case verbosity <= 0:
		return zapcore.WarnLevel.String()
	case verbosity == 1:
		return zapcore.InfoLevel.String()
	default:
		return zapcore.DebugLevel.String()
	}
}

func Sync() {
	_ = globalLogger.Load().Sync()
}

func Debug(msg string, fields ...zapcore.Field) {
	globalLogger.Load().Debug(msg, fields...)
}

func Info(msg string, fields ...zapcore.Field) {
	globalLogger.Load().Info(msg, fields...)
}

func Warn(msg string, fields ...zapcore.Field) {
	globalLogger.Load().Warn(msg, fields...)
}

func Error(msg string, fields ...zapcore.Field) {
	globalLogger.Load().Error(msg, fields...)
}

func Fatal(msg string, fields ...zapcore.Field) {
	globalLogger.Load().Fatal(msg, fields...)
}
