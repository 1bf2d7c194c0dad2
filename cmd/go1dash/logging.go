package main

import (
	"github.com/edaniels/golog"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// newFileLogger logs to a rotating file; the terminal belongs to the TUI.
func newFileLogger(path string, debug bool) (golog.Logger, func() error) {
	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     14,
	}
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}
	encCfg := golog.NewDevelopmentLoggerConfig().EncoderConfig
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encoder := zapcore.NewConsoleEncoder(encCfg)
	core := zapcore.NewCore(encoder, zapcore.AddSync(w), level)
	logger := zap.New(core).Sugar().Named("go1dash")
	return logger, func() error {
		_ = logger.Sync()
		return w.Close()
	}
}
