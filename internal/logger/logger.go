package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const app = "bidscout"

// New builds the process logger. Console output is meant for the interactive
// score command, json for serve.
func New(json bool, debug bool) (*zap.Logger, error) {
	cfg := zap.Config{
		Encoding:          encoding(json),
		Level:             zap.NewAtomicLevelAt(level(debug)),
		DisableStacktrace: !debug,
		OutputPaths:       []string{"stdout"},
		ErrorOutputPaths:  []string{"stderr"},
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey:    "step",
			LevelKey:      "level",
			TimeKey:       "time",
			CallerKey:     "caller",
			StacktraceKey: "stacktrace",
			EncodeLevel:   zapcore.LowercaseLevelEncoder,
			EncodeTime:    zapcore.RFC3339TimeEncoder,
			EncodeCaller:  zapcore.ShortCallerEncoder,
		},
	}
	if json {
		cfg.InitialFields = map[string]interface{}{"app": app}
	}

	return cfg.Build()
}

func encoding(json bool) string {
	if json {
		return "json"
	}
	return "console"
}

func level(debug bool) zapcore.Level {
	if debug {
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}
