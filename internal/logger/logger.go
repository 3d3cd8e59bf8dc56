package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects the logger built by NewLogger.
type Options struct {
	// Env picks the encoding: prod writes JSON, local/dev/test write console
	// output.
	Env string
	// Level overrides the environment's default level when set: debug, info,
	// warn, error.
	Level string
	// Component names the binary, e.g. "api" or "cli". Every entry carries
	// it so API and CLI runs can be told apart in shared sinks.
	Component string
}

// NewLogger creates the redacta logger for opts.
func NewLogger(opts Options) (*zap.Logger, error) {
	var cfg zap.Config
	switch opts.Env {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	case "local", "dev", "development", "docker", "test":
		cfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("unknown environment %q for logger", opts.Env)
	}

	if opts.Level != "" {
		var level zapcore.Level
		if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(level)
	}

	l, err := cfg.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	l = l.Named("redacta")
	if opts.Component != "" {
		l = l.Named(opts.Component).With(zap.String("component", opts.Component))
	}
	return l, nil
}
