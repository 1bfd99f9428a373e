package config

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogLevel returns an adjustable level initialised from the configuration.
func NewLogLevel(cfg *Config) zap.AtomicLevel {
	return zap.NewAtomicLevelAt(cfg.LogLevel())
}

// NewLogger builds the service logger on level, which the config watcher
// changes at runtime when logging.level changes.
func NewLogger(cfg *Config, level zap.AtomicLevel) (*zap.Logger, error) {
	var zc zap.Config
	if cfg.IsProduction() {
		zc = zap.NewProductionConfig()
		zc.Sampling = &zap.SamplingConfig{Initial: 100, Thereafter: 100}
	} else {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zc.Level = level
	zc.OutputPaths = []string{"stdout"}
	zc.ErrorOutputPaths = []string{"stderr"}

	logger, err := zc.Build(zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel))
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("environment", string(cfg.Environment))), nil
}

// ApplyLogLevel returns a watcher callback that keeps level in sync with the configuration.
func ApplyLogLevel(level zap.AtomicLevel, logger *zap.Logger) func(*Config) {
	return func(cfg *Config) {
		next := cfg.LogLevel()
		if level.Level() == next {
			return
		}
		level.SetLevel(next)
		logger.Info("Log level changed", zap.Stringer("level", next))
	}
}
