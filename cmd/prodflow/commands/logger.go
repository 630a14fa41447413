package commands

import (
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newLogger returns a zap-backed logr.Logger writing to stderr. Verbosity n
// enables logr V(n) lines, which zapr maps to zap level -n.
func newLogger(verbosity int) (logr.Logger, func(), error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.Level(-verbosity))
	cfg.OutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true
	cfg.DisableCaller = true

	z, err := cfg.Build()
	if err != nil {
		return logr.Discard(), func() {}, err
	}

	return zapr.NewLogger(z), func() { _ = z.Sync() }, nil
}
