package main

import (
	"testing"

	"github.com/quantedge/quantedge/internal/config"
	"go.uber.org/zap/zapcore"
)

func TestConfiguredLogger(t *testing.T) {
	tests := []struct {
		name    string
		debug   bool
		level   string
		enabled zapcore.Level
		muted   zapcore.Level
	}{
		{"configured warn", false, "warn", zapcore.WarnLevel, zapcore.InfoLevel},
		{"configured error", false, "error", zapcore.ErrorLevel, zapcore.WarnLevel},
		{"debug flag wins", true, "error", zapcore.DebugLevel, zapcore.DebugLevel - 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := debug
			debug = tt.debug
			defer func() { debug = prev }()

			cfg := config.Defaults()
			cfg.Log.Level = tt.level

			log, err := configuredLogger(cfg)
			if err != nil {
				t.Fatalf("configuredLogger failed: %v", err)
			}
			if !log.Core().Enabled(tt.enabled) {
				t.Errorf("%s should be enabled", tt.enabled)
			}
			if log.Core().Enabled(tt.muted) {
				t.Errorf("%s should be muted", tt.muted)
			}
		})
	}
}
