// Package logger builds the process-wide zap logger. Production gets JSON
// output; dev gets the human-readable console encoder with debug enabled.
package logger

import "go.uber.org/zap"

func New(env string) (*zap.Logger, error) {
	if env == "dev" {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.DisableStacktrace = true
	return cfg.Build()
}
