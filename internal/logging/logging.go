// Package logging constructs the process-wide structured logger.
//
// A single *zap.Logger is built once at startup and passed by reference
// to the Server, rather than reached for as a package-level global —
// see DESIGN.md for the reasoning.
package logging

import "go.uber.org/zap"

// New builds a production-shaped logger writing JSON records to stdout.
func New() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stdout"}
	return cfg.Build()
}

// Nop returns a logger that discards everything, for use in tests that don't
// care about log output.
func Nop() *zap.Logger {
	return zap.NewNop()
}
