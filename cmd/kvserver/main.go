// Command kvserver runs the key-value TCP server: it wires configuration,
// logging, and the Server together and blocks on ListenAndServe.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/rsciampacone/kvhacking/internal/config"
	"github.com/rsciampacone/kvhacking/internal/logging"
	"github.com/rsciampacone/kvhacking/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Default()

	log, err := logging.New()
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer log.Sync()

	srv := server.New(cfg, log)
	if err := srv.ListenAndServe(); err != nil {
		log.Error("server stopped", zap.Error(err))
		return err
	}
	return nil
}
