package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"freightsplit/cmd"
	"freightsplit/internal/config"
	"freightsplit/internal/logger"
)

func main() {
	// Defaults until the environment has been read.
	if err := logger.Setup(logger.DefaultConfig()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	bootLog := logger.WithComponent("main")

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		bootLog.Warn().Err(err).Msg("Could not load .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		bootLog.Warn().Err(err).Msg("Could not load configuration, using defaults")
		cfg = config.Default()
	}

	if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	log := logger.WithComponent("main")
	log.Debug().Msg("Starting freightsplit")

	cmd.Execute()

	log.Debug().Msg("freightsplit shutdown")
	os.Exit(0)
}
