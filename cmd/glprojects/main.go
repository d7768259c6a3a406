// Package main is the entry point for the OpenGL demo sandbox.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/glprojects/internal/app"
	"github.com/Faultbox/glprojects/internal/config"
	"github.com/Faultbox/glprojects/internal/logger"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		logger.Error("Failed to initialize application", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Sync()
}

func run(cfg *config.Config) error {
	logger.Info("=== GL Projects ===", zap.String("demo", cfg.Demo.Kind))
	logger.Sugar.Debugf("Config: %+v", cfg)

	session, err := app.NewSession(cfg)
	if err != nil {
		return err
	}
	defer session.Close()

	demo, err := app.New(session, cfg)
	if err != nil {
		return err
	}
	defer demo.Close()

	if err := demo.Init(); err != nil {
		return err
	}
	if err := demo.Run(); err != nil {
		return err
	}
	logger.Info("demo finished", zap.Int("frames", session.Frames()))
	return nil
}
