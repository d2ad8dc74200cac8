// Package main is the entry point for the headless Vandals simulation.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/vandals/internal/config"
	"github.com/Faultbox/vandals/internal/game"
	"github.com/Faultbox/vandals/internal/game/entity"
	"github.com/Faultbox/vandals/internal/logger"
	"github.com/Faultbox/vandals/pkg/geom"
)

var flagReport = flag.Int("report", 60, "Log the car transform every N frames (0 disables)")

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred cleanup finishes first.
func run() int {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		return 1
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	logger.Info("=== Vandals ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	g, err := game.New(cfg, game.WithSink(reporter(*flagReport)))
	if err != nil {
		logger.Error("failed to create game", zap.Error(err))
		return 1
	}
	defer g.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := g.Run(ctx, cfg.Simulation.Frames); err != nil {
		logger.Error("simulation error", zap.Error(err))
		return 1
	}

	logger.Info("simulation closed normally")
	return 0
}

// reporter logs the car body and grounded wheel count every n frames.
func reporter(n int) game.TransformSink {
	log := logger.Named("report")
	return game.SinkFunc(func(frame uint64, instances []game.Instance) {
		if n <= 0 || frame%uint64(n) != 0 {
			return
		}
		for _, inst := range instances {
			if inst.Kind != entity.KindCarBody {
				continue
			}
			log.Info("car",
				zap.Uint64("frame", frame),
				logger.Isometry("pose", inst.Transform),
				zap.Float32("radial", geom.RadialDistance(inst.Transform.Translation)))
		}
	})
}
