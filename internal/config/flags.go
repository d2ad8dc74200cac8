package config

import (
	"flag"
	"fmt"

	"github.com/Faultbox/vandals/internal/terrain"
)

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagContent  = flag.String("content", "", "Content pack directory")
	flagLevel    = flag.String("level", "", "Level to load")
	flagCar      = flag.String("car", "", "Car to spawn")
	flagFrames   = flag.Int("frames", -1, "Number of frames to simulate (0 = until interrupted)")
	flagCollider = flag.String("collider", "", "Terrain collider strategy (analytic, mesh)")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) error {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagContent != "" {
		cfg.Content.Dir = *flagContent
	}
	if *flagLevel != "" {
		cfg.Content.Level = *flagLevel
	}
	if *flagCar != "" {
		cfg.Content.Car = *flagCar
	}
	if *flagFrames >= 0 {
		cfg.Simulation.Frames = *flagFrames
	}
	if *flagCollider != "" {
		s, err := terrain.ParseStrategy(*flagCollider)
		if err != nil {
			return fmt.Errorf("--collider: %w", err)
		}
		cfg.Simulation.TerrainCollider = s
	}
	return nil
}
