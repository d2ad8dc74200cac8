// Package config handles simulation configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"github.com/Faultbox/vandals/internal/gravity"
	"github.com/Faultbox/vandals/internal/physics"
	"github.com/Faultbox/vandals/internal/terrain"
	"github.com/Faultbox/vandals/internal/world"
	"go.uber.org/multierr"
)

// Config holds all runner settings.
type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Content    ContentConfig    `yaml:"content"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// SimulationConfig holds physics tuning.
type SimulationConfig struct {
	GravityConstant   float32          `yaml:"gravity_constant"`
	MinRadialDistance float32          `yaml:"min_radial_distance"`
	Stiffness         float32          `yaml:"stiffness"`
	Timestep          float32          `yaml:"timestep"`
	LinearDamping     float32          `yaml:"linear_damping"`
	AngularDamping    float32          `yaml:"angular_damping"`
	TerrainCollider   terrain.Strategy `yaml:"terrain_collider"`
	Frames            int              `yaml:"frames"` // 0 runs until interrupted
}

// ContentConfig selects the content pack and what to load from it.
type ContentConfig struct {
	Dir   string `yaml:"dir"`
	Level string `yaml:"level"`
	Car   string `yaml:"car"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	phys := physics.DefaultParams()
	return &Config{
		Simulation: SimulationConfig{
			GravityConstant:   gravity.DefaultG,
			MinRadialDistance: gravity.DefaultMinRadial,
			Stiffness:         terrain.DefaultStiffness,
			Timestep:          phys.Timestep,
			LinearDamping:     phys.LinearDamping,
			AngularDamping:    phys.AngularDamping,
			TerrainCollider:   terrain.Analytic,
			Frames:            0,
		},
		Content: ContentConfig{
			Dir:   "content",
			Level: "test",
			Car:   "buggy",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var err error
	s := c.Simulation
	if s.GravityConstant <= 0 {
		err = multierr.Append(err, fmt.Errorf("simulation.gravity_constant must be positive, got %g", s.GravityConstant))
	}
	if s.MinRadialDistance <= 0 {
		err = multierr.Append(err, fmt.Errorf("simulation.min_radial_distance must be positive, got %g", s.MinRadialDistance))
	}
	if s.Stiffness <= 0 {
		err = multierr.Append(err, fmt.Errorf("simulation.stiffness must be positive, got %g", s.Stiffness))
	}
	if s.Timestep <= 0 {
		err = multierr.Append(err, fmt.Errorf("simulation.timestep must be positive, got %g", s.Timestep))
	}
	if s.LinearDamping < 0 || s.AngularDamping < 0 {
		err = multierr.Append(err, errors.New("simulation damping must not be negative"))
	}
	if s.TerrainCollider != terrain.Analytic && s.TerrainCollider != terrain.MeshCollider {
		err = multierr.Append(err, fmt.Errorf("simulation.terrain_collider: unknown strategy %d", s.TerrainCollider))
	}
	if s.Frames < 0 {
		err = multierr.Append(err, fmt.Errorf("simulation.frames must not be negative, got %d", s.Frames))
	}
	if c.Content.Dir == "" {
		err = multierr.Append(err, errors.New("content.dir is required"))
	}
	return err
}

// WorldParams converts the simulation section into world parameters.
func (c *Config) WorldParams() world.Params {
	s := c.Simulation
	return world.Params{
		Physics: physics.Params{
			Timestep:       s.Timestep,
			LinearDamping:  s.LinearDamping,
			AngularDamping: s.AngularDamping,
		},
		Gravity: gravity.Params{
			G:         s.GravityConstant,
			MinRadial: s.MinRadialDistance,
		},
	}
}
