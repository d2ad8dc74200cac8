package vehicle

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/multierr"
)

// PartConfig describes the car body.
type PartConfig struct {
	Mesh        string     `yaml:"mesh"`         // render reference, not loaded here
	HalfExtents mgl32.Vec3 `yaml:"half_extents"` // box collider
	Density     float32    `yaml:"density"`
	Friction    float32    `yaml:"friction"`
}

// WheelConfig is shared by every wheel of the car.
type WheelConfig struct {
	Mesh     string  `yaml:"mesh"`
	Width    float32 `yaml:"width"` // zero uses a ball collider
	Density  float32 `yaml:"density"`
	Friction float32 `yaml:"friction"`
}

// AxleConfig places a row of wheels in body-local space: one wheel per
// lateral offset in Xs, all at the same Y and Z.
type AxleConfig struct {
	Xs     []float32 `yaml:"xs"`
	Y      float32   `yaml:"y"`
	Z      float32   `yaml:"z"`
	Radius float32   `yaml:"radius"`
}

// Config is a vehicle definition.
type Config struct {
	ID    string       `yaml:"id"`
	Name  string       `yaml:"name"`
	Body  PartConfig   `yaml:"body"`
	Wheel WheelConfig  `yaml:"wheel"`
	Axles []AxleConfig `yaml:"axles"`
}

// WheelCount returns the number of wheels over all axles.
func (c Config) WheelCount() int {
	n := 0
	for _, a := range c.Axles {
		n += len(a.Xs)
	}
	return n
}

// Validate reports every problem in the definition.
func (c Config) Validate() error {
	var errs error
	for i := 0; i < 3; i++ {
		if c.Body.HalfExtents[i] <= 0 {
			errs = multierr.Append(errs, fmt.Errorf("body half_extents must be positive (got %v)", c.Body.HalfExtents))
			break
		}
	}
	if c.Body.Density <= 0 {
		errs = multierr.Append(errs, errors.New("body density must be positive"))
	}
	if c.Wheel.Density <= 0 {
		errs = multierr.Append(errs, errors.New("wheel density must be positive"))
	}
	if c.Wheel.Width < 0 {
		errs = multierr.Append(errs, errors.New("wheel width must not be negative"))
	}
	for i, a := range c.Axles {
		if a.Radius <= 0 {
			errs = multierr.Append(errs, fmt.Errorf("axle %d: radius must be positive", i))
		}
		if len(a.Xs) == 0 {
			errs = multierr.Append(errs, fmt.Errorf("axle %d: no wheels", i))
		}
	}
	if errs != nil {
		return fmt.Errorf("vehicle %q: %w", c.ID, errs)
	}
	return nil
}
