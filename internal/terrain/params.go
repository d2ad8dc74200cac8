// Package terrain builds the cylindrical terrain of a level: its physical
// parameters, the two collider strategies and the resistance model sampled
// from the heightmap.
package terrain

import (
	"errors"
	"fmt"
	"math"
)

// Parameter errors. All are fatal at level load.
var (
	ErrInvertedRadius     = errors.New("radius_inner must not exceed radius_outer")
	ErrNonPositiveRadius  = errors.New("radius_inner must be positive")
	ErrNonPositiveLength  = errors.New("length must be positive")
	ErrNonPositiveDensity = errors.New("density must be positive")
)

// MapParams are the physical dimensions of a cylinder world.
type MapParams struct {
	RadiusInner float32 `yaml:"radius_inner"`
	RadiusOuter float32 `yaml:"radius_outer"`
	Length      float32 `yaml:"length,omitempty"` // zero means derive from the heightmap aspect
	Density     float32 `yaml:"density"`
}

// Validate checks the invariants. Length must already be derived.
func (p MapParams) Validate() error {
	switch {
	case p.RadiusInner <= 0:
		return fmt.Errorf("%w (got %g)", ErrNonPositiveRadius, p.RadiusInner)
	case p.RadiusInner > p.RadiusOuter:
		return fmt.Errorf("%w (%g > %g)", ErrInvertedRadius, p.RadiusInner, p.RadiusOuter)
	case p.Length <= 0:
		return fmt.Errorf("%w (got %g)", ErrNonPositiveLength, p.Length)
	case p.Density <= 0:
		return fmt.Errorf("%w (got %g)", ErrNonPositiveDensity, p.Density)
	}
	return nil
}

// DeriveLength fills Length from a width×height heightmap so that texels keep
// the aspect ratio of the inner circumference. An explicit Length is kept.
func (p MapParams) DeriveLength(width, height int) MapParams {
	if p.Length == 0 && width > 0 {
		p.Length = 2 * math.Pi * p.RadiusInner * float32(height) / float32(width)
	}
	return p
}

// AverageRadius returns the midpoint of the radius range.
func (p MapParams) AverageRadius() float32 {
	return (p.RadiusInner + p.RadiusOuter) / 2
}

// RadiusAt maps a height byte onto the radius range.
func (p MapParams) RadiusAt(h byte) float32 {
	t := float32(h) / 255
	return p.RadiusInner*(1-t) + p.RadiusOuter*t
}

// Mass treats the terrain as a solid cylinder of average radius.
func (p MapParams) Mass() float32 {
	r := p.AverageRadius()
	return p.Density * math.Pi * r * r * p.Length
}
