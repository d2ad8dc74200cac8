package states

import (
	"go.uber.org/zap"

	"github.com/Faultbox/vandals/internal/logger"
)

// Simulator advances the loaded level by one fixed step.
type Simulator interface {
	Frame() error
	Frames() uint64
}

// RacingState steps the simulation once per update.
type RacingState struct {
	level string
	sim   Simulator
}

// NewRacingState creates the racing state.
func NewRacingState(level string, sim Simulator) *RacingState {
	return &RacingState{level: level, sim: sim}
}

// Name implements State.
func (s *RacingState) Name() string { return "racing" }

// Enter is called when entering this state.
func (s *RacingState) Enter() error {
	logger.Info("entering RacingState", zap.String("level", s.level))
	return nil
}

// Exit is called when leaving this state.
func (s *RacingState) Exit() error {
	logger.Info("leaving RacingState",
		zap.String("level", s.level),
		zap.Uint64("frames", s.sim.Frames()))
	return nil
}

// Update runs one frame. The physics step is fixed, so dt is only
// the wall-clock cadence.
func (s *RacingState) Update(dt float64) error {
	return s.sim.Frame()
}
