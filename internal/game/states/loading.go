package states

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/vandals/internal/logger"
)

// LevelLoader builds a level and spawns the car.
type LevelLoader interface {
	LoadLevel(id string) error
}

// LoadingState loads a level, then hands over to racing.
type LoadingState struct {
	level   string
	loader  LevelLoader
	sim     Simulator
	manager *Manager

	ErrorMsg   string
	IsComplete bool
	Elapsed    time.Duration
}

// NewLoadingState creates a loading state for level.
func NewLoadingState(level string, loader LevelLoader, sim Simulator, manager *Manager) *LoadingState {
	return &LoadingState{
		level:   level,
		loader:  loader,
		sim:     sim,
		manager: manager,
	}
}

// Name implements State.
func (s *LoadingState) Name() string { return "loading" }

// Enter loads the level synchronously.
func (s *LoadingState) Enter() error {
	s.ErrorMsg = ""
	s.IsComplete = false
	logger.Info("entering LoadingState", zap.String("level", s.level))

	start := time.Now()
	if err := s.loader.LoadLevel(s.level); err != nil {
		s.ErrorMsg = err.Error()
		return fmt.Errorf("loading level %q: %w", s.level, err)
	}
	s.Elapsed = time.Since(start)
	s.IsComplete = true

	logger.Info("level loaded",
		zap.String("level", s.level),
		zap.Duration("elapsed", s.Elapsed))
	return nil
}

// Exit is called when leaving this state.
func (s *LoadingState) Exit() error {
	return nil
}

// Update transitions to racing once the level is ready.
func (s *LoadingState) Update(dt float64) error {
	if s.IsComplete {
		s.manager.Change(NewRacingState(s.level, s.sim))
	}
	return nil
}
