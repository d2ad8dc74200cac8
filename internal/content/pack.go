// Package content loads a content pack: entity definitions, levels and
// vehicles described in YAML, plus the heightmap images they reference.
package content

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/vandals/internal/assets"
	"github.com/Faultbox/vandals/internal/logger"
	"github.com/Faultbox/vandals/internal/vehicle"
	"github.com/Faultbox/vandals/pkg/heightmap"
)

// Lookup errors.
var (
	ErrUnknownEntity = errors.New("unknown entity")
	ErrUnknownLevel  = errors.New("unknown level")
	ErrUnknownCar    = errors.New("unknown car")
)

// Pack layout.
const (
	EntitiesFile = "entities.yaml"
	LevelsDir    = "levels"
	CarsDir      = "cars"
)

// Pack is a loaded content pack. It is read-only after Load.
type Pack struct {
	assets   *assets.Manager
	entities map[string]Entity
	levels   map[string]Level
	cars     map[string]vehicle.Config
}

// LoadDir loads a pack from a single directory.
func LoadDir(dir string) (*Pack, error) {
	m := assets.NewManager()
	if err := m.AddDir(dir); err != nil {
		return nil, err
	}
	return Load(m)
}

// Load reads every definition reachable through m.
func Load(m *assets.Manager) (*Pack, error) {
	p := &Pack{
		assets:   m,
		entities: make(map[string]Entity),
		levels:   make(map[string]Level),
		cars:     make(map[string]vehicle.Config),
	}

	if m.Exists(EntitiesFile) {
		var entities []Entity
		if err := p.decode(EntitiesFile, &entities); err != nil {
			return nil, err
		}
		for _, e := range entities {
			if _, dup := p.entities[e.ID]; dup {
				return nil, fmt.Errorf("%s: duplicate entity %q", EntitiesFile, e.ID)
			}
			p.entities[e.ID] = e
		}
	}

	levelFiles, err := m.List(LevelsDir, ".yaml")
	if err != nil {
		return nil, err
	}
	for _, f := range levelFiles {
		var l Level
		if err := p.decode(f, &l); err != nil {
			return nil, err
		}
		if l.ID == "" {
			l.ID = baseName(f)
		}
		if _, dup := p.levels[l.ID]; dup {
			return nil, fmt.Errorf("%s: duplicate level %q", f, l.ID)
		}
		p.levels[l.ID] = l
	}

	carFiles, err := m.List(CarsDir, ".yaml")
	if err != nil {
		return nil, err
	}
	for _, f := range carFiles {
		var c vehicle.Config
		if err := p.decode(f, &c); err != nil {
			return nil, err
		}
		if c.ID == "" {
			c.ID = baseName(f)
		}
		if _, dup := p.cars[c.ID]; dup {
			return nil, fmt.Errorf("%s: duplicate car %q", f, c.ID)
		}
		p.cars[c.ID] = c
	}

	logger.Named("content").Info("content pack loaded",
		zap.Strings("roots", m.Roots()),
		zap.Int("entities", len(p.entities)),
		zap.Int("levels", len(p.levels)),
		zap.Int("cars", len(p.cars)))
	return p, nil
}

func (p *Pack) decode(name string, out interface{}) error {
	data, err := p.assets.Load(name)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	return nil
}

func baseName(file string) string {
	return strings.TrimSuffix(path.Base(file), path.Ext(file))
}

// Assets returns the manager the pack reads from.
func (p *Pack) Assets() *assets.Manager {
	return p.assets
}

// Entity returns the entity definition for id.
func (p *Pack) Entity(id string) (Entity, error) {
	e, ok := p.entities[id]
	if !ok {
		return Entity{}, fmt.Errorf("%w: %q", ErrUnknownEntity, id)
	}
	return e, nil
}

// Level returns the level for id.
func (p *Pack) Level(id string) (Level, error) {
	l, ok := p.levels[id]
	if !ok {
		return Level{}, fmt.Errorf("%w: %q", ErrUnknownLevel, id)
	}
	return l, nil
}

// Car returns the vehicle definition for id.
func (p *Pack) Car(id string) (vehicle.Config, error) {
	c, ok := p.cars[id]
	if !ok {
		return vehicle.Config{}, fmt.Errorf("%w: %q", ErrUnknownCar, id)
	}
	return c, nil
}

// LevelIDs returns the level ids in sorted order.
func (p *Pack) LevelIDs() []string {
	return sortedKeys(p.levels)
}

// CarIDs returns the car ids in sorted order.
func (p *Pack) CarIDs() []string {
	return sortedKeys(p.cars)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Resource reads a file referenced by a definition.
func (p *Pack) Resource(rel string) ([]byte, error) {
	return p.assets.Load(rel)
}

// HeightMap decodes the heightmap image of a level.
func (p *Pack) HeightMap(l Level) (*heightmap.HeightMap, error) {
	data, err := p.Resource(l.HeightMap.ImagePath)
	if err != nil {
		return nil, fmt.Errorf("level %q: %w", l.ID, err)
	}
	hm, err := heightmap.Decode(bytes.NewReader(data), l.HeightMap.Channel)
	if err != nil {
		return nil, fmt.Errorf("level %q: %s: %w", l.ID, l.HeightMap.ImagePath, err)
	}
	return hm.WithWrap(l.HeightMap.VerticalWrap), nil
}

// Validate checks cross references and parameters and reports every
// problem found, not just the first.
func (p *Pack) Validate() error {
	var errs error

	for _, id := range sortedKeys(p.entities) {
		e := p.entities[id]
		if id == "" {
			errs = multierr.Append(errs, errors.New("entity without id"))
		}
		if e.Physics != nil {
			if err := e.Physics.validate(); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("entity %q: %w", id, err))
			}
		}
	}

	for _, id := range p.LevelIDs() {
		l := p.levels[id]
		params := l.HeightMap.Params()
		if params.Length == 0 {
			params.Length = 1 // derived at load time
		}
		if err := params.Validate(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("level %q: %w", id, err))
		}
		if !p.assets.Exists(l.HeightMap.ImagePath) {
			errs = multierr.Append(errs, fmt.Errorf("level %q: heightmap %q not found", id, l.HeightMap.ImagePath))
		}
		seen := make(map[string]bool)
		for _, obj := range l.Objects {
			if seen[obj.ID] {
				errs = multierr.Append(errs, fmt.Errorf("level %q: duplicate object %q", id, obj.ID))
			}
			seen[obj.ID] = true
			if _, ok := p.entities[obj.EntityID]; !ok {
				errs = multierr.Append(errs, fmt.Errorf("level %q: object %q: %w: %q", id, obj.ID, ErrUnknownEntity, obj.EntityID))
			}
		}
	}

	for _, id := range p.CarIDs() {
		if err := p.cars[id].Validate(); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}
