// Package entity tracks the object instances placed in a running level.
package entity

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/vandals/internal/physics"
	"github.com/Faultbox/vandals/pkg/geom"
)

// Kind classifies an instance by how it is simulated.
type Kind uint8

const (
	KindDecoration Kind = iota // render-only, never simulated
	KindStatic                 // fixed body
	KindDynamic                // gravity-driven body
	KindCarBody
	KindWheel
)

var kindNames = [...]string{"decoration", "static", "dynamic", "car_body", "wheel"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Entity is one placed instance.
type Entity struct {
	ID        uint32
	Kind      Kind
	Name      string // level object or part name
	ScenePath string // render model, may be empty
	Body      physics.BodyHandle
	Transform geom.Isometry
	Scale     mgl32.Vec3
}

// Physical reports whether the entity owns a body in the world.
func (e *Entity) Physical() bool {
	return e.Kind != KindDecoration
}

// Moving reports whether the entity's transform changes between frames.
func (e *Entity) Moving() bool {
	return e.Kind == KindDynamic || e.Kind == KindCarBody || e.Kind == KindWheel
}

// Manager owns every instance of the current level.
type Manager struct {
	entities map[uint32]*Entity
	nextID   uint32
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{
		entities: make(map[uint32]*Entity),
		nextID:   1,
	}
}

// Add assigns an ID to e and stores it.
func (m *Manager) Add(e *Entity) uint32 {
	e.ID = m.nextID
	m.nextID++
	if e.Scale == (mgl32.Vec3{}) {
		e.Scale = mgl32.Vec3{1, 1, 1}
	}
	m.entities[e.ID] = e
	return e.ID
}

// Remove removes an entity.
func (m *Manager) Remove(id uint32) {
	delete(m.entities, id)
}

// Get returns an entity by ID.
func (m *Manager) Get(id uint32) *Entity {
	return m.entities[id]
}

// All returns every entity ordered by ID.
func (m *Manager) All() []*Entity {
	result := make([]*Entity, 0, len(m.entities))
	for _, e := range m.entities {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// ByKind returns all entities of one kind ordered by ID.
func (m *Manager) ByKind(k Kind) []*Entity {
	result := make([]*Entity, 0)
	for _, e := range m.All() {
		if e.Kind == k {
			result = append(result, e)
		}
	}
	return result
}

// Count returns the total number of entities.
func (m *Manager) Count() int {
	return len(m.entities)
}

// CountByKind returns the number of entities of one kind.
func (m *Manager) CountByKind(k Kind) int {
	count := 0
	for _, e := range m.entities {
		if e.Kind == k {
			count++
		}
	}
	return count
}

// Clear removes every entity and restarts ID assignment.
func (m *Manager) Clear() {
	m.entities = make(map[uint32]*Entity)
	m.nextID = 1
}
