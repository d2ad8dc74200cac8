// Package game loads levels into a physics world and drives the frame loop.
package game

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Faultbox/vandals/internal/config"
	"github.com/Faultbox/vandals/internal/content"
	"github.com/Faultbox/vandals/internal/game/camera"
	"github.com/Faultbox/vandals/internal/game/debug"
	"github.com/Faultbox/vandals/internal/game/entity"
	"github.com/Faultbox/vandals/internal/game/states"
	"github.com/Faultbox/vandals/internal/logger"
	"github.com/Faultbox/vandals/internal/physics"
	"github.com/Faultbox/vandals/internal/terrain"
	"github.com/Faultbox/vandals/internal/vehicle"
	"github.com/Faultbox/vandals/internal/world"
	"github.com/Faultbox/vandals/pkg/geom"
)

// FrameInterval is the wall-clock cadence of Run.
const FrameInterval = 16 * time.Millisecond

// ErrNoLevel is returned by Frame before a level is loaded.
var ErrNoLevel = errors.New("no level loaded")

// Instance is the render-facing view of one placed object.
type Instance struct {
	ID        uint32
	Kind      entity.Kind
	Name      string
	ScenePath string
	Transform geom.Isometry
	Scale     mgl32.Vec3
}

// TransformSink receives every instance after each frame.
type TransformSink interface {
	Submit(frame uint64, instances []Instance)
}

// SinkFunc adapts a function to TransformSink.
type SinkFunc func(frame uint64, instances []Instance)

// Submit implements TransformSink.
func (f SinkFunc) Submit(frame uint64, instances []Instance) {
	f(frame, instances)
}

// Option configures a Game.
type Option func(*Game)

// WithSink sets the transform sink.
func WithSink(s TransformSink) Option {
	return func(g *Game) {
		g.sink = s
	}
}

// WithPack uses an already loaded content pack instead of cfg.Content.Dir.
func WithPack(p *content.Pack) Option {
	return func(g *Game) {
		g.pack = p
	}
}

// WithVehicleOptions forwards options to vehicle.Build.
func WithVehicleOptions(opts ...vehicle.Option) Option {
	return func(g *Game) {
		g.vehicleOpts = append(g.vehicleOpts, opts...)
	}
}

// Game is one simulation session.
type Game struct {
	cfg         *config.Config
	pack        *content.Pack
	sink        TransformSink
	vehicleOpts []vehicle.Option
	log         *zap.Logger

	level    *content.Level
	world    *world.World
	terrain  world.TerrainHandle
	body     *terrain.Body
	car      *vehicle.Car
	camera   *camera.ChaseCamera
	entities *entity.Manager
	frames   uint64
	grounded int
}

// New validates the configuration and opens the content pack.
func New(cfg *config.Config, opts ...Option) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	g := &Game{
		cfg:      cfg,
		entities: entity.NewManager(),
		camera:   camera.NewChaseCamera(),
		log:      logger.Named("game"),
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.pack == nil {
		p, err := content.LoadDir(cfg.Content.Dir)
		if err != nil {
			return nil, fmt.Errorf("failed to load content: %w", err)
		}
		g.pack = p
	}
	if err := g.pack.Validate(); err != nil {
		return nil, fmt.Errorf("content pack: %w", err)
	}

	g.log.Info("game initialized",
		zap.String("content", cfg.Content.Dir),
		zap.Strings("levels", g.pack.LevelIDs()),
		zap.Strings("cars", g.pack.CarIDs()),
		zap.Stringer("collider", cfg.Simulation.TerrainCollider))
	return g, nil
}

// SpawnPose places the car between the inner and outer radius, a tenth of
// the map length along the axis, with its up axis facing away from the axis.
func SpawnPose(p terrain.MapParams) geom.Isometry {
	r := 0.35*p.RadiusInner + 0.65*p.RadiusOuter
	return geom.NewIsometry(
		mgl32.Vec3{0, r, 0.1 * p.Length},
		mgl32.QuatRotate(0.5*math.Pi, mgl32.Vec3{0, 1, 0}),
	)
}

// LoadLevel replaces the current world with level id and spawns the car.
func (g *Game) LoadLevel(id string) error {
	level, err := g.pack.Level(id)
	if err != nil {
		return err
	}
	hm, err := g.pack.HeightMap(level)
	if err != nil {
		return err
	}
	body, err := terrain.NewBody(level.HeightMap.Params(), hm)
	if err != nil {
		return fmt.Errorf("level %q terrain: %w", id, err)
	}
	body.Stiffness = g.cfg.Simulation.Stiffness

	carCfg, err := g.pack.Car(g.cfg.Content.Car)
	if err != nil {
		return err
	}

	w := world.New(g.cfg.WorldParams())
	th, err := w.CreateTerrain(body, g.cfg.Simulation.TerrainCollider)
	if err != nil {
		return fmt.Errorf("level %q terrain collider: %w", id, err)
	}

	entities := entity.NewManager()
	for _, obj := range level.Objects {
		if err := g.placeObject(w, entities, obj); err != nil {
			return fmt.Errorf("level %q object %q: %w", id, obj.ID, err)
		}
	}

	car, err := vehicle.Build(w, carCfg, SpawnPose(body.Params), g.vehicleOpts...)
	if err != nil {
		return err
	}
	entities.Add(&entity.Entity{
		Kind:      entity.KindCarBody,
		Name:      carCfg.ID,
		ScenePath: carCfg.Body.Mesh,
		Body:      car.Body.Body,
		Transform: car.Body.Transform,
	})
	for _, wheel := range car.Wheels() {
		entities.Add(&entity.Entity{
			Kind:      entity.KindWheel,
			Name:      carCfg.ID,
			ScenePath: carCfg.Wheel.Mesh,
			Body:      wheel.Body,
			Transform: wheel.Transform,
		})
	}

	g.level = &level
	g.world = w
	g.terrain = th
	g.body = body
	g.car = car
	g.entities = entities
	g.frames = 0
	g.grounded = 0
	g.camera.Far = body.Params.Length
	g.camera.Follow(car.Body.Transform)

	g.log.Info("level ready",
		zap.String("level", level.ID),
		zap.String("name", level.Name),
		zap.Float32("length", body.Params.Length),
		zap.Float32("terrain_mass", body.Mass()),
		zap.Int("objects", entities.Count()),
		logger.Isometry("spawn", car.Body.Transform))
	return nil
}

func (g *Game) placeObject(w *world.World, entities *entity.Manager, obj content.LevelObject) error {
	def, err := g.pack.Entity(obj.EntityID)
	if err != nil {
		return err
	}
	e := &entity.Entity{
		Kind:      entity.KindDecoration,
		Name:      obj.ID,
		ScenePath: def.ScenePath,
		Transform: obj.Transform.Isometry(),
		Scale:     obj.Transform.Scaling(),
	}
	if def.Physics != nil {
		colliders, err := def.Physics.WorldColliders(e.Scale)
		if err != nil {
			return err
		}
		var o world.DynamicObject
		if def.Physics.Dynamic() {
			e.Kind = entity.KindDynamic
			o, err = w.CreateDynamicObject(colliders, e.Transform)
		} else {
			e.Kind = entity.KindStatic
			o, err = w.CreateStaticObject(colliders, e.Transform)
		}
		if err != nil {
			return err
		}
		e.Body = o.Body
	}
	entities.Add(e)
	return nil
}

// Frame applies forces, steps the world once and publishes transforms.
func (g *Game) Frame() error {
	if g.world == nil {
		return ErrNoLevel
	}
	w := g.world

	w.BeginFrame()
	g.grounded = g.car.Update(w, g.terrain)
	for _, e := range g.entities.ByKind(entity.KindDynamic) {
		w.ApplyGravity(e.Body, g.terrain)
	}

	w.Step()

	g.car.Sync(w)
	for _, e := range g.entities.All() {
		if e.Moving() {
			e.Transform = w.Transform(e.Body)
		}
	}
	g.camera.Follow(g.car.Body.Transform)
	g.frames++

	if ce := g.log.Check(zapcore.DebugLevel, "frame"); ce != nil {
		ce.Write(
			zap.Uint64("frame", g.frames),
			zap.Int("grounded", g.grounded),
			zap.Int("contacts", len(w.Engine().Contacts())),
			logger.Vec3("car_velocity", w.Velocity(g.car.Body.Body)))
	}

	if g.sink != nil {
		g.sink.Submit(g.frames, g.Instances())
	}
	return nil
}

// Instances snapshots every placed object.
func (g *Game) Instances() []Instance {
	all := g.entities.All()
	out := make([]Instance, 0, len(all))
	for _, e := range all {
		out = append(out, Instance{
			ID:        e.ID,
			Kind:      e.Kind,
			Name:      e.Name,
			ScenePath: e.ScenePath,
			Transform: e.Transform,
			Scale:     e.Scale,
		})
	}
	return out
}

// Run loads the configured level and runs frames at FrameInterval until
// ctx is cancelled or the frame budget is spent. A budget of 0 means
// no limit. Cancellation is not an error.
func (g *Game) Run(ctx context.Context, frames int) error {
	mgr := states.NewManager()
	mgr.Change(states.NewLoadingState(g.cfg.Content.Level, g, g, mgr))
	defer mgr.Close()

	if err := mgr.Update(0); err != nil {
		return err
	}

	ticker := time.NewTicker(FrameInterval)
	defer ticker.Stop()

	g.log.Info("starting simulation loop", zap.Int("frames", frames))

	lastTime := time.Now()
	frameCount := 0
	rateTimer := lastTime
	for frames == 0 || g.frames < uint64(frames) {
		select {
		case <-ctx.Done():
			g.log.Info("simulation interrupted", zap.Uint64("frames", g.frames))
			return nil
		case now := <-ticker.C:
			dt := now.Sub(lastTime).Seconds()
			lastTime = now

			if err := mgr.Update(dt); err != nil {
				return fmt.Errorf("frame %d: %w", g.frames+1, err)
			}

			frameCount++
			if now.Sub(rateTimer) >= time.Second {
				g.log.Debug("frame rate", zap.Int("count", frameCount), zap.Float64("dt_ms", dt*1000))
				frameCount = 0
				rateTimer = now
			}
		}
	}

	g.log.Info("simulation finished", zap.Uint64("frames", g.frames))
	return nil
}

// Close releases the content pack.
func (g *Game) Close() {
	g.log.Info("closing game")
	if g.car != nil {
		g.car.Remove(g.world)
		g.car = nil
	}
	g.pack.Assets().Close()
}

// Pack returns the content pack.
func (g *Game) Pack() *content.Pack { return g.pack }

// World returns the current world, nil before LoadLevel.
func (g *Game) World() *world.World { return g.world }

// Terrain returns the terrain handle and body of the current level.
func (g *Game) Terrain() (world.TerrainHandle, *terrain.Body) { return g.terrain, g.body }

// Level returns the current level, nil before LoadLevel.
func (g *Game) Level() *content.Level { return g.level }

// Car returns the spawned car, nil before LoadLevel.
func (g *Game) Car() *vehicle.Car { return g.car }

// DebugLines returns collider bounds as line vertices for the render
// collaborator. Fixed bodies, the terrain among them, are skipped unless
// withFixed is set.
func (g *Game) DebugLines(withFixed bool) []float32 {
	if g.world == nil {
		return nil
	}
	keep := (*physics.RigidBody).IsDynamic
	if withFixed {
		keep = nil
	}
	return debug.ColliderLines(g.world.Engine(), keep)
}

// Camera returns the chase camera following the car.
func (g *Game) Camera() *camera.ChaseCamera { return g.camera }

// Entities returns the instance manager of the current level.
func (g *Game) Entities() *entity.Manager { return g.entities }

// Frames returns the number of frames run since the level was loaded.
func (g *Game) Frames() uint64 { return g.frames }

// Grounded returns how many wheels touched the terrain in the last frame.
func (g *Game) Grounded() int { return g.grounded }
