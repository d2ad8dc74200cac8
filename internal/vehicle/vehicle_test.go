package vehicle

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/vandals/internal/physics"
	"github.com/Faultbox/vandals/internal/terrain"
	"github.com/Faultbox/vandals/internal/world"
	"github.com/Faultbox/vandals/pkg/geom"
	"github.com/Faultbox/vandals/pkg/heightmap"
)

const buggyYAML = `
id: buggy
name: Buggy
body:
  mesh: models/buggy.obj
  half_extents: [1, 0.4, 2]
  density: 1
  friction: 0.6
wheel:
  mesh: models/wheel.obj
  width: 0.3
  density: 2
  friction: 0.9
axles:
  - xs: [-1.1, 1.1]
    y: -0.4
    z: 1.5
    radius: 0.5
  - xs: [-1.1, 1.1]
    y: -0.4
    z: -1.5
    radius: 0.6
`

func buggy(t *testing.T) Config {
	t.Helper()
	var cfg Config
	if err := yaml.Unmarshal([]byte(buggyYAML), &cfg); err != nil {
		t.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}

func TestConfig_Parse(t *testing.T) {
	cfg := buggy(t)
	if cfg.Body.HalfExtents != (mgl32.Vec3{1, 0.4, 2}) {
		t.Errorf("half extents = %v", cfg.Body.HalfExtents)
	}
	if cfg.WheelCount() != 4 {
		t.Errorf("WheelCount = %d, want 4", cfg.WheelCount())
	}
	if cfg.Axles[1].Radius != 0.6 {
		t.Errorf("rear radius = %v", cfg.Axles[1].Radius)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestConfig_ValidateCollectsAll(t *testing.T) {
	cfg := Config{ID: "broken", Axles: []AxleConfig{{Radius: 0}}}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	for _, want := range []string{"half_extents", "body density", "wheel density", "axle 0: radius", "axle 0: no wheels"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q does not mention %q", msg, want)
		}
	}
}

func testWorld(t *testing.T) (*world.World, world.TerrainHandle) {
	t.Helper()
	hm, _ := heightmap.Fill(32, 16, 0)
	body, err := terrain.NewBody(terrain.MapParams{RadiusInner: 10, RadiusOuter: 15, Length: 100, Density: 1}, hm)
	if err != nil {
		t.Fatalf("NewBody failed: %v", err)
	}
	w := world.New(world.DefaultParams())
	th, err := w.CreateTerrain(body, terrain.Analytic)
	if err != nil {
		t.Fatalf("CreateTerrain failed: %v", err)
	}
	return w, th
}

func TestBuild_PlacesWheels(t *testing.T) {
	w, _ := testWorld(t)
	start := geom.NewIsometry(mgl32.Vec3{0, 12, 0}, mgl32.QuatRotate(0.5, mgl32.Vec3{0, 1, 0}))
	car, err := Build(w, buggy(t), start)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(car.Wheels()) != 4 {
		t.Fatalf("wheels = %d, want 4", len(car.Wheels()))
	}
	// body + 4 wheels + terrain
	if n := w.Engine().BodyCount(); n != 6 {
		t.Errorf("BodyCount = %d, want 6", n)
	}
	for _, wheel := range car.Wheels() {
		want := start.TransformPoint(wheel.Anchor)
		got := w.Transform(wheel.Body).Translation
		if !got.ApproxEqualThreshold(want, 1e-5) {
			t.Errorf("wheel at %v, want %v", got, want)
		}
		if wheel.Joint != nil {
			t.Error("wheels must be free without a joint hook")
		}
		if c, ok := w.Engine().Collider(wheel.Colliders[0]); !ok || !c.IgnoreContacts {
			t.Error("wheel collider should leave terrain contact to ApplyWheel")
		}
	}
	if c, ok := w.Engine().Collider(car.Body.Colliders[0]); !ok || c.IgnoreContacts {
		t.Error("body collider should collide with the terrain")
	}
	if w.Engine().JointCount() != 0 {
		t.Errorf("JointCount = %d, want 0", w.Engine().JointCount())
	}
}

func TestBuild_JointHook(t *testing.T) {
	w, _ := testWorld(t)
	calls := 0
	hook := func(body, wheel physics.BodyHandle, anchor mgl32.Vec3) *physics.JointDesc {
		calls++
		if calls == 1 {
			return nil // first wheel stays free
		}
		return &physics.JointDesc{Body1: body, Body2: wheel, Anchor1: anchor, Stiffness: 100, Damping: 5}
	}
	car, err := Build(w, buggy(t), geom.Translation(0, 12, 0), WithJointHook(hook))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if calls != 4 {
		t.Errorf("hook called %d times, want 4", calls)
	}
	if w.Engine().JointCount() != 3 {
		t.Errorf("JointCount = %d, want 3", w.Engine().JointCount())
	}
	if car.Wheels()[0].Joint != nil || car.Wheels()[1].Joint == nil {
		t.Error("joint handles not recorded per wheel")
	}
}

func TestBuild_InvalidConfig(t *testing.T) {
	w, _ := testWorld(t)
	cfg := buggy(t)
	cfg.Axles[0].Radius = -1
	if _, err := Build(w, cfg, geom.Identity()); err == nil {
		t.Fatal("expected error")
	}
	if n := w.Engine().BodyCount(); n != 1 {
		t.Errorf("invalid build left %d bodies, want only the terrain", n)
	}
}

func TestUpdate_GroundedAndAirborne(t *testing.T) {
	w, th := testWorld(t)
	cfg := buggy(t)

	// Wheel centers 0.4 below a body at radius 10.6 sit at 10.2, so every
	// contact point lands below the flat surface at radius 10
	grounded, err := Build(w, cfg, geom.Translation(0, 10.6, 0))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	w.BeginFrame()
	if n := grounded.Update(w, th); n != 4 {
		t.Errorf("grounded wheels = %d, want 4", n)
	}

	flying, err := Build(w, cfg, geom.Translation(0, 14, 40))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if n := flying.Update(w, th); n != 0 {
		t.Errorf("airborne car reports %d grounded wheels", n)
	}
	for _, wheel := range flying.Wheels() {
		if wheel.Ground {
			t.Error("airborne wheel marked grounded")
		}
	}
}

func TestSync_ReadsBackAfterStep(t *testing.T) {
	w, th := testWorld(t)
	car, err := Build(w, buggy(t), geom.Translation(0, 14, 0))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		w.BeginFrame()
		car.Update(w, th)
		w.Step()
	}
	before := car.Body.Transform
	car.Sync(w)
	if car.Body.Transform == before {
		t.Error("body transform not refreshed by Sync")
	}
	if car.Body.Transform.Translation[1] >= 14 {
		t.Errorf("car did not fall toward the axis: %v", car.Body.Transform.Translation)
	}
	for _, wheel := range car.Wheels() {
		if wheel.Transform != w.Transform(wheel.Body) {
			t.Error("wheel transform not synced")
		}
	}
}

func TestRemove(t *testing.T) {
	w, _ := testWorld(t)
	car, err := Build(w, buggy(t), geom.Identity())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	car.Remove(w)
	if n := w.Engine().BodyCount(); n != 1 {
		t.Errorf("BodyCount after Remove = %d, want 1", n)
	}
}
