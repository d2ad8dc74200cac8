package content

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/vandals/internal/assets"
	"github.com/Faultbox/vandals/internal/physics"
	"github.com/Faultbox/vandals/pkg/heightmap"
)

const entitiesYAML = `
- id: crate
  scene_path: models/crate.obj
  physics:
    body: {type: rigid, mass: 16}
    colliders:
      - shape: {type: box, half_extents: [1, 1, 1]}
- id: pillar
  physics:
    body: {type: static}
    colliders:
      - shape: {type: cylinder, radius: 0.5, half_height: 3}
        transform: {position: [0, 0, 3]}
- id: flag
  scene_path: models/flag.obj
`

const levelYAML = `
id: ring
name: The Ring
height_map:
  id: ring-hm
  image_path: maps/ring.png
  radius: [10, 15]
  density: 1
  channel: red
  vertical_wrap: repeat
objects:
  - id: crate-1
    entity_id: crate
    transform:
      position: [0, 12, 5]
      rotation: [0, 0, 1.5707964]
  - id: flag-1
    entity_id: flag
`

const carYAML = `
name: Buggy
body:
  half_extents: [1, 0.4, 2]
  density: 1
wheel:
  density: 2
axles:
  - xs: [-1, 1]
    y: -0.4
    z: 1.5
    radius: 0.5
`

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 10), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode failed: %v", err)
	}
	return buf.Bytes()
}

func testFS(t *testing.T) fstest.MapFS {
	return fstest.MapFS{
		"entities.yaml":    {Data: []byte(entitiesYAML)},
		"levels/ring.yaml": {Data: []byte(levelYAML)},
		"cars/buggy.yaml":  {Data: []byte(carYAML)},
		"maps/ring.png":    {Data: pngBytes(t, 8, 4)},
	}
}

func loadPack(t *testing.T, fsys fstest.MapFS) *Pack {
	t.Helper()
	m := assets.NewManager()
	m.AddFS("test", fsys)
	p, err := Load(m)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return p
}

func TestLoad(t *testing.T) {
	p := loadPack(t, testFS(t))

	if ids := p.LevelIDs(); len(ids) != 1 || ids[0] != "ring" {
		t.Errorf("LevelIDs = %v", ids)
	}
	// Car id falls back to the file name
	if ids := p.CarIDs(); len(ids) != 1 || ids[0] != "buggy" {
		t.Errorf("CarIDs = %v", ids)
	}

	l, err := p.Level("ring")
	if err != nil {
		t.Fatalf("Level failed: %v", err)
	}
	if l.HeightMap.Channel != heightmap.ChannelRed || l.HeightMap.VerticalWrap != heightmap.WrapRepeat {
		t.Errorf("heightmap desc = %+v", l.HeightMap)
	}
	params := l.HeightMap.Params()
	if params.RadiusInner != 10 || params.RadiusOuter != 15 {
		t.Errorf("params = %+v", params)
	}

	if err := p.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestLookupErrors(t *testing.T) {
	p := loadPack(t, testFS(t))
	if _, err := p.Level("nope"); !errors.Is(err, ErrUnknownLevel) {
		t.Errorf("Level: got %v", err)
	}
	if _, err := p.Car("nope"); !errors.Is(err, ErrUnknownCar) {
		t.Errorf("Car: got %v", err)
	}
	if _, err := p.Entity("nope"); !errors.Is(err, ErrUnknownEntity) {
		t.Errorf("Entity: got %v", err)
	}
}

func TestHeightMap(t *testing.T) {
	p := loadPack(t, testFS(t))
	l, _ := p.Level("ring")
	hm, err := p.HeightMap(l)
	if err != nil {
		t.Fatalf("HeightMap failed: %v", err)
	}
	if hm.Width() != 8 || hm.Height() != 4 {
		t.Errorf("size = %dx%d", hm.Width(), hm.Height())
	}
	if hm.At(3, 0) != 30 {
		t.Errorf("At(3,0) = %d, want 30 from the red channel", hm.At(3, 0))
	}
	if hm.Wrap() != heightmap.WrapRepeat {
		t.Error("vertical wrap not applied")
	}
}

func TestTransformDesc(t *testing.T) {
	p := loadPack(t, testFS(t))
	l, _ := p.Level("ring")

	iso := l.Objects[0].Transform.Isometry()
	if iso.Translation != (mgl32.Vec3{0, 12, 5}) {
		t.Errorf("translation = %v", iso.Translation)
	}
	// Yaw of π/2 turns X onto Y
	x := iso.TransformVector(mgl32.Vec3{1, 0, 0})
	if x.Sub(mgl32.Vec3{0, 1, 0}).Len() > 1e-5 {
		t.Errorf("rotated X = %v", x)
	}
	if s := l.Objects[1].Transform.Scaling(); s != (mgl32.Vec3{1, 1, 1}) {
		t.Errorf("default scale = %v", s)
	}
}

func TestWorldColliders_MassFromConfig(t *testing.T) {
	p := loadPack(t, testFS(t))
	crate, _ := p.Entity("crate")
	cols, err := crate.Physics.WorldColliders(mgl32.Vec3{1, 1, 1})
	if err != nil {
		t.Fatalf("WorldColliders failed: %v", err)
	}
	total := cols[0].Shape.MassProperties(cols[0].Density).Mass
	if !mgl32.FloatEqualThreshold(total, 16, 1e-4) {
		t.Errorf("mass = %v, want configured 16", total)
	}

	scaled, _ := crate.Physics.WorldColliders(mgl32.Vec3{2, 1, 1})
	box := scaled[0].Shape.(physics.Cuboid)
	if box.HalfExtents != (mgl32.Vec3{2, 1, 1}) {
		t.Errorf("scaled half extents = %v", box.HalfExtents)
	}

	pillar, _ := p.Entity("pillar")
	if pillar.Physics.Dynamic() {
		t.Error("static entity reported dynamic")
	}
	pcols, _ := pillar.Physics.WorldColliders(mgl32.Vec3{1, 1, 2})
	if pcols[0].Offset.Translation[2] != 6 {
		t.Errorf("scaled collider offset = %v", pcols[0].Offset.Translation)
	}
	c := pcols[0].Shape.(physics.Cylinder)
	if c.HalfHeight != 6 || c.Radius != 0.5 {
		t.Errorf("scaled cylinder = %+v", c)
	}
}

func TestShapeDesc_Sphere(t *testing.T) {
	s, err := ShapeDesc{Type: ShapeSphere, Radius: 1}.Shape(mgl32.Vec3{1, 3, 2})
	if err != nil {
		t.Fatalf("Shape failed: %v", err)
	}
	if b := s.(physics.Ball); b.Radius != 3 {
		t.Errorf("radius = %v, want largest scale 3", b.Radius)
	}
	want := float32(4.0 / 3.0 * math.Pi * 27)
	if m := s.MassProperties(1).Mass; !mgl32.FloatEqualThreshold(m, want, 1e-3) {
		t.Errorf("mass = %v, want %v", m, want)
	}
	if _, err := (ShapeDesc{Type: "capsule"}).Shape(mgl32.Vec3{1, 1, 1}); err == nil {
		t.Error("expected error for unknown shape")
	}
}

func TestValidate_CollectsEverything(t *testing.T) {
	fsys := testFS(t)
	fsys["entities.yaml"] = &fstest.MapFile{Data: []byte(`
- id: ghost
  physics:
    body: {type: rigid}
    colliders: []
- id: weird
  physics:
    body: {type: floating}
    colliders:
      - shape: {type: box, half_extents: [1, 1, 1]}
`)}
	fsys["levels/bad.yaml"] = &fstest.MapFile{Data: []byte(`
id: bad
height_map:
  image_path: maps/missing.png
  radius: [20, 10]
  density: 1
objects:
  - {id: a, entity_id: nobody}
  - {id: a, entity_id: ghost}
`)}
	p := loadPack(t, fsys)
	err := p.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}
	msg := err.Error()
	for _, want := range []string{
		`entity "ghost": rigid body mass`,
		`entity "weird": unknown body type`,
		`level "bad": radius_inner must not exceed`,
		`heightmap "maps/missing.png" not found`,
		`duplicate object "a"`,
		`unknown entity: "nobody"`,
		`level "ring": object "crate-1"`,
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("validation error missing %q\n%s", want, msg)
		}
	}
}

func TestLoad_Errors(t *testing.T) {
	fsys := testFS(t)
	fsys["levels/dup.yaml"] = &fstest.MapFile{Data: []byte("id: ring\nheight_map: {image_path: maps/ring.png}\n")}
	m := assets.NewManager()
	m.AddFS("dup", fsys)
	if _, err := Load(m); err == nil || !strings.Contains(err.Error(), "duplicate level") {
		t.Errorf("duplicate level: got %v", err)
	}

	fsys = testFS(t)
	fsys["cars/typo.yaml"] = &fstest.MapFile{Data: []byte("bodee: {}\n")}
	m = assets.NewManager()
	m.AddFS("typo", fsys)
	if _, err := Load(m); err == nil {
		t.Error("expected error for unknown field")
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	for name, f := range testFS(t) {
		full := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("mkdir failed: %v", err)
		}
		if err := os.WriteFile(full, f.Data, 0o644); err != nil {
			t.Fatalf("write failed: %v", err)
		}
	}
	p, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir failed: %v", err)
	}
	if _, err := p.Car("buggy"); err != nil {
		t.Errorf("Car(buggy) failed: %v", err)
	}
}
