package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/vandals/pkg/geom"
)

func near(a, b, eps float32) bool {
	return mgl32.FloatEqualThreshold(a, b, eps)
}

func TestSet_InsertGetRemove(t *testing.T) {
	var s Set[string]
	a := s.Insert("a")
	b := s.Insert("b")

	if v, ok := s.Get(a); !ok || *v != "a" {
		t.Fatalf("Get(a) = %v, %v", v, ok)
	}
	if s.Len() != 2 {
		t.Errorf("Len = %d, want 2", s.Len())
	}

	if _, ok := s.Remove(a); !ok {
		t.Fatal("Remove(a) failed")
	}
	if s.Contains(a) {
		t.Error("removed handle still resolves")
	}

	// Slot reuse must not revive the stale handle
	c := s.Insert("c")
	if c.Index != a.Index {
		t.Errorf("expected slot reuse, got index %d", c.Index)
	}
	if c.Generation == a.Generation {
		t.Error("reused slot kept the old generation")
	}
	if _, ok := s.Get(a); ok {
		t.Error("stale handle resolved to the new element")
	}
	if v, _ := s.Get(b); *v != "b" {
		t.Errorf("Get(b) = %q", *v)
	}
}

func TestSet_HandlesSurviveGrowth(t *testing.T) {
	var s Set[int]
	first := s.Insert(42)
	for i := 0; i < 1000; i++ {
		s.Insert(i)
	}
	if v, ok := s.Get(first); !ok || *v != 42 {
		t.Errorf("first handle after growth = %v, %v", v, ok)
	}
}

func TestShapes_MassProperties(t *testing.T) {
	tests := []struct {
		name  string
		shape Shape
		mass  float32
	}{
		{"ball", Ball{Radius: 1}, 4.0 / 3.0 * math.Pi},
		{"cuboid", Cuboid{HalfExtents: mgl32.Vec3{1, 2, 3}}, 48},
		{"cylinder", Cylinder{HalfHeight: 2, Radius: 1}, 4 * math.Pi},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mp := tt.shape.MassProperties(1)
			if !near(mp.Mass, tt.mass, 1e-3) {
				t.Errorf("mass = %v, want %v", mp.Mass, tt.mass)
			}
			double := tt.shape.MassProperties(2)
			if !near(double.Mass, 2*tt.mass, 1e-3) {
				t.Errorf("mass at density 2 = %v, want %v", double.Mass, 2*tt.mass)
			}
		})
	}
}

func TestCylinder_SupportPoint(t *testing.T) {
	c := Cylinder{HalfHeight: 5, Radius: 2}
	p := c.SupportPoint(mgl32.Vec3{1, 0, -1})
	if p != (mgl32.Vec3{2, 0, -5}) {
		t.Errorf("SupportPoint = %v", p)
	}
}

func TestBall_CastRay(t *testing.T) {
	ball := Ball{Radius: 1}
	hit, ok, err := ball.CastRay(Ray{Origin: mgl32.Vec3{-5, 0, 0}, Dir: mgl32.Vec3{1, 0, 0}}, 100)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if !near(hit.TOI, 4, 1e-5) {
		t.Errorf("TOI = %v, want 4", hit.TOI)
	}
	if _, ok, _ := ball.CastRay(Ray{Origin: mgl32.Vec3{-5, 3, 0}, Dir: mgl32.Vec3{1, 0, 0}}, 100); ok {
		t.Error("expected miss")
	}
}

func TestTriMesh_CastRay(t *testing.T) {
	mesh, err := NewTriMesh(
		[]mgl32.Vec3{{-1, -1, 0}, {1, -1, 0}, {0, 1, 0}},
		[][3]uint32{{0, 1, 2}},
	)
	if err != nil {
		t.Fatalf("NewTriMesh failed: %v", err)
	}
	hit, ok, _ := mesh.CastRay(Ray{Origin: mgl32.Vec3{0, 0, 3}, Dir: mgl32.Vec3{0, 0, -1}}, 10)
	if !ok {
		t.Fatal("expected hit")
	}
	if !near(hit.TOI, 3, 1e-5) {
		t.Errorf("TOI = %v, want 3", hit.TOI)
	}
	if hit.Normal[2] <= 0 {
		t.Errorf("normal %v should face the ray origin", hit.Normal)
	}
	if mesh.MassProperties(1).Mass != 0 {
		t.Error("surface mesh should be massless")
	}
}

func TestNewTriMesh_BadIndex(t *testing.T) {
	_, err := NewTriMesh([]mgl32.Vec3{{0, 0, 0}}, [][3]uint32{{0, 1, 2}})
	if err == nil {
		t.Error("expected error for out-of-range index")
	}
}

func TestEngine_ColliderDerivesMass(t *testing.T) {
	e := NewEngine(DefaultParams())
	h := e.InsertBody(NewRigidBody(BodyDynamic, geom.Identity()))
	c := NewCollider(Cuboid{HalfExtents: mgl32.Vec3{1, 1, 1}})
	c.Density = 2
	if _, err := e.InsertCollider(c, h); err != nil {
		t.Fatalf("InsertCollider failed: %v", err)
	}
	if m := e.MustBody(h).Mass(); !near(m, 16, 1e-4) {
		t.Errorf("mass = %v, want 16", m)
	}

	// Second collider offset along X shifts the center of mass
	c2 := NewCollider(Cuboid{HalfExtents: mgl32.Vec3{1, 1, 1}})
	c2.Density = 2
	c2.Position = geom.Translation(4, 0, 0)
	if _, err := e.InsertCollider(c2, h); err != nil {
		t.Fatalf("InsertCollider failed: %v", err)
	}
	body := e.MustBody(h)
	if !near(body.Mass(), 32, 1e-4) {
		t.Errorf("compound mass = %v, want 32", body.Mass())
	}
	if com := body.CenterOfMass(); !near(com[0], 2, 1e-5) {
		t.Errorf("compound COM = %v, want x=2", com)
	}
}

func TestEngine_InsertColliderStaleParent(t *testing.T) {
	e := NewEngine(DefaultParams())
	h := e.InsertBody(NewRigidBody(BodyDynamic, geom.Identity()))
	e.RemoveBody(h)
	_, err := e.InsertCollider(NewCollider(Ball{Radius: 1}), h)
	if !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("expected ErrInvalidHandle, got %v", err)
	}
}

func TestEngine_StepIntegratesForce(t *testing.T) {
	params := DefaultParams()
	params.AngularDamping = 0
	e := NewEngine(params)
	h := e.InsertBody(NewRigidBody(BodyDynamic, geom.Identity()))
	c := NewCollider(Ball{Radius: 1})
	c.Density = 3 / (4 * math.Pi) // mass 1
	e.InsertCollider(c, h)

	body := e.MustBody(h)
	body.AddForce(mgl32.Vec3{6, 0, 0})
	e.Step()

	dt := params.Timestep
	body = e.MustBody(h)
	if !near(body.LinVel[0], 6*dt, 1e-4) {
		t.Errorf("velocity = %v, want %v", body.LinVel[0], 6*dt)
	}
	if !near(body.Position.Translation[0], 6*dt*dt, 1e-5) {
		t.Errorf("position = %v, want %v", body.Position.Translation[0], 6*dt*dt)
	}
	// Force persists until reset
	if body.Force() != (mgl32.Vec3{6, 0, 0}) {
		t.Errorf("force after step = %v", body.Force())
	}
	body.ResetForces()
	if body.Force() != (mgl32.Vec3{}) {
		t.Error("ResetForces did not clear force")
	}
	if e.Steps() != 1 || !near(e.Time(), dt, 1e-7) {
		t.Errorf("steps=%d time=%v", e.Steps(), e.Time())
	}
}

func TestEngine_ImpulseChangesVelocity(t *testing.T) {
	e := NewEngine(DefaultParams())
	h := e.InsertBody(NewRigidBody(BodyDynamic, geom.Identity()))
	c := NewCollider(Cuboid{HalfExtents: mgl32.Vec3{0.5, 0.5, 0.5}}) // mass 1
	e.InsertCollider(c, h)

	e.MustBody(h).ApplyImpulse(mgl32.Vec3{0, 2, 0})
	if v := e.MustBody(h).LinVel; !near(v[1], 2, 1e-6) {
		t.Errorf("velocity after impulse = %v", v)
	}
}

func TestEngine_FixedBodyDoesNotMove(t *testing.T) {
	e := NewEngine(DefaultParams())
	start := geom.Translation(1, 2, 3)
	h := e.InsertBody(NewRigidBody(BodyFixed, start))
	e.InsertCollider(NewCollider(Ball{Radius: 1}), h)

	body := e.MustBody(h)
	body.AddForce(mgl32.Vec3{100, 0, 0})
	body.ApplyImpulse(mgl32.Vec3{100, 0, 0})
	for i := 0; i < 10; i++ {
		e.Step()
	}
	if !e.MustBody(h).Position.ApproxEqual(start, 1e-6) {
		t.Errorf("fixed body moved to %v", e.MustBody(h).Position)
	}
}

func TestEngine_SpinIntegratesRotation(t *testing.T) {
	params := DefaultParams()
	params.AngularDamping = 0
	e := NewEngine(params)
	h := e.InsertBody(NewRigidBody(BodyDynamic, geom.Identity()))
	e.InsertCollider(NewCollider(Ball{Radius: 1}), h)

	body := e.MustBody(h)
	body.AngVel = mgl32.Vec3{0, 0, math.Pi} // half a turn per second
	for i := 0; i < 60; i++ {
		e.Step()
	}
	x := e.MustBody(h).Position.TransformVector(mgl32.Vec3{1, 0, 0})
	if !near(x[0], -1, 0.02) {
		t.Errorf("after 1s of π rad/s, X axis = %v, want ~(-1,0,0)", x)
	}
}

func TestEngine_RemoveBodyDropsCollidersAndJoints(t *testing.T) {
	e := NewEngine(DefaultParams())
	a := e.InsertBody(NewRigidBody(BodyDynamic, geom.Identity()))
	b := e.InsertBody(NewRigidBody(BodyDynamic, geom.Translation(1, 0, 0)))
	e.InsertCollider(NewCollider(Ball{Radius: 0.5}), a)
	e.InsertCollider(NewCollider(Ball{Radius: 0.5}), b)
	if _, err := e.InsertJoint(JointDesc{Body1: a, Body2: b, Stiffness: 10}); err != nil {
		t.Fatalf("InsertJoint failed: %v", err)
	}

	if !e.RemoveBody(a) {
		t.Fatal("RemoveBody failed")
	}
	if e.ColliderCount() != 1 {
		t.Errorf("ColliderCount = %d, want 1", e.ColliderCount())
	}
	if e.JointCount() != 0 {
		t.Errorf("JointCount = %d, want 0", e.JointCount())
	}
	if e.RemoveBody(a) {
		t.Error("second RemoveBody should fail")
	}
}

func TestEngine_JointPullsBodiesTogether(t *testing.T) {
	e := NewEngine(DefaultParams())
	a := e.InsertBody(NewRigidBody(BodyDynamic, geom.Identity()))
	b := e.InsertBody(NewRigidBody(BodyDynamic, geom.Translation(2, 0, 0)))
	e.InsertCollider(NewCollider(Ball{Radius: 0.5}), a)
	e.InsertCollider(NewCollider(Ball{Radius: 0.5}), b)
	e.InsertJoint(JointDesc{Body1: a, Body2: b, Stiffness: 50, Damping: 1})

	e.Step()
	va := e.MustBody(a).LinVel
	vb := e.MustBody(b).LinVel
	if va[0] <= 0 || vb[0] >= 0 {
		t.Errorf("joint should pull bodies together: va=%v vb=%v", va, vb)
	}
}

func TestMustBody_PanicsOnStaleHandle(t *testing.T) {
	e := NewEngine(DefaultParams())
	h := e.InsertBody(NewRigidBody(BodyDynamic, geom.Identity()))
	e.RemoveBody(h)
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	e.MustBody(h)
}

func TestColliderWorldAABB(t *testing.T) {
	c := NewCollider(Cuboid{HalfExtents: mgl32.Vec3{1, 2, 3}})
	box := c.WorldAABB(geom.Translation(10, 0, 0))
	if box.Min != (mgl32.Vec3{9, -2, -3}) || box.Max != (mgl32.Vec3{11, 2, 3}) {
		t.Errorf("WorldAABB = %+v", box)
	}
}

func TestEngine_ContactKeepsBodyOnFixedSurface(t *testing.T) {
	e := NewEngine(DefaultParams())
	floor := e.InsertBody(NewRigidBody(BodyFixed, geom.Translation(0, -1, 0)))
	e.InsertCollider(NewCollider(Cuboid{HalfExtents: mgl32.Vec3{10, 1, 10}}), floor)

	h := e.InsertBody(NewRigidBody(BodyDynamic, geom.Translation(0, 2, 0)))
	e.InsertCollider(NewCollider(Ball{Radius: 0.5}), h)

	for i := 0; i < 120; i++ {
		e.MustBody(h).ResetForces()
		e.MustBody(h).AddForce(mgl32.Vec3{0, -10 * e.MustBody(h).Mass(), 0})
		e.Step()
	}
	body := e.MustBody(h)
	if y := body.Position.Translation[1]; !near(y, 0.5, 1e-3) {
		t.Errorf("ball rests at y=%v, want 0.5 on top of the floor", y)
	}
	if body.LinVel[1] < 0 {
		t.Errorf("ball still moving into the floor: %v", body.LinVel)
	}
	contacts := e.Contacts()
	if len(contacts) != 1 {
		t.Fatalf("contacts = %d, want 1", len(contacts))
	}
	if contacts[0].Normal.Sub(mgl32.Vec3{0, 1, 0}).Len() > 1e-5 {
		t.Errorf("contact normal = %v, want +Y", contacts[0].Normal)
	}
}

func TestEngine_IgnoreContactsFallsThrough(t *testing.T) {
	e := NewEngine(DefaultParams())
	floor := e.InsertBody(NewRigidBody(BodyFixed, geom.Translation(0, -1, 0)))
	e.InsertCollider(NewCollider(Cuboid{HalfExtents: mgl32.Vec3{10, 1, 10}}), floor)

	h := e.InsertBody(NewRigidBody(BodyDynamic, geom.Translation(0, 0.2, 0)))
	c := NewCollider(Ball{Radius: 0.5})
	c.IgnoreContacts = true
	e.InsertCollider(c, h)

	e.MustBody(h).LinVel = mgl32.Vec3{0, -6, 0}
	e.Step()
	if y := e.MustBody(h).Position.Translation[1]; y >= 0.2 {
		t.Errorf("ignored collider was pushed out: y=%v", y)
	}
	if len(e.Contacts()) != 0 {
		t.Errorf("contacts = %d, want 0", len(e.Contacts()))
	}
}

func TestEngine_ContactRemovesApproachOnly(t *testing.T) {
	e := NewEngine(DefaultParams())
	floor := e.InsertBody(NewRigidBody(BodyFixed, geom.Translation(0, -1, 0)))
	fixed := NewCollider(Cuboid{HalfExtents: mgl32.Vec3{10, 1, 10}})
	fixed.Friction = 0
	e.InsertCollider(fixed, floor)

	h := e.InsertBody(NewRigidBody(BodyDynamic, geom.Translation(0, 0.4, 0)))
	c := NewCollider(Ball{Radius: 0.5})
	c.Friction = 0
	e.InsertCollider(c, h)

	e.MustBody(h).LinVel = mgl32.Vec3{2, -1, 0}
	e.Step()
	body := e.MustBody(h)
	if y := body.Position.Translation[1]; y < 0.5-1e-4 {
		t.Errorf("ball center at y=%v, want at least 0.5", y)
	}
	if mgl32.Abs(body.LinVel[1]) > 1e-6 || !near(body.LinVel[0], 2, 1e-6) {
		t.Errorf("velocity = %v, want normal part removed and tangent kept", body.LinVel)
	}
}

func TestCuboid_ProjectSurface(t *testing.T) {
	box := Cuboid{HalfExtents: mgl32.Vec3{1, 2, 3}}

	p, n, ok := box.ProjectSurface(mgl32.Vec3{0, 5, 0})
	if !ok || p != (mgl32.Vec3{0, 2, 0}) || n != (mgl32.Vec3{0, 1, 0}) {
		t.Errorf("outside: point %v normal %v ok %v", p, n, ok)
	}
	// Inside points leave through the nearest face
	p, n, ok = box.ProjectSurface(mgl32.Vec3{-0.8, 0, 0})
	if !ok || p != (mgl32.Vec3{-1, 0, 0}) || n != (mgl32.Vec3{-1, 0, 0}) {
		t.Errorf("inside: point %v normal %v ok %v", p, n, ok)
	}
}

func TestCombineMass_RotatedCylinder(t *testing.T) {
	cyl := Cylinder{HalfHeight: 0.2, Radius: 0.5}
	mp := cyl.MassProperties(1)
	onX := geom.NewIsometry(mgl32.Vec3{}, mgl32.QuatRotate(math.Pi/2, mgl32.Vec3{0, 1, 0}))

	got := combineMass([]MassProperties{mp}, []geom.Isometry{onX})
	if !near(got.Inertia[0], mp.Inertia[2], 1e-5) {
		t.Errorf("inertia about X = %v, want the axial %v", got.Inertia[0], mp.Inertia[2])
	}
	if !near(got.Inertia[2], mp.Inertia[0], 1e-5) {
		t.Errorf("inertia about Z = %v, want the lateral %v", got.Inertia[2], mp.Inertia[0])
	}
	if !near(got.Inertia[1], mp.Inertia[1], 1e-5) {
		t.Errorf("inertia about Y changed: %v", got.Inertia[1])
	}
}
