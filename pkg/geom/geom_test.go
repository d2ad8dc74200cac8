package geom

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

// vecNear compares with an absolute tolerance; relative comparisons break
// down for components that should be zero.
func vecNear(a, b mgl32.Vec3, eps float32) bool {
	for i := 0; i < 3; i++ {
		if mgl32.Abs(a[i]-b[i]) > eps {
			return false
		}
	}
	return true
}

func TestIsometryIdentity(t *testing.T) {
	p := mgl32.Vec3{1, 2, 3}
	got := Identity().TransformPoint(p)
	if !vecNear(got, p, 1e-6) {
		t.Errorf("Identity().TransformPoint(%v) = %v", p, got)
	}
}

func TestIsometryMulAppliesRightFirst(t *testing.T) {
	rot := NewIsometry(mgl32.Vec3{}, mgl32.QuatRotate(math.Pi/2, mgl32.Vec3{0, 0, 1}))
	move := Translation(1, 0, 0)

	// Translate then rotate: (1,0,0) -> (0,1,0)
	got := rot.Mul(move).TransformPoint(mgl32.Vec3{})
	want := mgl32.Vec3{0, 1, 0}
	if !vecNear(got, want, 1e-5) {
		t.Errorf("rot*move origin = %v, want %v", got, want)
	}

	// Rotate then translate: origin stays, then moves to (1,0,0)
	got = move.Mul(rot).TransformPoint(mgl32.Vec3{})
	want = mgl32.Vec3{1, 0, 0}
	if !vecNear(got, want, 1e-5) {
		t.Errorf("move*rot origin = %v, want %v", got, want)
	}
}

func TestIsometryInverse(t *testing.T) {
	iso := NewIsometry(mgl32.Vec3{3, -2, 7}, FromEuler(0.3, -0.7, 1.1))
	p := mgl32.Vec3{0.5, 4, -1}

	back := iso.Inverse().TransformPoint(iso.TransformPoint(p))
	if !vecNear(back, p, 1e-4) {
		t.Errorf("inverse round trip = %v, want %v", back, p)
	}
	if !iso.Mul(iso.Inverse()).ApproxEqual(Identity(), 1e-4) {
		t.Error("iso * iso^-1 should be identity")
	}
}

func TestIsometryMat4(t *testing.T) {
	iso := NewIsometry(mgl32.Vec3{1, 2, 3}, FromEuler(0, 0, math.Pi/2))
	p := mgl32.Vec3{1, 0, 0}
	m := iso.Mat4().Mul4x1(p.Vec4(1)).Vec3()
	if want := iso.TransformPoint(p); !vecNear(m, want, 1e-5) {
		t.Errorf("Mat4 transform = %v, want %v", m, want)
	}
}

func TestFromEulerYaw(t *testing.T) {
	q := FromEuler(0, 0, math.Pi/2)
	got := q.Rotate(mgl32.Vec3{1, 0, 0})
	if !vecNear(got, mgl32.Vec3{0, 1, 0}, 1e-5) {
		t.Errorf("yaw 90 rotates X to %v, want Y", got)
	}
}

func TestToRadial(t *testing.T) {
	r := ToRadial(mgl32.Vec3{0, -2, 5})
	if !mgl32.FloatEqualThreshold(r.Radius, 2, 1e-6) {
		t.Errorf("Radius = %v, want 2", r.Radius)
	}
	if r.Depth != 5 {
		t.Errorf("Depth = %v, want 5", r.Depth)
	}
	if !mgl32.FloatEqualThreshold(r.Turn(), 0.75, 1e-6) {
		t.Errorf("Turn = %v, want 0.75", r.Turn())
	}
}

func TestTurnRange(t *testing.T) {
	for i := 0; i < 64; i++ {
		alpha := float64(i) / 64 * 2 * math.Pi
		p := FromRadial(float32(alpha), 10, 0)
		turn := ToRadial(p).Turn()
		if turn < 0 || turn >= 1 {
			t.Errorf("Turn(%v) = %v, out of [0,1)", alpha, turn)
		}
	}
}

func TestRadialUnit(t *testing.T) {
	got := RadialUnit(mgl32.Vec3{3, 4, 100})
	if !vecNear(got, mgl32.Vec3{0.6, 0.8, 0}, 1e-6) {
		t.Errorf("RadialUnit = %v", got)
	}
	if got := RadialUnit(mgl32.Vec3{0, 0, 9}); got != (mgl32.Vec3{}) {
		t.Errorf("RadialUnit on axis = %v, want zero", got)
	}
}
