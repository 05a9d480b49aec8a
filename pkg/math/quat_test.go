package math

import (
	"math"
	"testing"
)

func TestQuatIdentity(t *testing.T) {
	q := QuatIdentity()
	if q.X != 0 || q.Y != 0 || q.Z != 0 || q.W != 1 {
		t.Errorf("Identity quaternion should be (0,0,0,1), got (%v,%v,%v,%v)", q.X, q.Y, q.Z, q.W)
	}
}

// axisAngle builds a unit rotation of angle radians about a unit axis.
func axisAngle(axis Vec3, angle float64) Quat {
	s := float32(math.Sin(angle / 2))
	return Quat{X: axis.X * s, Y: axis.Y * s, Z: axis.Z * s, W: float32(math.Cos(angle / 2))}
}

func TestQuatRotate(t *testing.T) {
	quarterZ := axisAngle(Vec3{Z: 1}, math.Pi/2)

	tests := []struct {
		name string
		q    Quat
		in   Vec3
		want Vec3
	}{
		{"identity", QuatIdentity(), Vec3{1, 2, 3}, Vec3{1, 2, 3}},
		{"z 90 on x", quarterZ, Vec3{1, 0, 0}, Vec3{0, 1, 0}},
		{"z 90 on y", quarterZ, Vec3{0, 1, 0}, Vec3{-1, 0, 0}},
		{"z 90 on z", quarterZ, Vec3{0, 0, 2}, Vec3{0, 0, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.q.Rotate(tt.in)
			if !near(got, tt.want) {
				t.Errorf("Rotate(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestQuatMulComposes(t *testing.T) {
	quarterZ := axisAngle(Vec3{Z: 1}, math.Pi/2)
	quarterX := axisAngle(Vec3{X: 1}, math.Pi/2)

	// Applying X then Z must match rotating by the product Z*X.
	v := Vec3{0, 1, 0}
	stepwise := quarterZ.Rotate(quarterX.Rotate(v))
	composed := quarterZ.Mul(quarterX).Rotate(v)

	if !near(stepwise, composed) {
		t.Errorf("Mul composition: stepwise %v, composed %v", stepwise, composed)
	}
}

func TestQuatAdd(t *testing.T) {
	got := QuatIdentity().Add(Quat{X: 0.5, W: -0.5})
	want := Quat{X: 0.5, W: 0.5}
	if got != want {
		t.Errorf("Add = %v, want %v", got, want)
	}
}
