// Package math provides the vector, quaternion and matrix types used for
// skeleton solving and instance placement.
package math

import "math"

// Vec2 is a 2D vector, used for texture coordinates.
type Vec2 struct {
	X, Y float32
}

// Vec3 is a 3D vector.
type Vec3 struct {
	X, Y, Z float32
}

// One returns the unit scale vector (1, 1, 1).
func One() Vec3 {
	return Vec3{1, 1, 1}
}

// Array returns the components as [x, y, z].
func (v Vec3) Array() [3]float32 {
	return [3]float32{v.X, v.Y, v.Z}
}

// Add returns v + other.
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Scale returns v * scalar.
func (v Vec3) Scale(s float32) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Radians converts a vector of angles in degrees to radians.
func (v Vec3) Radians() Vec3 {
	return v.Scale(math.Pi / 180)
}
