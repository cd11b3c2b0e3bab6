package math

import (
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/exp/constraints"
)

// Clamp returns the value `f` clamped to the range [low, high].
// It works for any numeric type (integers and floats).
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// ClampVec3 clamps every component of v to [low, high].
func ClampVec3(v mgl32.Vec3, low, high float32) mgl32.Vec3 {
	return mgl32.Vec3{Clamp(v[0], low, high), Clamp(v[1], low, high), Clamp(v[2], low, high)}
}
