package math

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Extents3D is an axis aligned bounding box.
type Extents3D struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// EmptyExtents returns an inverted box that any point will expand.
func EmptyExtents() Extents3D {
	inf := math32.Inf(1)
	return Extents3D{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
}

// ExtentsFromPoints computes the bounding box of points.
func ExtentsFromPoints(points []mgl32.Vec3) Extents3D {
	e := EmptyExtents()
	for _, p := range points {
		e = e.Expand(p)
	}
	return e
}

func (e Extents3D) Expand(p mgl32.Vec3) Extents3D {
	for i := 0; i < 3; i++ {
		e.Min[i] = math32.Min(e.Min[i], p[i])
		e.Max[i] = math32.Max(e.Max[i], p[i])
	}
	return e
}

// Valid reports whether the box holds at least one finite point.
func (e Extents3D) Valid() bool {
	for i := 0; i < 3; i++ {
		if math32.IsInf(e.Min[i], 0) || math32.IsNaN(e.Min[i]) || e.Min[i] > e.Max[i] {
			return false
		}
	}
	return true
}

func (e Extents3D) Center() mgl32.Vec3 {
	return e.Min.Add(e.Max).Mul(0.5)
}

func (e Extents3D) Size() mgl32.Vec3 {
	return e.Max.Sub(e.Min)
}

// SafeSize is Size with every zero component replaced by 1 so it can be
// used as a divisor.
func (e Extents3D) SafeSize() mgl32.Vec3 {
	s := e.Size()
	for i := 0; i < 3; i++ {
		if s[i] == 0 {
			s[i] = 1
		}
	}
	return s
}

// Translate moves the box by offset.
func (e Extents3D) Translate(offset mgl32.Vec3) Extents3D {
	return Extents3D{Min: e.Min.Add(offset), Max: e.Max.Add(offset)}
}

// Normalize maps p into [0,1] per axis relative to the box.
func (e Extents3D) Normalize(p mgl32.Vec3) mgl32.Vec3 {
	s := e.SafeSize()
	n := p.Sub(e.Min)
	return ClampVec3(mgl32.Vec3{n[0] / s[0], n[1] / s[1], n[2] / s[2]}, 0, 1)
}
